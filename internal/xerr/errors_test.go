package xerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodesAreStable(t *testing.T) {
	// These values cross the API boundary; changing one is a breaking
	// change, not a refactor.
	assert.Equal(t, 1, (&FileAccessError{}).Code())
	assert.Equal(t, 2, (&ConditionSyntaxError{}).Code())
	assert.Equal(t, 3, (&CyclicInteractionError{}).Code())
	assert.Equal(t, 4, (&GitStateError{}).Code())
	assert.Equal(t, 5, (&InvalidArgumentError{}).Code())
	assert.Equal(t, 6, (&UndefinedGroupError{}).Code())
}

func TestCyclicInteractionErrorMessage(t *testing.T) {
	err := &CyclicInteractionError{Cycle: []CycleVertex{
		{Name: "A.esp", OutRule: RuleLoadAfter},
		{Name: "B.esp", OutRule: RuleRequirement},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "A.esp")
	assert.Contains(t, msg, "B.esp")
	assert.Contains(t, msg, string(RuleLoadAfter))
	assert.Contains(t, msg, string(RuleRequirement))
}

func TestGitStateErrorUnwraps(t *testing.T) {
	cause := errors.New("network unreachable")
	err := &GitStateError{Msg: "fetch failed", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "network unreachable")
}
