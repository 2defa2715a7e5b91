package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComparePseudosem(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.2", "1.2.0", 0},
		{"1.2", "1.2", 0},
		{"1.10", "1.2", 1},
		{"1.0a", "1.0b", -1},
		{"1.0", "1.0a", -1},
		{"1.0A", "1.0a", 0},
		{"0.5", "1", -1},
		{"1", "1.0.0", 0},
		{"2.0", "1.9.9", 1},
		{"1-2-3", "1.2.3", 0},
		{"1.2.3", "1.2.4", -1},
		{"", "0", 0},
		{"0.18.20", "0.18.9", 1},
		{"Version 1.2", "1.2", 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ComparePseudosem(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
		assert.Equal(t, -tc.want, ComparePseudosem(tc.b, tc.a), "%q vs %q reversed", tc.b, tc.a)
	}
}
