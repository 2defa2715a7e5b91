package condition

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/loadstone/loadstone/internal/xerr"
)

// Parse turns a condition string into an evaluable AST. A failure is always
// a ConditionSyntaxError.
func Parse(input string) (Node, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, &xerr.ConditionSyntaxError{Condition: input, Msg: err.Error()}
	}
	p := &parser{input: input, tokens: tokens}
	node, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s after end of condition", tok)
	}
	return node, nil
}

type parser struct {
	input  string
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &xerr.ConditionSyntaxError{Condition: p.input, Msg: fmt.Sprintf(format, args...)}
}

// parseCondition := term (('or' | 'and') term)*
// Both connectives share one precedence level and associate left.
func (p *parser) parseCondition() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokIdent || (tok.text != "and" && tok.text != "or") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if tok.text == "and" {
			left = andNode{left, right}
		} else {
			left = orNode{left, right}
		}
	}
}

// parseTerm := 'not'? ('(' condition ')' | function)
func (p *parser) parseTerm() (Node, error) {
	if tok := p.peek(); tok.kind == tokIdent && tok.text == "not" {
		p.next()
		operand, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return notNode{operand}, nil
	}

	tok := p.next()
	switch {
	case tok.kind == tokLParen:
		node, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorf("expected ) but found %s", closing)
		}
		return node, nil
	case tok.kind == tokIdent:
		return p.parseFunction(tok.text)
	default:
		return nil, p.errorf("expected a function or ( but found %s", tok)
	}
}

func (p *parser) parseFunction(name string) (Node, error) {
	if tok := p.next(); tok.kind != tokLParen {
		return nil, p.errorf("expected ( after %q but found %s", name, tok)
	}

	var node Node
	switch name {
	case "file":
		arg, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		node = fileNode{arg}
	case "active":
		arg, err := p.parseString()
		if err != nil {
			return nil, err
		}
		node = activeNode{arg}
	case "many":
		arg, err := p.parseRegex()
		if err != nil {
			return nil, err
		}
		node = manyNode{arg}
	case "many_active":
		arg, err := p.parseRegex()
		if err != nil {
			return nil, err
		}
		node = manyActiveNode{arg}
	case "is_master":
		arg, err := p.parseString()
		if err != nil {
			return nil, err
		}
		node = isMasterNode{arg}
	case "checksum":
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokComma); err != nil {
			return nil, err
		}
		crc, err := p.parseHex()
		if err != nil {
			return nil, err
		}
		node = checksumNode{path, crc}
	case "version":
		plugin, err := p.parseString()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokComma); err != nil {
			return nil, err
		}
		version, err := p.parseString()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokComma); err != nil {
			return nil, err
		}
		cmp := p.next()
		if cmp.kind != tokComparator {
			return nil, p.errorf("expected a comparator but found %s", cmp)
		}
		node = versionNode{plugin, version, cmp.text}
	default:
		return nil, p.errorf("unknown function %q", name)
	}

	if err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) expect(kind tokenKind) error {
	tok := p.next()
	if tok.kind != kind {
		want := map[tokenKind]string{tokComma: ",", tokRParen: ")"}[kind]
		return p.errorf("expected %s but found %s", want, tok)
	}
	return nil
}

func (p *parser) parseString() (string, error) {
	tok := p.next()
	if tok.kind != tokString {
		return "", p.errorf("expected a quoted string but found %s", tok)
	}
	return tok.text, nil
}

// parsePath reads a quoted data-relative path and rejects escapes out of the
// data directory. Paths use forward slashes regardless of platform.
func (p *parser) parsePath() (string, error) {
	path, err := p.parseString()
	if err != nil {
		return "", err
	}
	if strings.Contains(path, "\\") {
		return "", p.errorf("path %q must use forward slashes", path)
	}
	if isUnsafePath(path) {
		return "", p.errorf("path %q is not inside the data directory", path)
	}
	return path, nil
}

// parseRegex reads a quoted regular expression and validates it eagerly so
// evaluation cannot fail on syntax.
func (p *parser) parseRegex() (string, error) {
	pattern, err := p.parseString()
	if err != nil {
		return "", err
	}
	dir, base := splitRegexDir(pattern)
	if isUnsafePath(dir) {
		return "", p.errorf("path %q is not inside the data directory", pattern)
	}
	if _, err := regexp.Compile("(?i)^(?:" + base + ")$"); err != nil {
		return "", p.errorf("invalid regex %q: %v", pattern, err)
	}
	return pattern, nil
}

func (p *parser) parseHex() (uint32, error) {
	tok := p.next()
	if tok.kind != tokHex {
		return 0, p.errorf("expected a CRC-32 literal but found %s", tok)
	}
	text := strings.TrimPrefix(strings.ToLower(tok.text), "0x")
	v, err := strconv.ParseUint(text, 16, 32)
	if err != nil {
		return 0, p.errorf("invalid CRC-32 literal %q", tok.text)
	}
	return uint32(v), nil
}

// splitRegexDir separates the literal directory part of a regex path from
// the final component, which is the part interpreted as a pattern.
func splitRegexDir(pattern string) (dir, base string) {
	if i := strings.LastIndex(pattern, "/"); i >= 0 {
		return pattern[:i], pattern[i+1:]
	}
	return "", pattern
}

// isUnsafePath reports whether a forward-slash path escapes the data
// directory.
func isUnsafePath(path string) bool {
	depth := 0
	for _, part := range strings.Split(path, "/") {
		switch part {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return true
			}
		default:
			depth++
		}
	}
	return false
}
