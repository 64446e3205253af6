package expiration

import "strings"

// Unit-sum expression parsing: "<number><unit> ..." pairs whose products are
// summed, e.g. "1h 30m 10s" = 5410. A tiny hand-rolled scanner keeps error
// positions exact.

type tokenType int

const (
	tokenNone tokenType = iota
	tokenNumber
	tokenIdentifier
	tokenTerminator
)

const terminator = byte(0)

type scanner struct {
	input     string
	look      byte
	index     int
	position  int
	token     string
	tokenType tokenType
}

func (s *scanner) start(input string) {
	s.input = strings.TrimSpace(input)
	s.index = 0
	s.advance()
	s.scan()
}

func (s *scanner) scan() {
	for isSpace(s.look) {
		s.advance()
	}

	s.token = ""
	s.position = s.index - 1

	if isAlpha(s.look) {
		for isAlpha(s.look) {
			s.token += string(s.look)
			s.advance()
		}
		s.tokenType = tokenIdentifier
		return
	}

	if isDigit(s.look) {
		for isDigit(s.look) {
			s.token += string(s.look)
			s.advance()
		}
		s.tokenType = tokenNumber
		return
	}

	if s.look == terminator {
		s.tokenType = tokenTerminator
		return
	}

	s.tokenType = tokenNone
	s.advance()
}

func (s *scanner) advance() {
	if s.index >= len(s.input) {
		s.look = terminator
		return
	}
	s.look = s.input[s.index]
	s.index++
}

// parseSumExpression evaluates the expression against the unit mapping.
func parseSumExpression(input string, units map[string]int64, caseSensitive bool) (int64, error) {
	var sc scanner
	sc.start(input)

	var result int64
	for sc.tokenType != tokenTerminator {
		num, err := evaluateNumber(&sc)
		if err != nil {
			return 0, err
		}
		unit, err := evaluateIdentifier(&sc, units, caseSensitive)
		if err != nil {
			return 0, err
		}
		result += num * unit
	}
	return result, nil
}

func evaluateNumber(sc *scanner) (int64, error) {
	if sc.tokenType != tokenNumber {
		return 0, &InvalidExpressionError{Expression: sc.input, Position: sc.position, Message: "expected number"}
	}
	var n int64
	for i := 0; i < len(sc.token); i++ {
		n = n*10 + int64(sc.token[i]-'0')
	}
	sc.scan()
	return n, nil
}

func evaluateIdentifier(sc *scanner, units map[string]int64, caseSensitive bool) (int64, error) {
	if sc.tokenType != tokenIdentifier {
		return 0, &InvalidExpressionError{Expression: sc.input, Position: sc.position, Message: "expected identifier"}
	}
	token := sc.token
	if !caseSensitive {
		token = strings.ToLower(token)
	}
	value, ok := units[token]
	if !ok {
		return 0, &InvalidExpressionError{Expression: sc.input, Position: sc.position, Message: "unknown identifier"}
	}
	sc.scan()
	return value, nil
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
