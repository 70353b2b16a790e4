package contentstream

import (
	"errors"
	"fmt"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokName
	tokString
	tokArrayOpen
	tokArrayClose
	tokOperator
)

type token struct {
	kind tokenKind
	text string
	data []byte
}

var errUnterminated = errors.New("unterminated string")

func isWhite(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// tokenize splits a content stream into operand and operator tokens.
func tokenize(src []byte) ([]token, error) {
	var out []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case isWhite(c):
			i++
		case c == '%':
			for i < len(src) && src[i] != '\n' && src[i] != '\r' {
				i++
			}
		case c == '[':
			out = append(out, token{kind: tokArrayOpen})
			i++
		case c == ']':
			out = append(out, token{kind: tokArrayClose})
			i++
		case c == '/':
			j := i + 1
			for j < len(src) && !isWhite(src[j]) && !isDelim(src[j]) {
				j++
			}
			out = append(out, token{kind: tokName, text: string(src[i+1 : j])})
			i = j
		case c == '(':
			data, n, err := readLiteral(src[i:])
			if err != nil {
				return nil, fmt.Errorf("offset %d: %w", i, err)
			}
			out = append(out, token{kind: tokString, data: data})
			i += n
		case c == '<':
			data, n, err := readHex(src[i:])
			if err != nil {
				return nil, fmt.Errorf("offset %d: %w", i, err)
			}
			out = append(out, token{kind: tokString, data: data})
			i += n
		default:
			j := i
			for j < len(src) && !isWhite(src[j]) && !isDelim(src[j]) {
				j++
			}
			if j == i {
				return nil, fmt.Errorf("offset %d: unexpected %q", i, c)
			}
			word := string(src[i:j])
			kind := tokOperator
			if c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9') {
				kind = tokNumber
			}
			out = append(out, token{kind: kind, text: word})
			i = j
		}
	}
	return out, nil
}

// readLiteral decodes a balanced literal string starting at src[0] == '('.
func readLiteral(src []byte) ([]byte, int, error) {
	var out []byte
	depth := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '(':
			if depth > 0 {
				out = append(out, c)
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				return out, i + 1, nil
			}
			out = append(out, c)
		case '\\':
			i++
			if i >= len(src) {
				return nil, 0, errUnterminated
			}
			switch e := src[i]; e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := 0
				k := 0
				for ; k < 3 && i+k < len(src) && src[i+k] >= '0' && src[i+k] <= '7'; k++ {
					v = v*8 + int(src[i+k]-'0')
				}
				i += k - 1
				out = append(out, byte(v))
			default:
				out = append(out, e)
			}
		default:
			out = append(out, c)
		}
	}
	return nil, 0, errUnterminated
}

func readHex(src []byte) ([]byte, int, error) {
	var out []byte
	var hi byte
	half := false
	for i := 1; i < len(src); i++ {
		c := src[i]
		if c == '>' {
			if half {
				out = append(out, hi<<4)
			}
			return out, i + 1, nil
		}
		if isWhite(c) {
			continue
		}
		v, ok := hexVal(c)
		if !ok {
			return nil, 0, fmt.Errorf("invalid hex digit %q", c)
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	return nil, 0, errUnterminated
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
