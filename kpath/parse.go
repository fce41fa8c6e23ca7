package kpath

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errUnterminated = errors.New("unterminated bracket")
	errQuoteClose   = errors.New("expected ']' after quoted key")
)

// Parse tokenizes a path string.
//
// Path syntax:
//   - "a.b" → ["a", "b"]
//   - "a[0]" → ["a", "0"]
//   - `a["x.y"]` or "a['x.y']" → ["a", "x.y"]; backslash escapes the next byte
//   - "a..b" → ["a", "", "b"] and "a." → ["a", ""]
//   - "" → root (nil)
//
// Returns an error wrapping ErrInvalidPath for unterminated brackets or
// quotes and for a stray ']'.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}
	var p Path
	if s[0] == '.' {
		p = append(p, "")
	}
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			if i == len(s) || s[i] == '.' {
				p = append(p, "")
			}
		case '[':
			key, n, err := parseBracket(s[i:])
			if err != nil {
				return nil, fmt.Errorf("%w: %q at offset %d: %w", ErrInvalidPath, s, i, err)
			}
			p = append(p, key)
			i += n
		case ']':
			return nil, fmt.Errorf("%w: %q: unexpected ']' at offset %d", ErrInvalidPath, s, i)
		default:
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' && s[j] != ']' {
				j++
			}
			p = append(p, s[i:j])
			i = j
		}
	}
	return p, nil
}

// parseBracket parses a bracketed key at the start of s, returning the key
// and the number of bytes consumed.
func parseBracket(s string) (string, int, error) {
	if len(s) < 2 {
		return "", 0, errUnterminated
	}
	if q := s[1]; q == '"' || q == '\'' {
		var buf strings.Builder
		for i := 2; i < len(s); i++ {
			c := s[i]
			switch c {
			case '\\':
				if i+1 == len(s) {
					return "", 0, errUnterminated
				}
				i++
				buf.WriteByte(s[i])
			case q:
				if i+1 >= len(s) || s[i+1] != ']' {
					return "", 0, errQuoteClose
				}
				return buf.String(), i + 2, nil
			default:
				buf.WriteByte(c)
			}
		}
		return "", 0, errUnterminated
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", 0, errUnterminated
	}
	return s[1:end], end + 1, nil
}
