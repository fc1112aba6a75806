package patch

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Pointer is a parsed JSON Pointer (RFC 6901): the sequence of reference
// tokens from the root. The empty pointer addresses the whole document.
type Pointer []string

func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, PointerError{Raw: s, Reason: "must be empty or start with '/'"}
	}
	parts := strings.Split(s[1:], "/")
	out := make(Pointer, 0, len(parts))
	for _, p := range parts {
		tok, err := unescapeToken(p)
		if err != nil {
			return nil, PointerError{Raw: s, Reason: err.Error()}
		}
		out = append(out, tok)
	}
	return out, nil
}

// MustParsePointer is ParsePointer for literals known to be valid.
func MustParsePointer(s string) Pointer {
	p, err := ParsePointer(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Field builds a pointer from raw tokens (no escaping needed). String kinds
// are used verbatim and integer kinds become array indexes.
func Field(tokens ...any) Pointer {
	out := make(Pointer, 0, len(tokens))
	for _, t := range tokens {
		rv := reflect.ValueOf(t)
		switch rv.Kind() {
		case reflect.String:
			out = append(out, rv.String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = append(out, strconv.FormatInt(rv.Int(), 10))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out = append(out, strconv.FormatUint(rv.Uint(), 10))
		default:
			panic(fmt.Sprintf("patch.Field: unsupported token %T", t))
		}
	}
	return out
}

func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, tok := range p {
		b.WriteByte('/')
		b.WriteString(escapeToken(tok))
	}
	return b.String()
}

func (p Pointer) Parent() (Pointer, string) {
	if len(p) == 0 {
		return nil, ""
	}
	return p[:len(p)-1], p[len(p)-1]
}

// HasPrefix reports whether q is p or an ancestor of p.
func (p Pointer) HasPrefix(q Pointer) bool {
	if len(q) > len(p) {
		return false
	}
	for i := range q {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

func (p Pointer) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Pointer) UnmarshalText(b []byte) error {
	v, err := ParsePointer(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func escapeToken(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

func unescapeToken(s string) (string, error) {
	if !strings.Contains(s, "~") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '~' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", errBadEscape
		}
		switch s[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", errBadEscape
		}
		i++
	}
	return b.String(), nil
}

// arrayIndex parses tok as an index into an array of length n. When allowEnd
// is set, "-" and n itself address the slot past the end.
func arrayIndex(tok string, n int, allowEnd bool) (int, bool) {
	if tok == "-" {
		return n, allowEnd
	}
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	if i < n || (allowEnd && i == n) {
		return i, true
	}
	return 0, false
}
