package patch

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	Add     Kind = "add"
	Remove  Kind = "remove"
	Replace Kind = "replace"
	Move    Kind = "move"
	Copy    Kind = "copy"
	Test    Kind = "test"
)

func (k Kind) valid() bool {
	switch k {
	case Add, Remove, Replace, Move, Copy, Test:
		return true
	}
	return false
}

func (k Kind) hasValue() bool { return k == Add || k == Replace || k == Test }
func (k Kind) hasFrom() bool  { return k == Move || k == Copy }

// Op is one structural edit. Value is only meaningful for add, replace and
// test; From only for move and copy. Value holds generic JSON (nil, bool,
// float64, string, []any, map[string]any).
type Op struct {
	Kind  Kind
	Path  Pointer
	From  Pointer
	Value any
}

// Patch is an ordered list of operations applied as one transaction.
type Patch []Op

func AddOp(path Pointer, v any) Op     { return Op{Kind: Add, Path: path, Value: mustGeneric(v)} }
func RemoveOp(path Pointer) Op         { return Op{Kind: Remove, Path: path} }
func ReplaceOp(path Pointer, v any) Op { return Op{Kind: Replace, Path: path, Value: mustGeneric(v)} }
func MoveOp(from, path Pointer) Op     { return Op{Kind: Move, From: from, Path: path} }
func CopyOp(from, path Pointer) Op     { return Op{Kind: Copy, From: from, Path: path} }
func TestOp(path Pointer, v any) Op    { return Op{Kind: Test, Path: path, Value: mustGeneric(v)} }

type wireOp struct {
	Op    Kind             `json:"op"`
	Path  *string          `json:"path"`
	From  *string          `json:"from,omitempty"`
	Value *json.RawMessage `json:"value,omitempty"`
}

func (o Op) MarshalJSON() ([]byte, error) {
	path := o.Path.String()
	w := wireOp{Op: o.Kind, Path: &path}
	if o.Kind.hasFrom() {
		from := o.From.String()
		w.From = &from
	}
	if o.Kind.hasValue() {
		b, err := json.Marshal(o.Value)
		if err != nil {
			return nil, err
		}
		raw := json.RawMessage(b)
		w.Value = &raw
	}
	return json.Marshal(w)
}

func (o *Op) UnmarshalJSON(b []byte) error {
	var w wireOp
	if err := json.Unmarshal(b, &w); err != nil {
		return MalformedOpError{Reason: err.Error()}
	}
	if !w.Op.valid() {
		return MalformedOpError{Reason: fmt.Sprintf("unknown op %q", w.Op)}
	}
	if w.Path == nil {
		return MalformedOpError{Reason: "missing path"}
	}
	path, err := ParsePointer(*w.Path)
	if err != nil {
		return MalformedOpError{Reason: err.Error()}
	}
	out := Op{Kind: w.Op, Path: path}
	if w.Op.hasFrom() {
		if w.From == nil {
			return MalformedOpError{Reason: fmt.Sprintf("%s without from", w.Op)}
		}
		if out.From, err = ParsePointer(*w.From); err != nil {
			return MalformedOpError{Reason: err.Error()}
		}
	}
	if w.Op.hasValue() {
		// A literal null leaves w.Value nil, same as an absent key.
		if w.Value == nil && !hasValueKey(b) {
			return MalformedOpError{Reason: fmt.Sprintf("%s without value", w.Op)}
		}
		if w.Value != nil {
			if err := json.Unmarshal(*w.Value, &out.Value); err != nil {
				return MalformedOpError{Reason: err.Error()}
			}
		}
	}
	*o = out
	return nil
}

func hasValueKey(b []byte) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return false
	}
	_, ok := m["value"]
	return ok
}

// Generic converts a typed Go value into the generic JSON form Apply works on.
func Generic(v any) (any, error) {
	switch v.(type) {
	case nil, bool, float64, string, []any, map[string]any:
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func mustGeneric(v any) any {
	out, err := Generic(v)
	if err != nil {
		panic(fmt.Sprintf("patch: value is not JSON-encodable: %v", err))
	}
	return out
}
