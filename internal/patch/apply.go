package patch

import (
	"fmt"
	"reflect"
)

// Apply runs p against doc in order and returns the resulting document.
//
// Containers along each edited path are copied before they change, so doc
// and the values carried by p are never mutated: a failed Apply leaves the
// caller's document exactly as it was.
func Apply(doc any, p Patch) (any, error) {
	cur := doc
	for i, op := range p {
		next, err := applyOp(cur, op)
		if err != nil {
			return doc, ApplyError{Index: i, Op: op.Kind, Err: err}
		}
		cur = next
	}
	return cur, nil
}

// Get resolves p against doc.
func Get(doc any, p Pointer) (any, error) {
	node := doc
	for i, tok := range p {
		next, ok := child(node, tok)
		if !ok {
			return nil, PathError{Op: Test, Path: p[:i+1], Reason: "not found"}
		}
		node = next
	}
	return node, nil
}

func applyOp(doc any, op Op) (any, error) {
	switch op.Kind {
	case Add:
		return add(doc, op.Path, op.Value)
	case Remove:
		return remove(doc, op.Path)
	case Replace:
		return replace(doc, op.Path, op.Value)
	case Move:
		if op.Path.HasPrefix(op.From) && len(op.Path) > len(op.From) {
			return nil, PathError{Op: Move, Path: op.Path, Reason: "cannot move a value into its own child"}
		}
		v, err := lookup(doc, Move, op.From)
		if err != nil {
			return nil, err
		}
		if reflect.DeepEqual(op.From, op.Path) {
			return doc, nil
		}
		doc, err = remove(doc, op.From)
		if err != nil {
			return nil, err
		}
		return add(doc, op.Path, v)
	case Copy:
		v, err := lookup(doc, Copy, op.From)
		if err != nil {
			return nil, err
		}
		return add(doc, op.Path, v)
	case Test:
		v, err := lookup(doc, Test, op.Path)
		if err != nil {
			return nil, err
		}
		if !reflect.DeepEqual(v, op.Value) {
			return nil, TestFailedError{Path: op.Path}
		}
		return doc, nil
	default:
		return nil, MalformedOpError{Reason: fmt.Sprintf("unknown op %q", op.Kind)}
	}
}

func lookup(doc any, kind Kind, p Pointer) (any, error) {
	v, err := Get(doc, p)
	if err != nil {
		if pe, ok := err.(PathError); ok {
			pe.Op = kind
			return nil, pe
		}
		return nil, err
	}
	return v, nil
}

func add(doc any, p Pointer, v any) (any, error) {
	if len(p) == 0 {
		return v, nil
	}
	return edit(doc, Add, p, 0, func(parent any, tok string) (any, error) {
		switch c := parent.(type) {
		case map[string]any:
			out := cloneMap(c)
			out[tok] = v
			return out, nil
		case []any:
			i, ok := arrayIndex(tok, len(c), true)
			if !ok {
				return nil, PathError{Op: Add, Path: p, Reason: fmt.Sprintf("index %q out of range for length %d", tok, len(c))}
			}
			out := make([]any, 0, len(c)+1)
			out = append(out, c[:i]...)
			out = append(out, v)
			return append(out, c[i:]...), nil
		default:
			return nil, PathError{Op: Add, Path: p, Reason: "parent is not a container"}
		}
	})
}

func remove(doc any, p Pointer) (any, error) {
	if len(p) == 0 {
		return nil, PathError{Op: Remove, Path: p, Reason: "cannot remove the document root"}
	}
	return edit(doc, Remove, p, 0, func(parent any, tok string) (any, error) {
		switch c := parent.(type) {
		case map[string]any:
			if _, ok := c[tok]; !ok {
				return nil, PathError{Op: Remove, Path: p, Reason: "not found"}
			}
			out := cloneMap(c)
			delete(out, tok)
			return out, nil
		case []any:
			i, ok := arrayIndex(tok, len(c), false)
			if !ok {
				return nil, PathError{Op: Remove, Path: p, Reason: fmt.Sprintf("index %q out of range for length %d", tok, len(c))}
			}
			out := make([]any, 0, len(c)-1)
			out = append(out, c[:i]...)
			return append(out, c[i+1:]...), nil
		default:
			return nil, PathError{Op: Remove, Path: p, Reason: "parent is not a container"}
		}
	})
}

func replace(doc any, p Pointer, v any) (any, error) {
	if len(p) == 0 {
		return v, nil
	}
	return edit(doc, Replace, p, 0, func(parent any, tok string) (any, error) {
		switch c := parent.(type) {
		case map[string]any:
			if _, ok := c[tok]; !ok {
				return nil, PathError{Op: Replace, Path: p, Reason: "not found"}
			}
			out := cloneMap(c)
			out[tok] = v
			return out, nil
		case []any:
			i, ok := arrayIndex(tok, len(c), false)
			if !ok {
				return nil, PathError{Op: Replace, Path: p, Reason: fmt.Sprintf("index %q out of range for length %d", tok, len(c))}
			}
			out := append([]any(nil), c...)
			out[i] = v
			return out, nil
		default:
			return nil, PathError{Op: Replace, Path: p, Reason: "parent is not a container"}
		}
	})
}

// edit walks to the parent of p[len(p)-1], lets fn produce a modified copy of
// it, and rebuilds every ancestor as a copy holding the new child.
func edit(node any, kind Kind, p Pointer, depth int, fn func(parent any, tok string) (any, error)) (any, error) {
	if depth == len(p)-1 {
		return fn(node, p[depth])
	}
	tok := p[depth]
	next, ok := child(node, tok)
	if !ok {
		return nil, PathError{Op: kind, Path: p[:depth+1], Reason: "not found"}
	}
	updated, err := edit(next, kind, p, depth+1, fn)
	if err != nil {
		return nil, err
	}
	switch c := node.(type) {
	case map[string]any:
		out := cloneMap(c)
		out[tok] = updated
		return out, nil
	case []any:
		i, _ := arrayIndex(tok, len(c), false)
		out := append([]any(nil), c...)
		out[i] = updated
		return out, nil
	}
	return nil, PathError{Op: kind, Path: p[:depth+1], Reason: "not a container"}
}

func child(node any, tok string) (any, bool) {
	switch c := node.(type) {
	case map[string]any:
		v, ok := c[tok]
		return v, ok
	case []any:
		i, ok := arrayIndex(tok, len(c), false)
		if !ok {
			return nil, false
		}
		return c[i], true
	}
	return nil, false
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
