package store

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"tiger-client/internal/patch"
)

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

type shapeField struct {
	name     string
	typ      reflect.Type
	nullable bool
}

var shapeFields sync.Map // reflect.Type -> []shapeField

func fieldsOf(t reflect.Type) []shapeField {
	if v, ok := shapeFields.Load(t); ok {
		return v.([]shapeField)
	}
	var out []shapeField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out = append(out, shapeField{name: name, typ: f.Type, nullable: f.Tag.Get("state") == "nullable"})
	}
	shapeFields.Store(t, out)
	return out
}

// checkShape verifies that the generic JSON value v has exactly the shape of
// Go type t. Every declared field must be present; only pointer fields and
// fields tagged `state:"nullable"` may be null.
func checkShape(v any, t reflect.Type, at patch.Pointer, nullable bool) error {
	if t.Kind() == reflect.Pointer {
		if v == nil {
			return nil
		}
		return checkShape(v, t.Elem(), at, false)
	}
	if v == nil {
		if nullable {
			return nil
		}
		return ShapeError{Path: at, Reason: fmt.Sprintf("null where %s is required", t)}
	}
	// Types with their own wire form are checked by decoding.
	if reflect.PointerTo(t).Implements(unmarshalerType) {
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return kindMismatch(at, "object", v)
		}
		fields := fieldsOf(t)
		known := make(map[string]bool, len(fields))
		for _, f := range fields {
			known[f.name] = true
			fv, ok := m[f.name]
			if !ok {
				return ShapeError{Path: child(at, f.name), Reason: "missing field"}
			}
			if err := checkShape(fv, f.typ, child(at, f.name), f.nullable); err != nil {
				return err
			}
		}
		for k := range m {
			if !known[k] {
				return ShapeError{Path: child(at, k), Reason: "unknown field"}
			}
		}
		return nil
	case reflect.Map:
		m, ok := v.(map[string]any)
		if !ok {
			return kindMismatch(at, "object", v)
		}
		for k, mv := range m {
			if err := checkShape(mv, t.Elem(), child(at, k), false); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice:
		a, ok := v.([]any)
		if !ok {
			return kindMismatch(at, "array", v)
		}
		for i, ev := range a {
			if err := checkShape(ev, t.Elem(), child(at, i), false); err != nil {
				return err
			}
		}
		return nil
	case reflect.Array:
		a, ok := v.([]any)
		if !ok {
			return kindMismatch(at, "array", v)
		}
		if len(a) != t.Len() {
			return ShapeError{Path: at, Reason: fmt.Sprintf("expected %d elements, got %d", t.Len(), len(a))}
		}
		for i, ev := range a {
			if err := checkShape(ev, t.Elem(), child(at, i), false); err != nil {
				return err
			}
		}
		return nil
	case reflect.String:
		if _, ok := v.(string); !ok {
			return kindMismatch(at, "string", v)
		}
		return nil
	case reflect.Bool:
		if _, ok := v.(bool); !ok {
			return kindMismatch(at, "boolean", v)
		}
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(float64)
		if !ok {
			return kindMismatch(at, "number", v)
		}
		if n != math.Trunc(n) {
			return ShapeError{Path: at, Reason: fmt.Sprintf("expected integer, got %v", n)}
		}
		return nil
	case reflect.Float32, reflect.Float64:
		if _, ok := v.(float64); !ok {
			return kindMismatch(at, "number", v)
		}
		return nil
	case reflect.Interface:
		return nil
	}
	return ShapeError{Path: at, Reason: fmt.Sprintf("unsupported schema type %s", t)}
}

// fillEmpty turns null slices and maps that the schema requires into empty
// ones. Go trees built in code leave them nil, which encodes as null.
func fillEmpty(v any, t reflect.Type, nullable bool) any {
	if t.Kind() == reflect.Pointer {
		if v == nil {
			return nil
		}
		return fillEmpty(v, t.Elem(), false)
	}
	if reflect.PointerTo(t).Implements(unmarshalerType) {
		return v
	}
	switch t.Kind() {
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		for _, f := range fieldsOf(t) {
			if fv, ok := m[f.name]; ok {
				m[f.name] = fillEmpty(fv, f.typ, f.nullable)
			}
		}
	case reflect.Map:
		if v == nil && !nullable {
			return map[string]any{}
		}
		if m, ok := v.(map[string]any); ok {
			for k, mv := range m {
				m[k] = fillEmpty(mv, t.Elem(), false)
			}
		}
	case reflect.Slice:
		if v == nil && !nullable {
			return []any{}
		}
		if a, ok := v.([]any); ok {
			for i, ev := range a {
				a[i] = fillEmpty(ev, t.Elem(), false)
			}
		}
	case reflect.Array:
		if a, ok := v.([]any); ok {
			for i, ev := range a {
				a[i] = fillEmpty(ev, t.Elem(), false)
			}
		}
	}
	return v
}

func child(at patch.Pointer, tok any) patch.Pointer {
	out := make(patch.Pointer, 0, len(at)+1)
	out = append(out, at...)
	return append(out, patch.Field(tok)...)
}

func kindMismatch(at patch.Pointer, want string, got any) error {
	return ShapeError{Path: at, Reason: fmt.Sprintf("expected %s, got %s", want, jsonKind(got))}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
