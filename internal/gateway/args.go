package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseArgs reads name=value pairs typed by a person. A value that parses as
// JSON is taken as that JSON value; anything else is a string.
func ParseArgs(pairs []string) (map[string]any, error) {
	out := map[string]any{}
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid argument %q (want name=value)", p)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("duplicate argument %q", name)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[name] = v
	}
	return out, nil
}
