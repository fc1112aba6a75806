package gateway_test

import (
	"testing"

	"tiger-client/internal/gateway"
)

func TestParseArgs(t *testing.T) {
	got, err := gateway.ParseArgs([]string{"name=walk", "shift=true", "delta=16", `paths=["/a","/b"]`, "label=[not json"})
	if err != nil {
		t.Fatal(err)
	}
	if got["name"] != "walk" || got["shift"] != true || got["delta"] != float64(16) || got["label"] != "[not json" {
		t.Fatalf("got %#v", got)
	}
	if ps, _ := got["paths"].([]any); len(ps) != 2 {
		t.Fatalf("paths = %#v", got["paths"])
	}

	for _, bad := range [][]string{{"a=1", "a=2"}, {"novalue"}, {"=1"}} {
		if _, err := gateway.ParseArgs(bad); err == nil {
			t.Fatalf("%v: expected error", bad)
		}
	}

	// Parsed values pass the command table.
	args, _ := gateway.ParseArgs([]string{"name=walk", "shift=false", "ctrl=true"})
	if _, err := gateway.NewRequest("select_animation", args); err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
}
