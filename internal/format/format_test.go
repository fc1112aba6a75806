package format

import (
	"bytes"
	"strings"
	"testing"
)

type doc struct {
	Path                 string            `json:"path"`
	CurrentAnimationName *string           `json:"currentAnimationName"`
	TimelineClockMillis  int64             `json:"timelineClockMillis"`
	FramesBeingRelocated map[string]string `json:"framesBeingRelocated"`
	TimelineIsPlaying    bool              `json:"timelineIsPlaying"`
	WorkbenchOffset      [2]float64        `json:"workbenchOffset"`
}

func TestWriteEDN(t *testing.T) {
	var buf bytes.Buffer
	d := doc{
		Path:                 "/a \"b\".sheet",
		TimelineClockMillis:  9007199254740993,
		FramesBeingRelocated: map[string]string{"/old/f0.png": "/new/f0.png"},
		WorkbenchOffset:      [2]float64{1.5, -2},
	}
	if err := WriteEDN(&buf, d, false); err != nil {
		t.Fatal(err)
	}
	want := `{:current-animation-name nil :frames-being-relocated {"/old/f0.png" "/new/f0.png"} :path "/a \"b\".sheet" :timeline-clock-millis 9007199254740993 :timeline-is-playing false :workbench-offset [1.5 -2]}` + "\n"
	if buf.String() != want {
		t.Fatalf("got  %s\nwant %s", buf.String(), want)
	}
}

func TestWriteEDN_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"a": []int{1, 2}, "b": map[string]any{}}, true); err != nil {
		t.Fatal(err)
	}
	want := "{\n  :a [\n    1\n    2\n  ]\n  :b {}\n}\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}

func TestWrite_Dispatch(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]string{"k": "<v>"}, "JSON", false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != `{"k":"<v>"}`+"\n" {
		t.Fatalf("json: %q", buf.String())
	}
	buf.Reset()
	if err := Write(&buf, []string{"x"}, "edn", false); err != nil || strings.TrimSpace(buf.String()) != `["x"]` {
		t.Fatalf("edn: %q %v", buf.String(), err)
	}
	if err := Write(&buf, 1, "yaml", false); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
