package docs

import (
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	got := strings.Join(Topics(), ",")
	if got != "config,journal,protocol,sessions" {
		t.Fatalf("topics = %s", got)
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" Protocol ")
	if !ok || !strings.HasPrefix(body, "# Engine protocol") {
		t.Fatalf("protocol: ok=%v %q", ok, body)
	}
	for _, bad := range []string{"", "nope", "../docs", "content/protocol"} {
		if _, ok := Get(bad); ok {
			t.Errorf("Get(%q) should fail", bad)
		}
	}
}

func TestRender(t *testing.T) {
	body, _ := Get("sessions")
	out, err := Render(body, "notty", 120)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Gestures") || !strings.Contains(out, "Multi-step edits") {
		t.Fatalf("render:\n%s", out)
	}
	if out == body {
		t.Fatalf("markdown was not rendered")
	}
}
