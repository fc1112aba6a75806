package tui

import (
	"reflect"
	"testing"
)

func TestSplitShellWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  save  ", []string{"save"}},
		{`open_documents paths='["/art/my sheet.sheet"]'`, []string{"open_documents", `paths=["/art/my sheet.sheet"]`}},
		{`create_animation name="walk cycle"`, []string{"create_animation", "name=walk cycle"}},
		{`x=\"1\"`, []string{`x="1"`}},
		{`rename\ me`, []string{"rename me"}},
		{`''`, []string{""}},
	}

	for _, tt := range tests {
		got, err := splitShellWords(tt.in)
		if err != nil || !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("splitShellWords(%q)=%q err=%v, want %q", tt.in, got, err, tt.want)
		}
	}

	for _, bad := range []string{`"open`, `a\`} {
		if _, err := splitShellWords(bad); err == nil {
			t.Fatalf("splitShellWords(%q): expected error", bad)
		}
	}
}
