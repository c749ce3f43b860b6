package display

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestTemplate_RenderLines(t *testing.T) {
	tests := map[string]struct {
		tmpl     string
		data     any
		expLines []string
	}{
		"plain text": {
			tmpl:     "hello",
			expLines: []string{"hello"},
		},
		"trailing newline dropped": {
			tmpl:     "a\nb\n",
			expLines: []string{"a", "b"},
		},
		"sprig functions": {
			tmpl:     `{{ .Name | upper }}{{ "\n" }}{{ .Missing | default "none" }}`,
			data:     map[string]string{"Name": "mikkel"},
			expLines: []string{"MIKKEL", "none"},
		},
		"range": {
			tmpl:     `{{ range . }}  {{ . }} {{ end }}`,
			data:     []string{"NORTH", "UP"},
			expLines: []string{"  NORTH   UP "},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			lines, err := MustParse(name, tt.tmpl).RenderLines(tt.data)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "lines", strings.Join(lines, "|"), strings.Join(tt.expLines, "|"))
		})
	}
}

func TestTemplate_RenderError(t *testing.T) {
	_, err := MustParse("bad", `{{ .Name.Nope }}`).Render(struct{ Name string }{"x"})
	testutil.AssertErrorContains(t, err, "executing template bad")
}

func TestWrap(t *testing.T) {
	long := strings.Repeat("cave ", 30)
	for _, line := range strings.Split(Wrap(long), "\n") {
		if len(line) > DefaultWidth {
			t.Errorf("line longer than %d: %q", DefaultWidth, line)
		}
	}
	testutil.AssertEqual(t, "short text unchanged", Wrap("A short room."), "A short room.")
}
