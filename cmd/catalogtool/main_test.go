package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runTool(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestValidateEmbedded(t *testing.T) {
	code, out, errOut := runTool(t, "validate")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "embedded catalog: ok, 16 animals") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestValidateBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"animals": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := runTool(t, "validate", path)
	if code != 1 || !strings.Contains(errOut, "error:") {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
}

func TestListTier(t *testing.T) {
	code, out, _ := runTool(t, "list", "-tier", "3")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 tier-3 animals, got %q", out)
	}
	for _, name := range []string{"whale", "elephant", "lion"} {
		if !strings.Contains(out, name) {
			t.Errorf("missing %s in %q", name, out)
		}
	}
}

func TestRender(t *testing.T) {
	code, out, errOut := runTool(t, "render", "-animal", "fox", "-step", "1", "-format", "text", "-size", "100")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "program fox cursor=0 mode=color size=100x100") {
		t.Errorf("unexpected program %q", out)
	}

	path := filepath.Join(t.TempDir(), "fox.svg")
	if code, _, errOut := runTool(t, "render", "-animal", "Fox", "-mode", "outline", "-o", path); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Errorf("not an svg: %.80s", data)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := [][]string{
		{"render"},
		{"render", "-animal", "dragon"},
		{"render", "-animal", "cat", "-format", "gif"},
		{"render", "-animal", "cat", "-mode", "crayon"},
	}
	for _, args := range tests {
		if code, _, _ := runTool(t, args...); code == 0 {
			t.Errorf("%v: expected failure", args)
		}
	}
	if code, _, _ := runTool(t, "paint"); code != 2 {
		t.Errorf("unknown command exit = %d, want 2", code)
	}
}
