package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/ottodraw/internal/logger"
	"github.com/hammamikhairi/ottodraw/internal/render"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	c := Default()
	if c.Mode != render.ModeColor || c.Scheme != render.SchemeDark {
		t.Errorf("mode/scheme = %s/%s", c.Mode, c.Scheme)
	}
	if c.MaxDistance != 2 || c.FallbackSize != 3 {
		t.Errorf("resolver knobs = %d/%d", c.MaxDistance, c.FallbackSize)
	}
	if !c.AutoAcceptSuggestion || c.AutoAcceptFallback {
		t.Error("auto-accept defaults wrong")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	c := Default()
	err := c.FromEnv(envMap(map[string]string{
		"OTTODRAW_MODE":                 "Outline",
		"OTTODRAW_SCHEME":               "light",
		"OTTODRAW_SEED":                 "42",
		"OTTODRAW_MAX_DISTANCE":         "1",
		"OTTODRAW_AUTO_ACCEPT_FALLBACK": "true",
		"OTTODRAW_NUDGE_AFTER":          "90s",
		"OTTODRAW_LOG_LEVEL":            "verbose",
		"OTTODRAW_CATALOG":              "animals.json",
		"OTTODRAW_SPEECH":               "",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if c.Mode != render.ModeOutline || c.Scheme != render.SchemeLight {
		t.Errorf("mode/scheme = %s/%s", c.Mode, c.Scheme)
	}
	if c.Seed != 42 || c.MaxDistance != 1 || !c.AutoAcceptFallback {
		t.Errorf("seed=%d dist=%d fallback=%v", c.Seed, c.MaxDistance, c.AutoAcceptFallback)
	}
	if c.NudgeAfter != 90*time.Second {
		t.Errorf("nudge = %s", c.NudgeAfter)
	}
	if c.LogLevel != logger.LevelVerbose || c.Catalog != "animals.json" {
		t.Errorf("level=%s catalog=%q", c.LogLevel, c.Catalog)
	}
	if !c.Speech {
		t.Error("empty value should keep the default")
	}
}

func TestFromEnvReportsEveryBadValue(t *testing.T) {
	c := Default()
	err := c.FromEnv(envMap(map[string]string{
		"OTTODRAW_MODE":          "crayon",
		"OTTODRAW_FALLBACK_SIZE": "many",
		"OTTODRAW_SCHEME":        "light",
	}))
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, key := range []string{"OTTODRAW_MODE", "OTTODRAW_FALLBACK_SIZE"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
	if c.Mode != render.ModeColor || c.FallbackSize != 3 {
		t.Error("bad values must not change settings")
	}
	if c.Scheme != render.SchemeLight {
		t.Error("good values should still apply")
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	c := Default()
	if err := c.FromEnv(envMap(map[string]string{"OTTODRAW_CANVAS_WIDTH": "30"})); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("ottodraw", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if f := fs.Lookup("canvas-width"); f.DefValue != "30" {
		t.Errorf("flag default = %s, want env value 30", f.DefValue)
	}

	if err := fs.Parse([]string{"-canvas-width", "64", "-mode", "outline", "-log-level", "off"}); err != nil {
		t.Fatal(err)
	}
	if c.CanvasWidth != 64 || c.Mode != render.ModeOutline || c.LogLevel != logger.LevelOff {
		t.Errorf("flags not applied: %+v", c)
	}

	fs = flag.NewFlagSet("ottodraw", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	c.RegisterFlags(fs)
	if err := fs.Parse([]string{"-scheme", "sepia"}); err == nil {
		t.Error("expected bad scheme to be rejected")
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	c.FallbackSize = 0
	c.MaxDistance = -1
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "fallback size") || !strings.Contains(err.Error(), "max distance") {
		t.Fatalf("Validate = %v", err)
	}

	for _, n := range []int{4, 6} {
		c = Default()
		c.FallbackSize = n
		if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "between 1 and 3") {
			t.Errorf("FallbackSize=%d: Validate = %v", n, err)
		}
	}

	c = Default()
	c.WakeThreshold = 1.5
	if err := c.Validate(); err != nil {
		t.Errorf("threshold is unused without a wake model: %v", err)
	}
	c.WakeModel = "models/hey_otto.onnx"
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "wake threshold") {
		t.Errorf("Validate = %v", err)
	}
}

func TestWakeThresholdFromEnv(t *testing.T) {
	c := Default()
	if err := c.FromEnv(envMap(map[string]string{"OTTODRAW_WAKE_THRESHOLD": "0.45"})); err != nil {
		t.Fatal(err)
	}
	if c.WakeThreshold != 0.45 {
		t.Errorf("threshold = %v", c.WakeThreshold)
	}
	if err := c.FromEnv(envMap(map[string]string{"OTTODRAW_WAKE_THRESHOLD": "high"})); err == nil {
		t.Error("expected bad threshold to be rejected")
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("OTTODRAW_TEST_DOTENV=owl\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OTTODRAW_TEST_DOTENV", "")
	os.Unsetenv("OTTODRAW_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("OTTODRAW_TEST_DOTENV"); got != "owl" {
		t.Errorf("got %q", got)
	}
}
