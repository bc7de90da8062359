package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tessro/chimera/internal/aspect"
	"github.com/tessro/chimera/internal/config"
)

func TestRunDemo(t *testing.T) {
	tests := []struct {
		name     string
		decorate bool
		want     []string
		notWant  []string
	}{
		{
			name: "hooks only",
			want: []string{
				"val4 changed: 0 -> 500",
				"val1=2 val2=20 val3=200 val4=500\n",
				"return=500",
			},
		},
		{
			name:     "with decorator",
			decorate: true,
			want: []string{
				"val4 changed: 0 -> 500",
				"val1=2 val2=20 val3=200 val4=500 val5=10000 val6=100000",
				"return=-500",
			},
			notWant: []string{"val4=-500", "-> -500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := aspect.Default.Len()

			var buf bytes.Buffer
			if err := runDemo(&buf, tt.decorate); err != nil {
				t.Fatalf("runDemo() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
			for _, bad := range tt.notWant {
				if strings.Contains(buf.String(), bad) {
					t.Errorf("output contains %q:\n%s", bad, buf.String())
				}
			}
			if got := aspect.Default.Len(); got != before {
				t.Errorf("default registry grew from %d to %d", before, got)
			}
		})
	}
}

func TestResolveTimeout(t *testing.T) {
	defer func() { globalConfig = nil }()

	globalConfig = nil
	if got := resolveTimeout(0); got != config.DefaultRunTimeout {
		t.Errorf("resolveTimeout(0) with no config = %v, want %v", got, config.DefaultRunTimeout)
	}

	globalConfig = &config.GlobalConfig{Run: config.RunConfig{Timeout: "2s"}}
	if got := resolveTimeout(0); got != 2*time.Second {
		t.Errorf("resolveTimeout(0) = %v, want 2s", got)
	}
	if got := resolveTimeout(time.Second); got != time.Second {
		t.Errorf("resolveTimeout(1s) = %v, want flag value", got)
	}
}

func TestResolveWidth(t *testing.T) {
	defer func() { globalConfig = nil }()

	globalConfig = &config.GlobalConfig{Report: config.ReportConfig{Width: 100}}
	if got := resolveWidth(0); got != 100 {
		t.Errorf("resolveWidth(0) = %d, want 100", got)
	}
	if got := resolveWidth(60); got != 60 {
		t.Errorf("resolveWidth(60) = %d, want 60", got)
	}
}

// execute runs the root command with isolated config and log paths.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		runHTML, runMarkdown, runWidth, runTimeout = false, false, 0, 0
		configPath, logLevel, logFile, verbose, chimeraDir = "", "", "", false, ""
		globalConfig = nil
	})

	dir := t.TempDir()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "missing.toml"),
		"--log-file", filepath.Join(dir, "chimera.log"),
	}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeScenario(t, `name: quick
jobs:
  - name: fetch
    delay: 5ms
  - name: parse
    delay: 10ms
`)

	out, err := execute(t, "run", path, "--markdown")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	for _, want := range []string{"# Scenario: quick", "**Status:** complete", "fetch", "parse"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCommand_InvalidScenario(t *testing.T) {
	path := writeScenario(t, "name: empty\njobs: []\n")

	if _, err := execute(t, "run", path); err == nil {
		t.Fatal("expected error for scenario without jobs")
	}
}

func TestRunCommand_InvalidLogLevel(t *testing.T) {
	if _, err := execute(t, "--log-level", "loud", "version"); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "chimera ") {
		t.Errorf("output = %q, want chimera prefix", out)
	}
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, "name: local\njobs:\n  - name: a\n    delay: 1ms\n")

	tests := []struct {
		name    string
		arg     string
		want    string
		wantErr bool
	}{
		{"file", path, "local", false},
		{"sample", "fanout", "fanout", false},
		{"missing", "does-not-exist", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := loadScenario(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadScenario(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if err == nil && sc.Name != tt.want {
				t.Errorf("scenario name = %q, want %q", sc.Name, tt.want)
			}
		})
	}
}

func TestSamplesCommand(t *testing.T) {
	out, err := execute(t, "samples")
	if err != nil {
		t.Fatalf("samples error = %v", err)
	}
	if !strings.Contains(out, "fanout\n") {
		t.Errorf("output missing fanout:\n%s", out)
	}
}
