package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBaseDir(t *testing.T) {
	t.Run("default uses home directory", func(t *testing.T) {
		t.Setenv(EnvChimeraDir, "")

		dir, err := BaseDir()
		if err != nil {
			t.Fatalf("BaseDir() error = %v", err)
		}
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".chimera")
		if dir != expected {
			t.Errorf("BaseDir() = %q, want %q", dir, expected)
		}
	})

	t.Run("CHIMERA_DIR overrides default", func(t *testing.T) {
		t.Setenv(EnvChimeraDir, "/tmp/chimera-test")

		dir, err := BaseDir()
		if err != nil {
			t.Fatalf("BaseDir() error = %v", err)
		}
		if dir != "/tmp/chimera-test" {
			t.Errorf("BaseDir() = %q, want %q", dir, "/tmp/chimera-test")
		}
	})
}

func TestConfigPath(t *testing.T) {
	t.Run("default uses home config directory", func(t *testing.T) {
		t.Setenv(EnvChimeraDir, "")

		path, err := ConfigPath()
		if err != nil {
			t.Fatalf("ConfigPath() error = %v", err)
		}
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "chimera", "config.toml")
		if path != expected {
			t.Errorf("ConfigPath() = %q, want %q", path, expected)
		}
	})

	t.Run("CHIMERA_DIR overrides to CHIMERA_DIR/config", func(t *testing.T) {
		t.Setenv(EnvChimeraDir, "/tmp/chimera-test")

		path, err := ConfigPath()
		if err != nil {
			t.Fatalf("ConfigPath() error = %v", err)
		}
		expected := "/tmp/chimera-test/config/config.toml"
		if path != expected {
			t.Errorf("ConfigPath() = %q, want %q", path, expected)
		}
	})
}

func TestLogPath(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		logPath string
		want    string
	}{
		{"explicit log path wins", "/tmp/chimera-test", "/var/log/chimera.log", "/var/log/chimera.log"},
		{"derived from CHIMERA_DIR", "/tmp/chimera-test", "", "/tmp/chimera-test/chimera.log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvChimeraDir, tt.dir)
			t.Setenv(EnvLogPath, tt.logPath)

			if got := LogPath(); got != tt.want {
				t.Errorf("LogPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
