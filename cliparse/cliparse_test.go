// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags_EnvVars(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("IDENTITY_SALT", "test-salt")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "postgres://test", "-identity-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}

func TestParseFlags_DefaultPort(t *testing.T) {
	os.Clearenv()

	cfg, err := ParseFlags([]string{"-d", "postgres://test", "-identity-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3320 {
		t.Errorf("expected default port 3320, got %d", cfg.Port)
	}
}

func TestParseFlags_MissingDatabaseURL(t *testing.T) {
	os.Clearenv()

	_, err := ParseFlags([]string{"-identity-salt", "s1"})
	if err == nil {
		t.Error("expected error for missing database URL")
	}
}

func TestParseFlags_MissingIdentitySalt(t *testing.T) {
	os.Clearenv()

	_, err := ParseFlags([]string{"-d", "postgres://test"})
	if err == nil {
		t.Error("expected error for missing identity salt")
	}
}

func TestParseFlags_ConfigFile(t *testing.T) {
	os.Clearenv()

	path := filepath.Join(t.TempDir(), "messvote.toml")
	content := `
[server]
port = 7001

[database]
url = "postgres://from-file"

[auth]
identity_salt = "file-salt"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseFlags([]string{"-c", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 7001 {
		t.Errorf("expected port 7001 from file, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://from-file" {
		t.Errorf("expected database URL from file, got %s", cfg.DatabaseURL)
	}
	if cfg.IdentitySalt != "file-salt" {
		t.Errorf("expected identity salt from file, got %s", cfg.IdentitySalt)
	}
}

func TestParseFlags_FlagsBeatConfigFile(t *testing.T) {
	os.Clearenv()

	path := filepath.Join(t.TempDir(), "messvote.toml")
	content := `
[server]
port = 7001

[database]
url = "postgres://from-file"

[auth]
identity_salt = "file-salt"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseFlags([]string{"-c", path, "-p", "8088", "-d", "postgres://from-flag"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 8088 {
		t.Errorf("flag should beat config file: expected 8088, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://from-flag" {
		t.Errorf("flag should beat config file, got %s", cfg.DatabaseURL)
	}
	if cfg.IdentitySalt != "file-salt" {
		t.Errorf("unset values should come from file, got %s", cfg.IdentitySalt)
	}
}

func TestParseFlags_BadConfigFile(t *testing.T) {
	os.Clearenv()

	path := filepath.Join(t.TempDir(), "messvote.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ParseFlags([]string{"-c", path})
	if err == nil {
		t.Error("expected error for malformed config file")
	}
}
