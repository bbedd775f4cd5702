// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "file:tally.db")
	os.Setenv("FLUSH_INTERVAL", "45m")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default type sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.FlushInterval != 45*time.Minute {
		t.Errorf("expected flush interval 45m, got %s", cfg.FlushInterval)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "file:env.db")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "postgres://test", "-t", "postgres"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://test" {
		t.Errorf("CLI should override env: got %s", cfg.DatabaseURL)
	}
}

func TestParseFlags_MissingDatabaseURL(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("expected error for missing database URL")
	}
}

func TestParseFlags_BadDatabaseType(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{"-d", "file:x.db", "-t", "mariadb"}); err == nil {
		t.Error("expected error for unsupported database type")
	}
}

func TestParseFlags_BadFlushInterval(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{"-d", "file:x.db", "-flush-every", "sometimes"}); err == nil {
		t.Error("expected error for unparseable flush interval")
	}
	if _, err := ParseFlags([]string{"-d", "file:x.db", "-flush-every", "-5m"}); err == nil {
		t.Error("expected error for negative flush interval")
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := ParseFlags([]string{"-d", "file:x.db"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3323 {
		t.Errorf("expected default port 3323, got %d", cfg.Port)
	}
	if cfg.PoolSize != 16 {
		t.Errorf("expected default pool size 16, got %d", cfg.PoolSize)
	}
	if cfg.FlushInterval != 0 {
		t.Errorf("expected scheduler disabled by default, got %s", cfg.FlushInterval)
	}
}
