package config

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.DBDriver != DriverMySQL || s.SyncExchange != "sync.events" || s.SyncPrefetch != 10 {
		t.Fatalf("defaults = %+v", s)
	}
}

func TestLoadSettingsRejectsBadValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := LoadSettings(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}

	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("SYNC_PREFETCH", "0")
	if _, err := LoadSettings(); err == nil {
		t.Fatalf("expected error for zero prefetch")
	}
}

func TestMySQLDSN(t *testing.T) {
	s := &Settings{DBUser: "sync", DBPassword: "pw", DBHost: "db", DBPort: "3306", DBName: "warehouse"}
	dsn := MySQLDSN(s)
	if !strings.HasPrefix(dsn, "sync:pw@tcp(db:3306)/warehouse?") || !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("dsn = %s", dsn)
	}

	s.DBHost = "/cloudsql/proj:region:inst"
	if dsn := MySQLDSN(s); !strings.Contains(dsn, "@unix(/cloudsql/proj:region:inst)/") {
		t.Fatalf("cloudsql dsn = %s", dsn)
	}
}

func TestBackoff(t *testing.T) {
	cases := map[int]time.Duration{1: 2 * time.Second, 3: 8 * time.Second, 5: 30 * time.Second, 9: 30 * time.Second}
	for attempt, want := range cases {
		if got := Backoff(attempt); got != want {
			t.Fatalf("Backoff(%d) = %s, want %s", attempt, got, want)
		}
	}
}

func TestGetLoggerLevel(t *testing.T) {
	if got := GetLogger("debug").GetLevel(); got != logrus.DebugLevel {
		t.Fatalf("level = %s", got)
	}
	if got := GetLogger("nonsense").GetLevel(); got != logrus.InfoLevel {
		t.Fatalf("fallback level = %s", got)
	}
}
