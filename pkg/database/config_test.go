package database

import (
	"testing"
	"time"

	"github.com/Alijeyrad/wscontext/config"
)

func TestDSN(t *testing.T) {
	c := FromCentralConfig(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "wsctx",
		Password: "secret",
		DBName:   "descriptors",
		SSLMode:  "disable",
	})

	want := "host=db port=5433 user=wsctx password=secret dbname=descriptors sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestConnMaxLifetime(t *testing.T) {
	tests := []struct {
		minutes int
		want    time.Duration
	}{
		{0, 5 * time.Minute},
		{-1, 5 * time.Minute},
		{10, 10 * time.Minute},
	}
	for _, tt := range tests {
		c := Config{ConnMaxLifetimeMin: tt.minutes}
		if got := c.ConnMaxLifetime(); got != tt.want {
			t.Errorf("ConnMaxLifetime(%d) = %v, want %v", tt.minutes, got, tt.want)
		}
	}
}

func TestDatabaseNames(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.DBName = "descriptors"
	cfg.CasbinDatabase.DBName = "casbin"
	cfg.Server.Databases = []string{"casbin", "", "audit", "descriptors"}

	got := databaseNames(cfg)
	want := []string{"descriptors", "casbin", "audit"}
	if len(got) != len(want) {
		t.Fatalf("databaseNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("databaseNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWithDB(t *testing.T) {
	c := Config{Host: "db", DBName: "descriptors"}
	if got := c.withDB("postgres"); got.DBName != "postgres" || got.Host != "db" {
		t.Errorf("withDB() = %+v", got)
	}
	if c.DBName != "descriptors" {
		t.Errorf("withDB modified receiver: %q", c.DBName)
	}
}
