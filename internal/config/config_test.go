package config

import "testing"

func TestPoolSizingDefaults(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "")
	t.Setenv("DB_MIN_CONNS", "")

	cfg := Load()
	if cfg.DBMaxConns != 10 || cfg.DBMinConns != 2 {
		t.Fatalf("default pool sizing = %d/%d, want 10/2", cfg.DBMaxConns, cfg.DBMinConns)
	}
}

func TestPoolSizingFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_MIN_CONNS", "5")

	cfg := Load()
	if cfg.DBMaxConns != 25 || cfg.DBMinConns != 5 {
		t.Fatalf("pool sizing = %d/%d, want 25/5", cfg.DBMaxConns, cfg.DBMinConns)
	}
}

func TestPoolSizingRejectsGarbage(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("DB_MIN_CONNS", "-3")

	cfg := Load()
	if cfg.DBMaxConns != 10 || cfg.DBMinConns != 2 {
		t.Fatalf("pool sizing = %d/%d, want defaults 10/2", cfg.DBMaxConns, cfg.DBMinConns)
	}
}
