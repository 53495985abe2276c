package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_LogShipRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("LOGSHIP_ENABLED", "true")
	t.Setenv("LOGSHIP_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when LOGSHIP_ENABLED=true without LOGSHIP_ENDPOINT")
	}
}

func TestLoad_LogShipConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("LOGSHIP_ENABLED", "true")
	t.Setenv("LOGSHIP_ENDPOINT", "https://logs.example.com/ingest")
	t.Setenv("LOGSHIP_TOKEN", "token-123")
	t.Setenv("LOGSHIP_TIMEOUT", "4s")
	t.Setenv("LOGSHIP_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.LogShipEnabled {
		t.Fatalf("expected LogShipEnabled=true")
	}
	if cfg.LogShipEndpoint != "https://logs.example.com/ingest" {
		t.Fatalf("unexpected LogShipEndpoint: %q", cfg.LogShipEndpoint)
	}
	if cfg.LogShipToken != "token-123" {
		t.Fatalf("unexpected LogShipToken")
	}
	if cfg.LogShipTimeout != 4*time.Second {
		t.Fatalf("unexpected LogShipTimeout: %s", cfg.LogShipTimeout)
	}
	if cfg.LogShipMinLevel.String() != "warn" {
		t.Fatalf("unexpected LogShipMinLevel: %s", cfg.LogShipMinLevel.String())
	}
}

func TestLoad_SeasonStartParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("date only", func(t *testing.T) {
		t.Setenv("SEASON_START", "2026-09-15")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		want := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)
		if !cfg.SeasonStart.Equal(want) {
			t.Fatalf("unexpected SeasonStart: %s", cfg.SeasonStart)
		}
	})

	t.Run("rfc3339", func(t *testing.T) {
		t.Setenv("SEASON_START", "2026-09-15T18:00:00Z")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		want := time.Date(2026, time.September, 15, 18, 0, 0, 0, time.UTC)
		if !cfg.SeasonStart.Equal(want) {
			t.Fatalf("unexpected SeasonStart: %s", cfg.SeasonStart)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("SEASON_START", "15/09/2026")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid SEASON_START")
		}
	})
}

func TestLoad_SettlementDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SETTLE_INTERVAL", "")
	t.Setenv("SETTLE_BATCH_SIZE", "")
	t.Setenv("SWEEP_INTERVAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SettleInterval != 60*time.Second {
		t.Fatalf("unexpected default settle interval: %s", cfg.SettleInterval)
	}
	if cfg.SettleBatchSize != 50 {
		t.Fatalf("unexpected default settle batch size: %d", cfg.SettleBatchSize)
	}
	if cfg.SweepInterval != 5*time.Second {
		t.Fatalf("unexpected default sweep interval: %s", cfg.SweepInterval)
	}
}

func TestLoad_SettlementValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("invalid settle interval", func(t *testing.T) {
		t.Setenv("SETTLE_INTERVAL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid SETTLE_INTERVAL")
		}
	})

	t.Run("batch size must be positive", func(t *testing.T) {
		t.Setenv("SETTLE_INTERVAL", "60s")
		t.Setenv("SETTLE_BATCH_SIZE", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SETTLE_BATCH_SIZE=0")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "auction-league-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "auction-league-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}
