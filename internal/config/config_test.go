package config

import (
	"testing"
	"time"
)

// clearEnv removes every variable Load reads so tests see pure defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT",
		"IDLE_TIMEOUT", "MAX_HEADER_BYTES", "GIN_MODE",
		"LOG_LEVEL", "LOG_PRETTY", "SWAGGER_ENABLED", "API_BASE_PATH",
		"DB_PATH",
		"STORAGE_DRIVER", "S3_BUCKET", "S3_REGION", "S3_PREFIX",
		"RATE_RPS", "RATE_BURST",
		"CORS_ALLOWED_ORIGINS", "ENABLE_HSTS", "HSTS_MAX_AGE",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
		"OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api" {
		t.Fatalf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.DBPath != "claims.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Storage.Driver != StorageDriverSQLite {
		t.Fatalf("Storage.Driver = %q", cfg.Storage.Driver)
	}
	if cfg.RateRPS != 25.0 || cfg.RateBurst != 50 {
		t.Fatalf("rate limits = %v/%v", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.ReadTimeout != 15*time.Second || cfg.WriteTimeout != 20*time.Second {
		t.Fatalf("timeouts = %v/%v", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.OTEL.Enabled {
		t.Fatalf("OTEL should default off")
	}
	if cfg.SwaggerEnabled {
		t.Fatalf("swagger should default off")
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "weird") // normalized to release
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("API_BASE_PATH", "api/v2/") // leading slash added, trailing stripped
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("RATE_RPS", "2.5")
	t.Setenv("RATE_BURST", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , https://b.example ,")
	t.Setenv("OTEL_ENABLED", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.RateRPS != 2.5 || cfg.RateBurst != 7 {
		t.Fatalf("rate limits = %v/%v", cfg.RateRPS, cfg.RateBurst)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[0] != "https://a.example" {
		t.Fatalf("CORS origins = %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.OTEL.Enabled {
		t.Fatalf("OTEL_ENABLED=yes not honored")
	}
}

func TestLoad_StorageValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "s3")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for s3 driver without bucket")
	}

	t.Setenv("S3_BUCKET", "claims-docs")
	t.Setenv("S3_REGION", "eu-west-1")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != StorageDriverS3 || cfg.Storage.S3Bucket != "claims-docs" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}

	t.Setenv("STORAGE_DRIVER", "floppy")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown storage driver")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		k, v string
	}{
		{"bad log level", "LOG_LEVEL", "chatty"},
		{"negative rps", "RATE_RPS", "-1"},
		{"zero burst", "RATE_BURST", "0"},
		{"bad sampler", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
		{"zero timeout", "READ_TIMEOUT", "0s"},
		{"bad header bytes", "MAX_HEADER_BYTES", "-5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.k, tc.v)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.k, tc.v)
			}
		})
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "nope")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	_ = MustLoad()
}

func Test_normalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/":       "/",
		"api":     "/api",
		"/api":    "/api",
		"/api/":   "/api",
		"api/v2/": "/api/v2",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q; want %q", in, got, want)
		}
	}
}

func Test_envHelpers(t *testing.T) {
	clearEnv(t)

	t.Setenv("X_STR", "v")
	if getenv("X_STR", "d") != "v" || getenv("X_MISSING", "d") != "d" {
		t.Fatalf("getenv failed")
	}

	t.Setenv("X_INT", "12")
	if getint("X_INT", 1) != 12 || getint("X_MISSING", 1) != 1 {
		t.Fatalf("getint failed")
	}
	t.Setenv("X_INT_BAD", "twelve")
	if getint("X_INT_BAD", 3) != 3 {
		t.Fatalf("getint should fall back on parse error")
	}

	t.Setenv("X_F", "0.5")
	if getfloat("X_F", 1) != 0.5 {
		t.Fatalf("getfloat failed")
	}

	t.Setenv("X_B", "on")
	if !getbool("X_B", false) || getbool("X_MISSING", true) != true {
		t.Fatalf("getbool failed")
	}

	t.Setenv("X_D", "90s")
	if getdur("X_D", time.Second) != 90*time.Second {
		t.Fatalf("getdur failed")
	}
}
