package config

import (
	"context"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DEV_DB_NAME", "eloan_test")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("ACCESS_TOKEN_MINUTES", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsDev() || cfg.IsProd() {
		t.Error("expected dev mode")
	}
	if cfg.Database.DBName != "eloan_test" {
		t.Errorf("db name = %s", cfg.Database.DBName)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.JWT.AccessTokenMins != 60 {
		t.Errorf("access minutes = %d, want default 60", cfg.JWT.AccessTokenMins)
	}
	if AppConfig != cfg {
		t.Error("global config not set")
	}
	if cfg.GetAllowedOrigins() != "*" {
		t.Error("dev origins should be *")
	}
}

func TestLoad_InvalidMode(t *testing.T) {
	t.Setenv("APP_MODE", "staging")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestLoad_ProdRequiresSecret(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("PROD_JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for default secret in prod")
	}

	t.Setenv("PROD_JWT_SECRET", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWT.Secret != "s3cret" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_DatabaseAndLimits(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("RATE_LIMIT_AUTH", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.MaxOpenConns != 20 || cfg.Database.MaxIdleConns != 10 {
		t.Errorf("pool = %d/%d", cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
	}
	if cfg.Limits.Auth != 10 || cfg.Limits.General != 100 || cfg.Limits.Strict != 3 {
		t.Errorf("limits = %+v", cfg.Limits)
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		in   DatabaseConfig
		want string
	}{
		{
			name: "jakarta",
			in:   DatabaseConfig{User: "root", Password: "pw", Host: "db", Port: "3306", DBName: "eloan", Timezone: "Asia/Jakarta"},
			want: "root:pw@tcp(db:3306)/eloan?charset=utf8mb4&parseTime=True&loc=Asia%2FJakarta",
		},
		{
			name: "no timezone",
			in:   DatabaseConfig{User: "u", Host: "localhost", Port: "3307", DBName: "x"},
			want: "u:@tcp(localhost:3307)/x?charset=utf8mb4&parseTime=True&loc=Local",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildDSN(tt.in); got != tt.want {
				t.Errorf("buildDSN = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHealthCheck_NoDatabase(t *testing.T) {
	DB = nil
	if err := HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error without a database")
	}
	if _, err := PoolStats(); err == nil {
		t.Fatal("expected error without a database")
	}
}
