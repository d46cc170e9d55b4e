package config

import (
	"testing"
)

func validSolver() SolverConfig {
	return SolverConfig{
		InitialTemperature:     2000,
		CoolingRate:            0.995,
		TerminationTemperature: 0.1,
		MaxIterations:          1000,
		MinAcceptanceThreshold: 0.0001,
		ConstructionStrategy:   "ffd_grouped",
		DefuzzificationMethod:  "centroid",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing app name",
			mutate:  func(c *Config) { c.App.Name = "" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "invalid" },
			wantErr: true,
		},
		{
			name:    "valid debug level",
			mutate:  func(c *Config) { c.Log.Level = "debug" },
			wantErr: false,
		},
		{
			name:    "invalid metrics port",
			mutate:  func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "cooling rate out of range",
			mutate:  func(c *Config) { c.Solver.CoolingRate = 1.5 },
			wantErr: true,
		},
		{
			name:    "non-positive temperature",
			mutate:  func(c *Config) { c.Solver.InitialTemperature = 0 },
			wantErr: true,
		},
		{
			name:    "unknown construction strategy",
			mutate:  func(c *Config) { c.Solver.ConstructionStrategy = "greedy" },
			wantErr: true,
		},
		{
			name:    "unknown defuzzification method",
			mutate:  func(c *Config) { c.Solver.DefuzzificationMethod = "mean" },
			wantErr: true,
		},
		{
			name:    "bisector method valid",
			mutate:  func(c *Config) { c.Solver.DefuzzificationMethod = "bisector" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				App:    AppConfig{Name: "test-service"},
				Log:    LogConfig{Level: "info"},
				Solver: validSolver(),
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Driver:   "postgres",
		Host:     "localhost",
		Port:     5432,
		Database: "testdb",
		Username: "user",
		Password: "pass",
		SSLMode:  "disable",
	}

	expect := "host=localhost port=5432 user=user password=pass dbname=testdb sslmode=disable"
	if dsn := cfg.DSN(); dsn != expect {
		t.Errorf("expected DSN %s, got %s", expect, dsn)
	}
}

func TestCacheConfig_Address(t *testing.T) {
	cfg := CacheConfig{
		Host: "redis.local",
		Port: 6379,
	}

	addr := cfg.Address()
	if addr != "redis.local:6379" {
		t.Errorf("expected 'redis.local:6379', got %s", addr)
	}
}
