// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App      AppConfig      `koanf:"app"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Tracing  TracingConfig  `koanf:"tracing"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Solver   SolverConfig   `koanf:"solver"`
	Data     DataConfig     `koanf:"data"`
	Report   ReportConfig   `koanf:"report"`
	History  HistoryConfig  `koanf:"history"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig - настройки базы данных
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // postgres
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN возвращает строку подключения
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}

// CacheConfig - настройки кэширования
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SolverConfig - параметры поиска решения
type SolverConfig struct {
	InitialTemperature      float64 `koanf:"initial_temperature"`
	CoolingRate             float64 `koanf:"cooling_rate"`
	TerminationTemperature  float64 `koanf:"termination_temperature"`
	MaxIterations           int     `koanf:"max_iterations"`
	MinAcceptanceThreshold  float64 `koanf:"min_acceptance_threshold"`
	ConstructionStrategy    string  `koanf:"construction_strategy"` // ffd_grouped, ffd, random
	Seed                    int64   `koanf:"seed"`                  // 0 - от текущего времени
	PrecomputeDistances     bool    `koanf:"precompute_distances"`
	DefuzzificationMethod   string  `koanf:"defuzzification_method"` // centroid, bisector, mom, som, lom
	RouteOptimizationPeriod int     `koanf:"route_optimization_period"`
	MaxExactDestinations    int     `koanf:"max_exact_destinations"`
}

// DataConfig - пути к входным данным
type DataConfig struct {
	LocationsFile  string `koanf:"locations_file"`
	RoutesFile     string `koanf:"routes_file"`
	FleetFile      string `koanf:"fleet_file"`
	PackingFile    string `koanf:"packing_file"`
	HistoricalFile string `koanf:"historical_file"` // пустая строка отключает сравнение
}

// ReportConfig - настройки вывода результатов
type ReportConfig struct {
	Console      bool      `koanf:"console"`
	JSONPath     string    `koanf:"json_path"`
	ExcelPath    string    `koanf:"excel_path"` // пустая строка отключает Excel
	PDFPath      string    `koanf:"pdf_path"`   // пустая строка отключает PDF
	PDF          PDFConfig `koanf:"pdf"`
	CurrencyUnit string    `koanf:"currency_unit"`
}

// PDFConfig конфигурация PDF генератора
type PDFConfig struct {
	MarginTop         float64 `koanf:"margin_top"`    // mm
	MarginBottom      float64 `koanf:"margin_bottom"` // mm
	MarginLeft        float64 `koanf:"margin_left"`   // mm
	MarginRight       float64 `koanf:"margin_right"`  // mm
	EnablePageNumbers bool    `koanf:"enable_page_numbers"`
}

// HistoryConfig - настройки сохранения истории запусков
type HistoryConfig struct {
	Enabled bool     `koanf:"enabled"`
	Tags    []string `koanf:"tags"`

	// Keep - сколько последних запусков хранить на сценарий
	// (0 - без ограничения)
	Keep int `koanf:"keep"`
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port))
	}

	// Валидация параметров поиска
	if c.Solver.InitialTemperature <= 0 {
		errs = append(errs, "solver.initial_temperature must be positive")
	}
	if c.Solver.CoolingRate <= 0 || c.Solver.CoolingRate >= 1 {
		errs = append(errs, fmt.Sprintf("solver.cooling_rate must be in (0, 1), got %v", c.Solver.CoolingRate))
	}
	if c.Solver.TerminationTemperature <= 0 {
		errs = append(errs, "solver.termination_temperature must be positive")
	}
	if c.Solver.MaxIterations <= 0 {
		errs = append(errs, "solver.max_iterations must be positive")
	}

	validStrategies := map[string]bool{"ffd_grouped": true, "ffd": true, "random": true}
	if !validStrategies[c.Solver.ConstructionStrategy] {
		errs = append(errs, fmt.Sprintf("solver.construction_strategy must be one of: ffd_grouped, ffd, random, got %s", c.Solver.ConstructionStrategy))
	}

	validMethods := map[string]bool{"centroid": true, "bisector": true, "mom": true, "som": true, "lom": true}
	if !validMethods[c.Solver.DefuzzificationMethod] {
		errs = append(errs, fmt.Sprintf("solver.defuzzification_method must be one of: centroid, bisector, mom, som, lom, got %s", c.Solver.DefuzzificationMethod))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
