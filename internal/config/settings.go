package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production

	defaultVersion = "dev"
)

type (
	ServiceConfig struct {
		App            App            `json:"app"`
		HTTPServer     HTTPServer     `json:"http_server"`
		Database       Database       `json:"database"`
		Cache          Cache          `json:"cache"`
		CircuitBreaker CircuitBreaker `json:"circuit_breaker"`
		RateLimiting   RateLimiting   `json:"rate_limiting"`
		Compression    Compression    `json:"compression"`
		Logging        Logging        `json:"logging"`
		Telemetry      Telemetry      `json:"telemetry"`
	}

	App struct {
		ServiceName    string      `envconfig:"APP_SERVICE_NAME" default:"svc-items" json:"service_name"`
		ServiceVersion string      `envconfig:"APP_VERSION" default:"dev" json:"service_version"`
		CommitSHA      string      `json:"commit_sha,omitempty"`
		Env            Environment `json:"environment"`
	}

	Environment struct {
		Name string `envconfig:"APP_ENVIRONMENT" default:"development" json:"env"`
	}

	HTTPServer struct {
		Host              string        `envconfig:"HTTP_SERVER_HOST" default:"0.0.0.0" json:"host"`
		Port              uint          `envconfig:"HTTP_SERVER_PORT" default:"3000" json:"port"`
		ReadTimeout       time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s" json:"read_timeout"`
		ReadHeaderTimeout time.Duration `envconfig:"HTTP_READ_HEADER_TIMEOUT" default:"5s" json:"read_header_timeout"`
		WriteTimeout      time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s" json:"write_timeout"`
		IdleTimeout       time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s" json:"idle_timeout"`
		RequestTimeout    time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"30s" json:"request_timeout"`
		ShutdownTimeout   time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s" json:"shutdown_timeout"`
		MaxBodyBytes      int64         `envconfig:"HTTP_MAX_BODY_BYTES" default:"1048576" json:"max_body_bytes"`
	}

	Database struct {
		Host            string        `envconfig:"POSTGRES_HOST" default:"postgres" json:"host"`
		Port            uint          `envconfig:"POSTGRES_PORT" default:"5432" json:"port"`
		Database        string        `envconfig:"POSTGRES_DATABASE" default:"items" json:"database"`
		Username        string        `envconfig:"POSTGRES_USERNAME" default:"postgres" json:"username"`
		Password        string        `envconfig:"POSTGRES_PASSWORD" default:"" json:"-"`
		SSLMode         string        `envconfig:"POSTGRES_SSL_MODE" default:"disable" json:"ssl_mode"`
		MaxConnections  int32         `envconfig:"POSTGRES_MAX_CONNECTIONS" default:"10" json:"max_connections"`
		MinConnections  int32         `envconfig:"POSTGRES_MIN_CONNECTIONS" default:"0" json:"min_connections"`
		ConnectTimeout  time.Duration `envconfig:"POSTGRES_CONNECT_TIMEOUT" default:"5s" json:"connect_timeout"`
		MaxConnLifetime time.Duration `envconfig:"POSTGRES_MAX_CONN_LIFETIME" default:"1h" json:"max_conn_lifetime"`
		MaxConnIdleTime time.Duration `envconfig:"POSTGRES_MAX_CONN_IDLE_TIME" default:"30m" json:"max_conn_idle_time"`
		ProbeTimeout    time.Duration `envconfig:"POSTGRES_PROBE_TIMEOUT" default:"3s" json:"probe_timeout"`
		ConnectAttempts uint          `envconfig:"POSTGRES_CONNECT_ATTEMPTS" default:"5" json:"connect_attempts"`
		ConnectDelay    time.Duration `envconfig:"POSTGRES_CONNECT_DELAY" default:"5s" json:"connect_delay"`
		EnsureSchema    bool          `envconfig:"POSTGRES_ENSURE_SCHEMA" default:"true" json:"ensure_schema"`
	}

	Cache struct {
		Enabled             bool          `envconfig:"CACHE_ENABLED" default:"true" json:"enabled"`
		Address             string        `envconfig:"CACHE_ADDRESS" default:"redis:6379" json:"address"`
		Password            string        `envconfig:"CACHE_PASSWORD" default:"" json:"-"`
		DB                  uint          `envconfig:"CACHE_DB" default:"0" json:"db"`
		PoolSize            uint          `envconfig:"CACHE_POOL_SIZE" default:"10" json:"pool_size"`
		MinIdleConns        uint          `envconfig:"CACHE_MIN_IDLE_CONNS" default:"0" json:"min_idle_conns"`
		DialTimeout         time.Duration `envconfig:"CACHE_CONNECT_TIMEOUT" default:"5s" json:"dial_timeout"`
		ReadTimeout         time.Duration `envconfig:"CACHE_READ_TIMEOUT" default:"3s" json:"read_timeout"`
		WriteTimeout        time.Duration `envconfig:"CACHE_WRITE_TIMEOUT" default:"3s" json:"write_timeout"`
		PoolTimeout         time.Duration `envconfig:"CACHE_POOL_TIMEOUT" default:"4s" json:"pool_timeout"`
		TTL                 time.Duration `envconfig:"CACHE_TTL" default:"300s" json:"ttl"`
		KeyPrefix           string        `envconfig:"CACHE_KEY_PREFIX" default:"" json:"key_prefix"`
		StoreTimeout        time.Duration `envconfig:"CACHE_STORE_TIMEOUT" default:"3s" json:"store_timeout"`
		ReconnectStep       time.Duration `envconfig:"CACHE_RECONNECT_STEP" default:"100ms" json:"reconnect_step"`
		ReconnectCeiling    time.Duration `envconfig:"CACHE_RECONNECT_CEILING" default:"3s" json:"reconnect_ceiling"`
		MaxReconnects       uint          `envconfig:"CACHE_MAX_RECONNECTS" default:"10" json:"max_reconnects"`
		ReconnectForever    bool          `envconfig:"CACHE_RECONNECT_FOREVER" default:"false" json:"reconnect_forever"`
		HealthCheckInterval time.Duration `envconfig:"CACHE_HEALTH_CHECK_INTERVAL" default:"15s" json:"health_check_interval"`
	}

	CircuitBreaker struct {
		Enabled          bool          `envconfig:"CIRCUIT_BREAKER_ENABLED" default:"true" json:"enabled"`
		MaxRequests      uint          `envconfig:"CIRCUIT_BREAKER_MAX_REQUESTS" default:"3" json:"max_requests"`
		Interval         time.Duration `envconfig:"CIRCUIT_BREAKER_INTERVAL" default:"60s" json:"interval"`
		Timeout          time.Duration `envconfig:"CIRCUIT_BREAKER_TIMEOUT" default:"15s" json:"timeout"`
		FailureThreshold uint          `envconfig:"CIRCUIT_BREAKER_FAILURE_THRESHOLD" default:"5" json:"failure_threshold"`
	}

	RateLimiting struct {
		Enabled           bool     `envconfig:"RATE_LIMITING_ENABLED" default:"true" json:"enabled"`
		RequestsPerSecond uint     `envconfig:"RATE_LIMITING_REQUESTS_PER_SECOND" default:"50" json:"requests_per_second"`
		BurstSize         uint     `envconfig:"RATE_LIMITING_BURST_SIZE" default:"100" json:"burst_size"`
		MaxKeys           uint     `envconfig:"RATE_LIMITING_MAX_KEYS" default:"10000" json:"max_keys"`
		SkipPaths         []string `envconfig:"RATE_LIMITING_SKIP_PATHS" default:"/health,/ready,/live" json:"skip_paths"`
		GracefulDegraded  bool     `envconfig:"RATE_LIMITING_GRACEFUL_DEGRADED" default:"true" json:"graceful_degraded"`
	}

	Compression struct {
		Enabled   bool     `envconfig:"COMPRESSION_ENABLED" default:"true" json:"enabled"`
		Level     int      `envconfig:"COMPRESSION_LEVEL" default:"5" json:"level"`
		MinSize   int      `envconfig:"COMPRESSION_MIN_SIZE" default:"1024" json:"min_size"`
		SkipPaths []string `envconfig:"COMPRESSION_SKIP_PATHS" default:"/health,/ready,/live" json:"skip_paths"`
	}

	Logging struct {
		Level     string    `envconfig:"LOG_LEVEL" default:"info" json:"level"`
		Format    string    `envconfig:"LOG_FORMAT" default:"json" json:"format"`
		AccessLog AccessLog `json:"access_log"`
	}

	AccessLog struct {
		Enabled            bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks    bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
		IncludeQueryParams bool `envconfig:"ACCESS_LOG_INCLUDE_QUERY_PARAMS" default:"true" json:"include_query_params"`
	}

	Telemetry struct {
		ExporterType string  `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`
		OtelGRPCHost string  `envconfig:"OTEL_HOST" default:"otel-collector" json:"otel_grpc_host"`
		OtelGRPCPort string  `envconfig:"OTEL_PORT" default:"4317" json:"otel_grpc_port"`
		Metrics      Metrics `json:"metrics"`
		Traces       Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled bool   `envconfig:"METRICS_ENABLED" default:"false" json:"enabled"`
		Path    string `envconfig:"METRICS_PATH" default:"/metrics" json:"path"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1.0" json:"sampler_ratio"`
	}
)

func (c *ServiceConfig) GetEnvironment() int {
	switch c.App.Env.Name {
	case "production", "prod":
		return Production
	case "staging", "stg":
		return Staging
	case "sandbox", "sbx":
		return Sandbox
	default:
		return Development
	}
}

func (c *ServiceConfig) IsProduction() bool {
	return c.GetEnvironment() == Production
}

// Validate reports every invalid setting at once.
func (c *ServiceConfig) Validate() error {
	var errs []error

	if c.Database.ConnectAttempts == 0 {
		errs = append(errs, errors.New("POSTGRES_CONNECT_ATTEMPTS must be at least 1"))
	}

	if c.Database.MaxConnections < 1 {
		errs = append(errs, fmt.Errorf("POSTGRES_MAX_CONNECTIONS must be positive, got %d", c.Database.MaxConnections))
	}

	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL))
	}

	if c.Cache.ReconnectCeiling < c.Cache.ReconnectStep {
		errs = append(errs, errors.New("CACHE_RECONNECT_CEILING must not be lower than CACHE_RECONNECT_STEP"))
	}

	if c.Compression.Enabled && (c.Compression.Level < 1 || c.Compression.Level > 9) {
		errs = append(errs, fmt.Errorf("COMPRESSION_LEVEL must be between 1 and 9, got %d", c.Compression.Level))
	}

	if c.HTTPServer.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_SHUTDOWN_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// Address returns the host:port the HTTP server listens on.
func (s HTTPServer) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ConnectionString renders the settings as a postgres:// URL.
func (d Database) ConnectionString() string {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.Username, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Database,
	}

	query := dsn.Query()
	query.Set("sslmode", d.SSLMode)
	query.Set("connect_timeout", strconv.Itoa(int(d.ConnectTimeout.Seconds())))
	dsn.RawQuery = query.Encode()

	return dsn.String()
}
