package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type APIConfig struct {
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	DBPoolMaxConns          int32         `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
	DBPoolMinConns          int32         `envconfig:"DB_POOL_MIN_CONNS" default:"1"`
	DBPoolMaxConnLifetime   time.Duration `envconfig:"DB_POOL_MAX_CONN_LIFETIME" default:"30m"`
	DBPoolMaxConnIdleTime   time.Duration `envconfig:"DB_POOL_MAX_CONN_IDLE_TIME" default:"5m"`
	DBPoolHealthCheckPeriod time.Duration `envconfig:"DB_POOL_HEALTH_CHECK_PERIOD" default:"30s"`

	AutoMigrate bool `envconfig:"AUTO_MIGRATE" default:"false"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// WhatsApp gateway. Leaving the URL or key empty keeps the API up but
	// refuses broadcasts.
	GatewayBaseURL     string        `envconfig:"GATEWAY_BASE_URL"`
	GatewayAPIKey      string        `envconfig:"GATEWAY_API_KEY"`
	GatewayTimeout     time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
	GatewayCountryCode string        `envconfig:"GATEWAY_COUNTRY_CODE" default:"91"`

	// empty falls back to the built-in greeting and signature
	MessageGreeting  string `envconfig:"MESSAGE_GREETING"`
	MessageSignature string `envconfig:"MESSAGE_SIGNATURE"`

	// dispatch
	DispatchPacing  time.Duration `envconfig:"DISPATCH_PACING" default:"2s"`
	DispatchMode    string        `envconfig:"DISPATCH_MODE" default:"sync"`
	DispatchHistory int           `envconfig:"DISPATCH_HISTORY" default:"100"`
	DispatchRPS     float64       `envconfig:"DISPATCH_RPS" default:"0"`

	BreakerMaxFailures uint32        `envconfig:"BREAKER_MAX_FAILURES" default:"10"`
	BreakerOpenTimeout time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s"`
}

type MigrateConfig struct {
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

type MockGatewayConfig struct {
	Port      string `envconfig:"PORT" default:"8090"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	// empty accepts any key
	APIKey string `envconfig:"MOCK_API_KEY"`

	// fixed | round_robin | weighted | random
	OutcomeMode string        `envconfig:"MOCK_OUTCOME_MODE" default:"fixed"`
	Outcomes    []string      `envconfig:"MOCK_OUTCOMES" default:"ok"`
	SuccessRate float64       `envconfig:"MOCK_SUCCESS_RATE" default:"0.95"`
	Delay       time.Duration `envconfig:"MOCK_DELAY" default:"0s"`
}

// loadDotEnv reads an optional .env file. Real environment variables win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env", "err", err)
	}
}

func LoadAPI() APIConfig {
	loadDotEnv()
	var cfg APIConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func LoadMigrate() MigrateConfig {
	loadDotEnv()
	var cfg MigrateConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func LoadMockGateway() MockGatewayConfig {
	loadDotEnv()
	var cfg MockGatewayConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
