package notify_gateway_config

import (
	"time"

	"github.com/NordCoder/Classbell/internal/obs"
	"github.com/NordCoder/Classbell/internal/obs/retry"
	"github.com/NordCoder/Classbell/internal/outbox"
	"github.com/NordCoder/Classbell/internal/registry"
	pg "github.com/NordCoder/Classbell/internal/repository/postgres"
	"github.com/NordCoder/Classbell/internal/services/notify-gateway/ws"
)

const (
	BusMemory = "memory"
	BusRedis  = "redis"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPAddr    string        `mapstructure:"http_addr"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout applies to plain HTTP; 0 keeps socket connections open.
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (lc *Log) AsLoggerConfig(app App) obs.LogConfig {
	return obs.LogConfig{
		Level:  lc.Level,
		Pretty: lc.Pretty,
		App:    "classbell/" + app.Name,
		Env:    app.Env,
		Ver:    app.Version,
	}
}

type Auth struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Leeway    time.Duration `mapstructure:"leeway"`
}

type Bus struct {
	Driver string               `mapstructure:"driver"`
	Redis  registry.RedisConfig `mapstructure:"redis"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Ingest struct {
	APIKey string `mapstructure:"api_key"`
}

// Worker runs the event consumer inside the gateway process.
type Worker struct {
	Inline  bool   `mapstructure:"inline"`
	GroupID string `mapstructure:"group_id"`
}

type Config struct {
	App    App           `mapstructure:"app"`
	Server Server        `mapstructure:"server"`
	DB     pg.Config     `mapstructure:"db"`
	OTEL   OTEL          `mapstructure:"otel"`
	Log    Log           `mapstructure:"log"`
	Auth   Auth          `mapstructure:"auth"`
	WS     ws.Config     `mapstructure:"ws"`
	Bus    Bus           `mapstructure:"bus"`
	Kafka  Kafka         `mapstructure:"kafka"`
	Outbox outbox.Config `mapstructure:"outbox"`
	Ingest Ingest        `mapstructure:"ingest"`
	Worker Worker        `mapstructure:"worker"`
	Retry  retry.Config  `mapstructure:"retry"`
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
