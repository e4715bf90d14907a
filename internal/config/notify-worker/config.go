package notify_worker_config

import (
	"github.com/NordCoder/Classbell/internal/obs"
	"github.com/NordCoder/Classbell/internal/obs/retry"
	"github.com/NordCoder/Classbell/internal/registry"
	pginfra "github.com/NordCoder/Classbell/internal/repository/postgres"
)

type KafkaIn struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	GroupID       string   `mapstructure:"group_id"`
	FromBeginning bool     `mapstructure:"from_beginning"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
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

type Config struct {
	DB       pginfra.Config       `mapstructure:"db"`
	In       KafkaIn              `mapstructure:"kafka_in"`
	Redis    registry.RedisConfig `mapstructure:"redis"`
	Retry    retry.Config         `mapstructure:"retry"`
	Server   Server               `mapstructure:"server"`
	OTEL     OTEL                 `mapstructure:"otel"`
	LogLevel string               `mapstructure:"log_level"`
}
