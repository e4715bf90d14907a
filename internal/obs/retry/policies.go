package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	Attempts int           `mapstructure:"attempts"`
	Base     time.Duration `mapstructure:"base"`
	Max      time.Duration `mapstructure:"max"`
	Jitter   float64       `mapstructure:"jitter"`
}

// FromConfig builds a logging policy named name.
func FromConfig(name string, c Config, log *zap.Logger, retryable func(error) bool) Policy {
	if log == nil {
		log = zap.NewNop()
	}
	return Policy{
		Name:      name,
		Attempts:  c.Attempts,
		Backoff:   ExpoJitter{Base: c.Base, Max: c.Max, Jitter: c.Jitter},
		Retryable: retryable,
		OnAttempt: func(i int, err error) {
			log.Warn(name+" retry", zap.Int("attempt", i+1), zap.Error(err))
		},
		OnExhaust: func(err error) {
			if !errors.Is(err, context.Canceled) {
				log.Error(name+" retries exhausted", zap.Error(err))
			}
		},
	}
}

func DefaultKafkaPolicy(log *zap.Logger) Policy {
	return FromConfig("outbox_kafka", Config{
		Attempts: 6,
		Base:     200 * time.Millisecond,
		Max:      30 * time.Second,
		Jitter:   0.2,
	}, log, nil)
}
