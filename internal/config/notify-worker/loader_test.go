package notify_worker_config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "worker.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
kafka_in:
  brokers: ["kafka:29092"]
  group_id: workers-a
redis:
  addr: redis:6379
`), 0o600))

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, []string{"kafka:29092"}, cfg.In.Brokers)
	require.Equal(t, "workers-a", cfg.In.GroupID)
	require.Equal(t, "classbell.notification.events", cfg.In.Topic)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, "notifications_", cfg.Redis.ChannelPrefix)
	require.Equal(t, ":8084", cfg.Server.MetricsAddr)

	t.Setenv("CLASSBELL_LOG_LEVEL", "debug")
	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
