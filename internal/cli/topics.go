package cli

import (
	"fmt"
	"time"

	kafkax "github.com/NordCoder/Classbell/internal/repository/kafka"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Manage Kafka topics",
	}

	ensure := &cobra.Command{
		Use:   "ensure",
		Short: "Create the events topic and wait for partition leaders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := settings(cmd)
			spec := kafkax.TopicSpec{
				Name:              v.GetString("kafka.topic"),
				NumPartitions:     v.GetInt("partitions"),
				ReplicationFactor: v.GetInt("replication"),
				MaxWait:           v.GetDuration("wait"),
			}
			log, _ := zap.NewDevelopment()
			if err := kafkax.EnsureTopic(cmd.Context(), v.GetStringSlice("kafka.brokers"), spec, log); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "topic %s ready\n", spec.Name)
			return nil
		},
	}
	ensure.Flags().StringSlice("kafka.brokers", []string{"localhost:9092"}, "bootstrap brokers")
	ensure.Flags().String("kafka.topic", kafkax.DefaultEventsTopic, "topic name")
	ensure.Flags().Int("partitions", 3, "partition count")
	ensure.Flags().Int("replication", 1, "replication factor")
	ensure.Flags().Duration("wait", 15*time.Second, "how long to wait for leaders")

	cmd.AddCommand(ensure)
	return cmd
}
