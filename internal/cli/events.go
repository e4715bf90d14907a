package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NordCoder/Classbell/internal/domain/event"
	"github.com/NordCoder/Classbell/internal/services/notify-gateway/httpauth"
	"github.com/NordCoder/Classbell/internal/services/notify-gateway/rest"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Submit domain events to a gateway",
	}

	send := &cobra.Command{
		Use:   "send <type> <payload-json>",
		Short: "POST one event to the gateway ingest endpoint",
		Long: "Types: enrollment_created, material_uploaded, profile_updated.\n" +
			`Example: classbellctl events send profile_updated '{"user_id":1}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := settings(cmd)
			if !json.Valid([]byte(args[1])) {
				return errors.New("payload is not valid JSON")
			}
			body, err := json.Marshal(struct {
				Type    event.Type      `json:"type"`
				Payload json.RawMessage `json:"payload"`
			}{event.Type(args[0]), json.RawMessage(args[1])})
			if err != nil {
				return err
			}

			url := strings.TrimRight(v.GetString("gateway"), "/") + rest.IngestPath
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(httpauth.InternalTokenHeader, v.GetString("ingest.api_key"))

			client := &http.Client{Timeout: v.GetDuration("timeout")}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("post event: %w", err)
			}
			defer resp.Body.Close()

			out, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
			if resp.StatusCode != http.StatusAccepted {
				return fmt.Errorf("gateway answered %s: %s", resp.Status, bytes.TrimSpace(out))
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bytes.TrimSpace(out)))
			return nil
		},
	}
	send.Flags().String("gateway", "http://localhost:8000", "gateway base URL")
	send.Flags().String("ingest.api_key", "", "service key (env CLASSBELL_INGEST_API_KEY)")
	send.Flags().Duration("timeout", 5*time.Second, "request timeout")

	cmd.AddCommand(send)
	return cmd
}
