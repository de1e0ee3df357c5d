package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/axatbhardwaj/context-tracker/internal/config"
	"github.com/axatbhardwaj/context-tracker/internal/server"
	"github.com/axatbhardwaj/context-tracker/internal/tracker"
)

func init() {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Record a session from a stop hook",
		Long: "Reads a session as JSON on stdin and merges it into the project's wiki. " +
			"Always exits 0; failures are reported as {\"systemMessage\": ...} so the agent is never blocked.",
		Run: runHook,
	}

	RootCmd.AddCommand(cmd)
}

// hookResponse is the JSON the host agent reads back from the hook.
type hookResponse struct {
	SystemMessage string `json:"systemMessage,omitempty"`
}

type sessionRecorder interface {
	Record(ctx context.Context, sess tracker.Session) (*tracker.Outcome, error)
}

func runHook(cmd *cobra.Command, args []string) {
	resp := hookResponse{}
	defer func() {
		if r := recover(); r != nil {
			resp = hookResponse{SystemMessage: fmt.Sprintf("Context tracker error: %v", r)}
		}
		b, _ := json.Marshal(resp)
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
	}()

	cfg, err := loadConfig()
	if err != nil {
		resp.SystemMessage = fmt.Sprintf("Context tracker error: load config: %v", err)
		return
	}
	log := newLogger(cfg, false)
	defer log.Close()

	c, cleanup := server.Wire(cfg, config.UserHome(), log.Logger)
	defer cleanup()

	resp = handleHook(cmd.Context(), os.Stdin, c.Tracker)
	if resp.SystemMessage != "" {
		log.Error().Str("message", resp.SystemMessage).Msg("hook failed")
	}
}

// handleHook decodes one session from r and records it.
func handleHook(ctx context.Context, r io.Reader, rec sessionRecorder) hookResponse {
	var sess tracker.Session
	if err := json.NewDecoder(r).Decode(&sess); err != nil {
		return hookResponse{SystemMessage: fmt.Sprintf("Context tracker error: decode session: %v", err)}
	}
	if _, err := rec.Record(ctx, sess); err != nil {
		return hookResponse{SystemMessage: fmt.Sprintf("Context tracker error: %v", err)}
	}
	return hookResponse{}
}
