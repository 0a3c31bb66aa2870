package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"quizzz-client/internal/config"
	transport "quizzz-client/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand that serves the round board feed.
func NewServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve live round boards over websocket",
		RunE: withRuntime(opts, func(ctx context.Context, rt *runtime, _ []string) error {
			return runServer(ctx, rt)
		}),
	}
}

func runServer(ctx context.Context, rt *runtime) error {
	finalPort := rt.cfg.Server.Port
	if finalPort == "" {
		finalPort = "8080"
	}

	refresh := config.TTLDuration(rt.cfg.Board.Refresh, 30*time.Second)
	wsHandler := transport.NewWSHandler(rt.board(), refresh, rt.log.WithField("component", "ws"))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		rt.log.Infof("serving round boards on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rt.log.WithError(err).Error("failed to start server")
		}
	}()

	<-ctx.Done()
	rt.log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
