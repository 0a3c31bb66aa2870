package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	port       string
	logLevel   string
	output     string
}

// Execute runs the CLI.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "quizzz",
		Short:         "Client for the quizzz community quiz platform",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.port, "port", os.Getenv("PORT"), "port for the board feed server")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")

	cmd.AddCommand(NewServeCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(newQuizCmd(opts))
	cmd.AddCommand(newRoundCmd(opts))
	cmd.AddCommand(newTournamentCmd(opts))
	cmd.AddCommand(newPlayCmd(opts))
	cmd.AddCommand(newCommunityCmd(opts))
	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newBoardCmd(opts))
	return cmd
}
