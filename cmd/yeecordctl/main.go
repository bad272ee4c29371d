// Точка входа yeecordctl — CLI к JSON API dashboard.
// Команды: drive show/set, recordings list/download.
// Адрес и токен берутся из флагов, YEECORD_TOKEN и профиля ~/.config/yeecordctl.yaml.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeecord/dashboard/internal/driveclient"
)

// options — глобальные флаги CLI.
type options struct {
	profilePath string
	url         string
	token       string
	caCert      string
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd собирает дерево команд.
func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "yeecordctl",
		Short: "Manage Yeecord recordings and drive backup",
		Long: `yeecordctl talks to the Yeecord dashboard API.

Connection settings are read from flags, the YEECORD_TOKEN environment
variable and the profile file (default ~/.config/yeecordctl.yaml):

  url: https://dashboard.example.com
  token: <session token>
  ca_cert: /path/to/ca.pem`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.profilePath, "profile", "", "profile file (default ~/.config/yeecordctl.yaml)")
	flags.StringVar(&opts.url, "url", "", "dashboard URL")
	flags.StringVar(&opts.token, "token", "", "session token")
	flags.StringVar(&opts.caCert, "ca-cert", "", "CA certificate for TLS")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newDriveCmd(opts), newRecordingsCmd(opts))
	return rootCmd
}

// newLogger создаёт логгер CLI: предупреждения в stderr, отладка с --verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newClient создаёт клиент API по итоговым настройкам подключения.
func newClient(cmd *cobra.Command, opts *options) (*driveclient.Client, *slog.Logger, error) {
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	profile, err := resolveProfile(opts)
	if err != nil {
		return nil, nil, err
	}
	if profile.URL == "" {
		return nil, nil, fmt.Errorf("dashboard URL is not set: use --url or the profile file")
	}

	client, err := driveclient.New(profile.URL, profile.CACert, driveclient.StaticToken(profile.Token), logger)
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}
