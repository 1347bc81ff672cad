package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sharesync/sharesync/internal/client"
	"github.com/sharesync/sharesync/internal/client/config"
	"github.com/sharesync/sharesync/internal/utils"
	"github.com/sharesync/sharesync/internal/version"
)

const configFileName = "config"

var home, _ = os.UserHomeDir()

var rootCmd = &cobra.Command{
	Use:     "sharesync",
	Short:   "ShareSync daemon - tracks SharePoint folder syncs for the chat workspace",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{
			Path:           viper.ConfigFileUsed(),
			DataDir:        viper.GetString("data_dir"),
			ServerURL:      viper.GetString("server_url"),
			APIToken:       viper.GetString("api_token"),
			HTTPAddr:       viper.GetString("http_addr"),
			HTTPToken:      viper.GetString("http_token"),
			PollIntervalMs: viper.GetInt("poll_interval_ms"),
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		cmd.SilenceUsage = true
		showHeader()

		slog.Info("sharesync", "version", version.Version, "revision", version.Revision, "build", version.BuildDate)

		daemon, err := client.NewDaemon(cfg, &client.ControlPlaneConfig{
			Addr:      cfg.HTTPAddr,
			AuthToken: cfg.HTTPToken,
		})
		if err != nil {
			return err
		}

		defer slog.Info("Bye!")
		if err := daemon.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("daemon start", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("datadir", "d", config.DefaultDataDir, "ShareSync data directory")
	rootCmd.Flags().StringP("server", "s", config.DefaultServerURL, "Chat backend URL")
	rootCmd.Flags().String("api-token", "", "API token for the chat backend")
	rootCmd.Flags().StringP("http-addr", "a", config.DefaultHTTPAddr, "Address to bind the local http server")
	rootCmd.Flags().StringP("http-token", "t", "", "Access token for the local http server")
	rootCmd.Flags().Int("poll-interval-ms", 0, "Sync status poll interval in milliseconds")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "ShareSync config file")
}

func main() {
	// .env is optional, used for local development
	_ = godotenv.Load()

	if err := setupLogging(config.DefaultLogFilePath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setupLogging mirrors every record to a colorized terminal handler and a
// plain text log file.
func setupLogging(logFile string) error {
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	slog.SetDefault(slog.New(utils.NewFanoutHandler(stdoutHandler, fileHandler)))
	return nil
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".sharesync"))
		viper.AddConfigPath(filepath.Join(home, ".config/sharesync"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("data_dir", cmd.Flags().Lookup("datadir"))
	viper.BindPFlag("server_url", cmd.Flags().Lookup("server"))
	viper.BindPFlag("api_token", cmd.Flags().Lookup("api-token"))
	viper.BindPFlag("http_addr", cmd.Flags().Lookup("http-addr"))
	viper.BindPFlag("http_token", cmd.Flags().Lookup("http-token"))
	viper.BindPFlag("poll_interval_ms", cmd.Flags().Lookup("poll-interval-ms"))

	viper.SetEnvPrefix("SHARESYNC")
	viper.AutomaticEnv()

	return nil
}

func showHeader() {
	color.New(color.FgHiCyan, color.Bold).
		Printf("ShareSync %s\n", version.Short())
}
