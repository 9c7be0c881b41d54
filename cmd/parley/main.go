package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parleychat/parley/internal/profile"
	"github.com/parleychat/parley/internal/version"
	"github.com/parleychat/parley/server"
	"github.com/parleychat/parley/store"
	"github.com/parleychat/parley/store/db"
)

var (
	rootCmd = &cobra.Command{
		Use:   "parley",
		Short: `A per-user chat backend that relays conversations to Gemini.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			instanceProfile := loadProfile()
			if err := instanceProfile.Validate(); err != nil {
				return err
			}
			setupLogger(instanceProfile)
			return run(cmd.Context(), instanceProfile)
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the parley version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetCurrentVersion(viper.GetString("mode")))
		},
	}
)

func loadProfile() *profile.Profile {
	mode := viper.GetString("mode")
	return &profile.Profile{
		Mode:           mode,
		Addr:           viper.GetString("addr"),
		Port:           viper.GetInt("port"),
		Data:           viper.GetString("data"),
		Driver:         viper.GetString("driver"),
		DSN:            viper.GetString("dsn"),
		Secret:         viper.GetString("secret"),
		GeminiAPIKey:   viper.GetString("gemini-api-key"),
		GeminiModel:    viper.GetString("gemini-model"),
		GeminiBaseURL:  viper.GetString("gemini-base-url"),
		AllowedOrigins: viper.GetStringSlice("allowed-origins"),
		TrustedProxies: viper.GetStringSlice("trusted-proxies"),
		Version:        version.GetCurrentVersion(mode),
	}
}

func setupLogger(p *profile.Profile) {
	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context, p *profile.Profile) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		slog.Error("failed to create db driver", slog.String("error", err.Error()))
		return err
	}
	if err := dbDriver.Migrate(ctx); err != nil {
		slog.Error("failed to migrate", slog.String("error", err.Error()))
		return err
	}

	storeInstance := store.New(dbDriver, p)
	defer storeInstance.Close()

	s, err := server.NewServer(ctx, p, storeInstance)
	if err != nil {
		slog.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}

	printGreetings(p)
	return s.Start(ctx)
}

func init() {
	// .env is optional.
	_ = godotenv.Load()

	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver: sqlite, postgres or mysql")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("secret", "", "secret used to sign access tokens")
	rootCmd.PersistentFlags().String("gemini-model", profile.DefaultGeminiModel, "Gemini model name")
	rootCmd.PersistentFlags().String("gemini-base-url", "", "override the Gemini API endpoint")
	rootCmd.PersistentFlags().StringSlice("allowed-origins", nil, "browser origins allowed to call the API")
	rootCmd.PersistentFlags().StringSlice("trusted-proxies", nil, "CIDR ranges of reverse proxies whose X-Forwarded-For is trusted")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "secret", "gemini-model", "gemini-base-url", "allowed-origins", "trusted-proxies"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("parley")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	// The model credential keeps its conventional unprefixed name.
	if err := viper.BindEnv("gemini-api-key", "PARLEY_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(versionCmd)
}

func printGreetings(p *profile.Profile) {
	slog.Info("parley started",
		slog.String("version", p.Version),
		slog.String("mode", p.Mode),
		slog.String("driver", p.Driver),
		slog.String("model", p.GeminiModel),
		slog.Int("port", p.Port),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
