package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hennalash/go-client/auth"
	"github.com/hennalash/go-client/booking"
	"github.com/hennalash/go-client/cache"
	"github.com/hennalash/go-client/env"
	"github.com/hennalash/go-client/keepalive"
	"github.com/hennalash/go-client/logger"
	"github.com/hennalash/go-client/maintenance"
	"github.com/hennalash/go-client/tui"
)

var rootCmd = &cobra.Command{
	Use:   "hennalash",
	Short: "HennaLash booking client",
	Long:  "Command line client for the HennaLash henna-art booking service.",
}

// app bundles the wired SDK surfaces for a command invocation.
type app struct {
	logger  logger.Logger
	session *auth.Store
	booking *booking.Client
	gate    *maintenance.Gate
	plans   *booking.PlanStore
	state   cache.Cache
	memo    cache.Cache
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		if p, err := env.DefaultConfigPath(); err == nil {
			cfgPath = p
		}
	}
	cfg, err := env.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if cfg.APIURL != "" {
		// Flags and environment still win over the config file.
		os.Setenv(env.EnvBaseURL, env.FlagOrEnv(cmd, "api-url", env.EnvBaseURL, cfg.APIURL))
	}
	if cfg.PingInterval != "" && os.Getenv(env.EnvPingInterval) == "" {
		os.Setenv(env.EnvPingInterval, cfg.PingInterval)
	}
	if cfg.StatePath != "" && os.Getenv(env.EnvStatePath) == "" {
		os.Setenv(env.EnvStatePath, cfg.StatePath)
	}
	if cfg.LogLevel != "" && os.Getenv(env.EnvLogLevel) == "" {
		os.Setenv(env.EnvLogLevel, cfg.LogLevel)
	}
	log := env.NewLogger(cmd)

	statePath, err := env.StatePath()
	if err != nil {
		return nil, fmt.Errorf("error resolving state path: %w", err)
	}
	state, err := cache.NewFile(statePath)
	if err != nil {
		return nil, fmt.Errorf("error opening state file: %w", err)
	}

	baseURL := env.BaseURL(cmd)
	session := auth.NewStore(baseURL, state, auth.WithLogger(log))
	session.Restore(cmd.Context())

	memo := cache.NewInMemory(cmd.Context())
	a := &app{
		logger:  log,
		session: session,
		booking: booking.New(session.Client(), memo, booking.WithLogger(log)),
		gate:    maintenance.NewGate(session.Client(), session, maintenance.WithLogger(log)),
		plans:   booking.NewPlanStore(state),
		state:   state,
		memo:    memo,
	}
	return a, nil
}

func (a *app) Close() {
	a.memo.Close()
	a.state.Close()
}

// guard applies the maintenance gate: protected commands are replaced by
// the maintenance notice unless the session is an admin.
func (a *app) guard(ctx context.Context) bool {
	if a.gate.Check(ctx) != maintenance.StateBlocked {
		return true
	}
	status := a.gate.Status()
	message := status.Message
	if message == "" {
		message = "Le site est en maintenance. Merci de revenir plus tard."
	}
	tui.ShowBanner("Maintenance en cours", message+"\n\nAdministrateurs : hennalash login", false)
	return false
}

// requireAuth ensures a session exists before a protected command runs.
func (a *app) requireAuth() bool {
	if a.session.IsAuthenticated() {
		return true
	}
	tui.ShowWarning("Vous n'êtes pas connecté. Utilisez : hennalash login")
	return false
}

func (a *app) newPinger(cmd *cobra.Command) *keepalive.Pinger {
	interval := env.DurationOrEnv(cmd, "ping-interval", env.EnvPingInterval, keepalive.DefaultInterval)
	return keepalive.New(cmd.Context(), a.session.Client(),
		keepalive.WithInterval(interval),
		keepalive.WithLogger(a.logger),
	)
}

// run wraps a command handler with app construction and teardown.
func run(fn func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(a, cmd, args)
	}
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "backend base URL (defaults to "+env.DefaultBaseURL+")")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "path to the YAML config file")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		tui.ShowError("%s", err)
		os.Exit(1)
	}
}
