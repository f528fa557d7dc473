// VitaShop: terminal client for the VitaShop health profile.
//
// Running vitashop with no subcommand opens the profile screen. The login
// and logout subcommands manage the stored session credentials.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitashop/vitashop/internal/api"
	"github.com/vitashop/vitashop/internal/auth"
	"github.com/vitashop/vitashop/internal/config"
	"github.com/vitashop/vitashop/internal/database"
	"github.com/vitashop/vitashop/internal/router"
	"github.com/vitashop/vitashop/internal/session"
	"github.com/vitashop/vitashop/internal/tokens"
	"github.com/vitashop/vitashop/internal/tui"
	"github.com/vitashop/vitashop/internal/util"
	"github.com/vitashop/vitashop/internal/validation"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version and exit")
		debugMode   = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("VitaShop version %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		time.AfterFunc(10*time.Second, func() {
			slog.Error("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	if err := run(ctx, *configPath, *debugMode, flag.Args()); err != nil {
		slog.Error("application error", "error", err)
		fmt.Fprintln(os.Stderr, "vitashop:", err)
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: vitashop [flags] [login|logout] [command flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Without a command, opens the health profile.")
	fmt.Fprintln(out)
	flag.PrintDefaults()
}

// app holds everything a command needs.
type app struct {
	cfg    *config.Config
	db     *database.DB
	tokens *tokens.Store
	auth   *auth.Store
	logger *slog.Logger
}

func run(ctx context.Context, configPath string, debugMode bool, args []string) error {
	cfg, cfgPath, err := config.Load(configPath, true)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, closeLog, err := setupLogging(cfg, debugMode)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	slog.Info("VitaShop starting",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cfgPath,
	)

	dbPath, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("ensuring data directory: %w", err)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		slog.Debug("closing database")
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tokenStore := tokens.NewStore(db, util.SystemClock{}, logger)
	if err := tokenStore.Load(ctx); err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	authStore := auth.NewStore(tokenStore, logger)
	authStore.Restore()

	a := &app{cfg: cfg, db: db, tokens: tokenStore, auth: authStore, logger: logger}

	if len(args) == 0 {
		return a.profile(ctx)
	}
	switch args[0] {
	case "login":
		return a.login(ctx, args[1:], os.Stdout)
	case "logout":
		return a.logout(ctx, os.Stdout)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// setupLogging writes JSON to the configured log file, or text to stderr
// when none is set.
func setupLogging(cfg *config.Config, debugMode bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			level = slog.LevelDebug
		case config.LogLevelWarn:
			level = slog.LevelWarn
		case config.LogLevelError:
			level = slog.LevelError
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	logPath, err := config.EnsureLogDir(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	if logPath == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(logFile, opts)), func() { _ = logFile.Close() }, nil
}

// profile runs the terminal interface.
func (a *app) profile(ctx context.Context) error {
	client, err := api.NewClient(a.tokens, api.Options{
		BaseURL: a.cfg.API.BaseURL,
		Timeout: a.cfg.API.Timeout(),
		Logger:  a.logger,
	})
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	rt := router.New(a.auth, a.logger)
	ctrl := session.New(client, session.Options{
		Validator: validation.New(util.SystemClock{}),
		Retry: session.RetryPolicy{
			MaxAttempts:    a.cfg.Provisioning.MaxAttempts,
			InitialBackoff: a.cfg.Provisioning.InitialBackoff(),
			MaxBackoff:     a.cfg.Provisioning.MaxBackoff(),
		},
		Session:   a.auth,
		Navigator: rt,
		Logger:    a.logger,
		OnUnauthorized: func() {
			if err := rt.Navigate(router.PathLogin); err != nil {
				a.logger.Error("redirect to sign-in failed", "error", err)
			}
		},
		Context: ctx,
	})

	tui.Version = Version
	tui.BuildTime = BuildTime

	slog.Info("starting TUI", "api", a.cfg.API.BaseURL, "signed_in", a.auth.IsAuthenticated())

	if err := tui.Run(ctx, tui.Deps{
		Config:     a.cfg,
		Controller: ctrl,
		Router:     rt,
		Account:    a.auth,
		Logger:     a.logger,
	}); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	slog.Info("VitaShop shutdown complete")
	return nil
}

// login stores credentials issued by the backend's sign-in endpoint.
func (a *app) login(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	var (
		access  = fs.String("access-token", "", "Access token (required)")
		refresh = fs.String("refresh-token", "", "Refresh token")
		email   = fs.String("email", "", "Account email (required)")
		name    = fs.String("name", "", "Display name")
		phone   = fs.String("phone", "", "Phone number")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *access == "" || *email == "" {
		fs.Usage()
		return errors.New("login requires -access-token and -email")
	}

	user := auth.User{Email: *email, Name: *name, PhoneNumber: *phone}
	if err := a.auth.Login(ctx, *access, *refresh, user); err != nil {
		return fmt.Errorf("signing in: %w", err)
	}
	fmt.Fprintf(out, "Signed in as %s\n", *email)
	return nil
}

// logout removes the stored credentials.
func (a *app) logout(ctx context.Context, out io.Writer) error {
	if !a.auth.IsAuthenticated() {
		fmt.Fprintln(out, "Not signed in")
		return nil
	}
	if err := a.auth.Logout(ctx); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	fmt.Fprintln(out, "Signed out")
	return nil
}
