package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/md2xlsx/webui/internal/api"
	"github.com/md2xlsx/webui/internal/config"
	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/metrics"
	"github.com/md2xlsx/webui/internal/policy"
	"github.com/md2xlsx/webui/internal/remote"
	"github.com/md2xlsx/webui/internal/session"
	"github.com/md2xlsx/webui/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		port        int
		endpoint    string
		maxSessions int
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI server",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.Policy.Endpoint = endpoint
			}
			api.ShowErrorDetails = debug
			return serve(cmd.Context(), configPath, cfg, maxSessions)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "conversion endpoint URI (overrides config)")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", session.DefaultMaxSessions, "maximum concurrent UI sessions")
	cmd.Flags().BoolVar(&debug, "debug", false, "include error details in API responses")

	return cmd
}

func loadMessages(cfg *config.AppConfig) (*messages.Catalog, error) {
	if cfg.UI.MessagesFile == "" {
		return messages.Default(cfg.UI.Locale), nil
	}
	return messages.LoadFile(cfg.UI.MessagesFile, cfg.UI.Locale)
}

func serve(ctx context.Context, configPath string, cfg *config.AppConfig, maxSessions int) error {
	p, err := policy.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}

	msgs, err := loadMessages(cfg)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	var (
		m        *metrics.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.Advanced.EnableMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if m, err = metrics.New(metrics.Config{Registry: reg}); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		gatherer = reg
	}

	converter := remote.New(p.Endpoint(), remote.WithMetrics(m))

	sessionMgr := session.NewManager(session.Deps{
		Policy:      p,
		Messages:    msgs,
		Converter:   converter,
		Metrics:     m,
		MaxSessions: maxSessions,
	})
	defer sessionMgr.CloseAll()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background session cleanup
	go func() {
		interval := time.Duration(cfg.UI.CleanupIntervalMinutes) * time.Minute
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		maxAge := time.Duration(cfg.UI.SessionTimeoutMinutes) * time.Minute
		if maxAge <= 0 {
			maxAge = session.SessionMaxAge
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessionMgr.CleanupOldSessions(maxAge)
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, cfg)

	handlers := api.NewHandlers(&api.Dependencies{
		Policy:         p,
		SessionMgr:     sessionMgr,
		Metrics:        m,
		Version:        Version,
		MaxMessageSize: int64(cfg.UI.WebSocketMaxMessageSize) * 1024,
		AllowedOrigins: cfg.CORSOrigins(),
	})
	api.RegisterRoutes(e, handlers, gatherer)

	embeddedMode := web.HasEmbeddedFiles()
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
			embeddedMode = false
		} else {
			fmt.Println("Serving embedded frontend from binary")
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(configPath, cfg, p, msgs.Locale(), embeddedMode)

	errCh := make(chan error, 1)
	go func() { errCh <- e.StartServer(s) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		fmt.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func printBanner(configPath string, cfg *config.AppConfig, p policy.Policy, locale string, embedded bool) {
	mode := "API only"
	if embedded {
		mode = "Embedded UI"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Markdown to Excel UI Server                     ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("║  Locale:     %-45s║\n", locale)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-39s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Endpoint:  %-46s║\n", p.Endpoint())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embedded {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}
}
