package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sadopc/studyboard/internal/chat"
	"github.com/sadopc/studyboard/internal/config"
	"github.com/sadopc/studyboard/internal/logger"
	"github.com/sadopc/studyboard/internal/notify"
	"github.com/sadopc/studyboard/internal/poller"
	"github.com/sadopc/studyboard/internal/server"
	"github.com/sadopc/studyboard/internal/store"
	"github.com/sadopc/studyboard/internal/tracker"
	"github.com/sadopc/studyboard/internal/tui"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const usage = `usage: studyboard [serve]

  (no command)  run the terminal overlay
  serve         run the HTTP API without the overlay`

func main() {
	serve := false
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			serve = true
		case "-h", "--help", "help":
			fmt.Println(usage)
			return
		default:
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// The overlay owns the terminal, so its log goes to a file.
	logPath := cfg.LogPath
	if !serve && logPath == "" {
		if logPath, err = logger.DefaultPath(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	log, err := logger.New("studyboard", cfg.Env, logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log, serve); err != nil {
		log.Error("exiting", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger, serve bool) error {
	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return err
		}
	}

	s, err := store.New(dbPath, store.WithLocation(cfg.Location))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var client *chat.Client
	if cfg.ChatEnabled() {
		client, err = chat.NewClient(ctx, cfg.VideoID, option.WithAPIKey(cfg.APIKey))
		if err != nil {
			return fmt.Errorf("youtube client: %w", err)
		}
	} else {
		log.Warn("YOUTUBE_API_KEY or VIDEO_ID not set, live chat disabled")
	}

	var trackerOpts []tracker.Option
	if cfg.Notify {
		trackerOpts = append(trackerOpts, tracker.WithNotifier(notify.NewDesktop("studyboard")))
	}
	t := tracker.New(s, log, trackerOpts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	poller.RegisterMetrics(reg)
	server.RegisterMetrics(reg)

	log.Info("starting",
		zap.String("db", dbPath),
		zap.String("tz", cfg.Location.String()),
		zap.Bool("chat", client != nil),
		zap.Bool("serve", serve),
	)

	if serve {
		return runServer(ctx, cfg, log, s, client, t, reg)
	}
	return runOverlay(ctx, log, s, client, t)
}

func runServer(ctx context.Context, cfg config.Config, log *zap.Logger, s *store.Store, client *chat.Client, t *tracker.Tracker, reg *prometheus.Registry) error {
	opts := []server.Option{server.WithGatherer(reg), server.WithViewers(s)}
	if cfg.MetricsUser != "" {
		opts = append(opts, server.WithMetricsAuth(cfg.MetricsUser, cfg.MetricsPass))
	}
	if cfg.TrustProxy {
		opts = append(opts, server.WithTrustedProxy())
	}

	// A nil *chat.Client must not reach the server as a non-nil interface.
	var fetcher server.Fetcher
	if client != nil {
		fetcher = client
		p := poller.New(client, t, log)
		opts = append(opts, server.WithChatStatus(p))
		go p.Run(ctx)
	}

	srv := server.New(s, fetcher, cfg.Location, log, opts...)
	return srv.Run(ctx, cfg.Addr)
}

func runOverlay(ctx context.Context, log *zap.Logger, s *store.Store, client *chat.Client, t *tracker.Tracker) error {
	app := tui.NewApp(s)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if client != nil {
		pl := poller.New(client, t, log, poller.OnStatus(func(st poller.Status) {
			p.Send(tui.ChatStatusMsg{Text: st.String(), OK: st.State == poller.Live})
		}))
		go pl.Run(ctx)
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
