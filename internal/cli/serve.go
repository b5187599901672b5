package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"latchkey/internal/mqtt"
	"latchkey/internal/notify"
	"latchkey/internal/server"
	"latchkey/internal/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tracker daemon and HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Env overrides for the bits that vary between deployments
	if url := os.Getenv("LATCHKEY_WEBHOOK_URL"); url != "" {
		cfg.Notify.WebhookURL = url
	}
	if broker := os.Getenv("LATCHKEY_MQTT_BROKER"); broker != "" {
		cfg.MQTT.Broker = broker
		cfg.MQTT.Enabled = true
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	trk := tracker.New(trackerConfig(cfg), st.state, st.events, st.registry)
	if st.db != nil {
		trk.SetActivityLog(st.db)
	}
	if cfg.Notify.WebhookURL != "" {
		trk.SetNotifier(notify.NewWebhook(cfg.Notify.WebhookURL))
		fmt.Fprintf(os.Stderr, "  notify: %s\n", cfg.Notify.WebhookURL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trk.Run(ctx)

	if cfg.MQTT.Enabled {
		ing := mqtt.New(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic, trk)
		ing.Start()
		defer ing.Stop()
		fmt.Fprintf(os.Stderr, "  mqtt: %s (%s)\n", cfg.MQTT.Broker, cfg.MQTT.Topic)
	}

	srv := server.New(trk, st.admin, VersionString())
	srv.SetSightingHistory(st.history)
	if st.db != nil {
		srv.SetActivityHistory(st.db)
		srv.SetPing(st.db.Ping)
	}

	addr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "latchkey serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  exit room: %s (timeout %ds, cooldown %ds)\n",
			cfg.Tracker.ExitRoom, cfg.Tracker.ExitTimeoutSeconds, cfg.Tracker.CooldownSeconds)
		if st.db != nil {
			fmt.Fprintf(os.Stderr, "  db: %s\n", st.db.Path)
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	return httpServer.Shutdown(shutdownCtx)
}
