// Command server runs the scheduling assistant HTTP service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/planline/planline/internal/api"
	"github.com/planline/planline/internal/chat"
	"github.com/planline/planline/internal/config"
	"github.com/planline/planline/internal/logging"
	"github.com/planline/planline/internal/provider"
	"github.com/planline/planline/internal/store"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the configuration file")
	flag.Parse()

	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", configPath, err)
	}
	logging.Setup(cfg)

	if cfg.Provider.APIKey == "" {
		log.Fatal("OPENAI_API_KEY is not set; the assistant cannot reach its provider")
	}

	st := store.NewFileStore(cfg.EventsFile)
	prov := provider.NewClient(cfg.Provider)
	orc := chat.NewOrchestrator(st, prov)
	srv := api.NewServer(cfg, st, orc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}
}
