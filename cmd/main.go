package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/canxing/crm-admin/bootstrap"
	"github.com/canxing/crm-admin/config"
)

func main() {
	configPath := flag.String("config", "config/crm.toml", "path to config file")
	flag.Parse()

	cfg, err := config.GetConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to get config: %v", err)
	}

	app, err := bootstrap.InitApp(cfg)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("received signal %s", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
