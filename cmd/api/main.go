package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/keshav-protos/medai-clinical-view/internal/shared/config"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/server"
)

func main() {
	cfg := config.Load()

	r, monitor, err := server.NewRouter(cfg)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go monitor.Run(ctx)

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
