package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Petr-Hromjak/client-wallet/internal/core/logger"
	"github.com/Petr-Hromjak/client-wallet/internal/server"
	"github.com/Petr-Hromjak/client-wallet/pkg/config"
)

func main() {
	log, cleanup := logger.NewLogger()
	defer cleanup()

	cfgServer, err := config.LoadConfigServer()
	if err != nil {
		log.Error("Failed to load server config", logger.ErrorField("error", err))
		return
	}

	srv, err := server.NewServer(log)
	if err != nil {
		log.Error("Failed to create server", logger.ErrorField("error", err))
		return
	}

	go func() {
		log.Info("Starting server", logger.StringField("addr", cfgServer.Addr))
		if err := srv.Run(cfgServer.Addr); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", logger.ErrorField("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", logger.ErrorField("error", err))
	}

	log.Info("Server exited properly")
}
