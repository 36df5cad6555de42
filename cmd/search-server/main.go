// cmd/search-server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"mercari-search/internal/common/config"
	"mercari-search/internal/common/logger"
	"mercari-search/internal/common/observability"
	"mercari-search/internal/mercari"
	"mercari-search/internal/search"
	"mercari-search/internal/toolserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting search server",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("addr", cfg.Server.Addr()),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	signer, err := mercari.NewDPoPSigner()
	if err != nil {
		zapLog.Fatal("signer initialization failed", zap.Error(err))
	}

	client := mercari.NewClient(cfg.Mercari.HTTPTimeout(), signer, cfg.Mercari.UserAgent, log)
	api := mercari.NewAPI(client, cfg.Mercari, log)
	orchestrator := search.New(search.NewAPIMarket(api), cfg.Search, log)

	server := toolserver.NewServer(orchestrator, log, obs)
	router := mux.NewRouter()
	server.Routes(router)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()
	zapLog.Info("tool server listening", zap.String("addr", cfg.Server.Addr()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		zapLog.Warn("graceful shutdown failed", zap.Error(err))
	}
}
