// Command gscchat-api serves the insights HTTP API
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"gscchat/internal/modkit/httpkit"
	"gscchat/internal/modkit/repokit"
	"gscchat/internal/platform/config"
	"gscchat/internal/platform/logger"
	phttp "gscchat/internal/platform/net/http"
	"gscchat/internal/platform/store"
	"gscchat/internal/services/api"
)

const drainTimeout = 10 * time.Second

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// only backends with a DBURL are dialed; the insights module answers 401 for a
	// selected source that has none
	st, err := store.Open(ctx, store.FromConfig(root, "gscchat-api", "api"), store.WithLogger(*log))
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	srv := phttp.NewServer(root.Prefix("CORE_"))
	api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Logger:         log,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		Stack: httpkit.StackOptions{
			Timeout:     apiCfg.MayDuration("TIMEOUT", httpkit.DefaultTimeout),
			SlowRequest: apiCfg.MayDuration("SLOW_REQUEST", 2*time.Second),
			MaxInflight: apiCfg.MayInt("MAX_INFLIGHT", 0),
			CORSOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
		},
	})

	go func() {
		<-ctx.Done()
		drain, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := srv.Shutdown(drain); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr()).Msg("listening")
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("http server stopped")
		return
	}
	log.Info().Msg("http server drained")
}
