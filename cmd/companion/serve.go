package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thywilljoshua/study-companion/internal/config"
	"github.com/thywilljoshua/study-companion/internal/session"
	"github.com/thywilljoshua/study-companion/internal/web"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Minute
)

func serveCmd(configPath *string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web interface and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx, *configPath, setupOptions{})
			if err != nil {
				return err
			}
			defer a.close(context.Background())
			if listen != "" {
				a.cfg.Listen = listen
			}
			return serve(ctx, a)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	if a.cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	g, ctx := errgroup.WithContext(ctx)

	var store session.Store
	switch a.cfg.Session.Store {
	case config.StoreRedis:
		rdb, err := session.ConnectRedis(ctx, a.cfg.Session.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, a.cfg.Session.TTL, a.cfg.Session.RedisPrefix)
	default:
		mem := session.NewMemoryStore(a.cfg.Session.TTL)
		g.Go(func() error {
			mem.Janitor(ctx, janitorInterval)
			return nil
		})
		store = mem
	}

	mgr := session.NewManager(a.engine, store, a.log)
	srv := web.New(mgr, a.log, web.Options{
		Dev:            a.cfg.IsDev(),
		AllowedOrigins: a.cfg.AllowedOrigins,
		MaxUploadBytes: a.cfg.MaxUploadBytes(),
		LLMTimeout:     a.cfg.LLM.Timeout,
		Model:          a.gen.Model(),
	})
	httpSrv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		a.log.Info("listening", zap.String("addr", a.cfg.Listen), zap.String("store", a.cfg.Session.Store))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})
	return g.Wait()
}
