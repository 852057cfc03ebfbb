package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ukydev/carwise/internal/advice"
	"github.com/ukydev/carwise/internal/auth"
	"github.com/ukydev/carwise/internal/convo"
	"github.com/ukydev/carwise/internal/export"
	"github.com/ukydev/carwise/internal/handlers"
	"github.com/ukydev/carwise/internal/reminder"
	"github.com/ukydev/carwise/internal/stats"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat gateway and the reminder scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		engine := convo.New(a.stores, a.sessionStore(), a.dispatcher, a.cfg, a.log)
		authService := auth.NewService(a.cfg.JWTSecret, a.cfg.AdminSecret, 24*time.Hour)
		collector := stats.NewCollector(a.stores.Fuel, a.stores.Maintenance, a.stores.Insurance)
		exporter := export.New(a.stores)
		advisor := advice.NewClient(a.cfg.AdviceBaseURL, a.cfg.AdviceAPIKey, a.cfg.AdviceModel, a.log)

		gateway := handlers.New(engine, a.stores, a.cfg, authService, collector, exporter, advisor, a.log)
		srv := &http.Server{
			Addr:              a.cfg.GatewayAddr,
			Handler:           gateway.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		scheduler := reminder.NewScheduler(a.reminderEngine(), reminder.ClockOffsets(a.cfg.ReminderTimes), a.log)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a.log.WithField("addr", srv.Addr).Info("gateway listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			err := scheduler.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			<-gctx.Done()
			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}
