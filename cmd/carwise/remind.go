package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ukydev/carwise/internal/reminder"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the reminder scheduler without the gateway",
	Long: `Run the reminder scheduler without the gateway.

With --once a single evaluation pass runs immediately and the process
exits, which suits an external cron.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		engine := a.reminderEngine()
		if once {
			return engine.Evaluate(ctx, time.Now())
		}

		scheduler := reminder.NewScheduler(engine, reminder.ClockOffsets(a.cfg.ReminderTimes), a.log)
		if err := scheduler.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	remindCmd.Flags().Bool("once", false, "run one evaluation pass and exit")
}
