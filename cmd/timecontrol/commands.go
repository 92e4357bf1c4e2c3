package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"time-control/internal/config"
	"time-control/internal/events"
	"time-control/internal/models"
	"time-control/pkg/dateutil"
)

// cli - корневая команда и собранное ею приложение
type cli struct {
	root *cobra.Command
	app  *app
}

func newCLI() *cli {
	c := &cli{}
	c.root = &cobra.Command{
		Use:           "timecontrol",
		Short:         "Attendance calendar and working time accounting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.app, err = newApp(cfg)
			return err
		},
	}

	get := func() *app { return c.app }
	c.root.AddCommand(
		newMigrateCmd(get),
		newCalendarCmd(get),
		newStatsCmd(get),
		newCheckMissingCmd(get),
		newWorkerCmd(get),
	)
	return c
}

// close освобождает ресурсы приложения, в том числе после завершившейся с ошибкой команды
func (c *cli) close() {
	if c.app != nil {
		c.app.close()
	}
}

func newMigrateCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			// Таблицы уже мигрированы при создании репозиториев
			if a.cfg.TelegramAdminChatID != 0 {
				admin, err := a.users.EnsureAdmin(cmd.Context(), a.cfg.TelegramAdminChatID, "")
				if err != nil {
					return err
				}
				a.logger.Infof("Admin initialized with chat ID: %d", admin.ChatID)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCalendarCmd(get func() *app) *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Production calendar",
	}
	cmd.PersistentFlags().StringVar(&country, "country", "", "calendar country (default from COUNTRY)")

	var from, to string
	ensure := &cobra.Command{
		Use:   "ensure",
		Short: "Generate missing calendar days for a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := dateutil.Parse(from)
			if err != nil {
				return err
			}
			end, err := dateutil.Parse(to)
			if err != nil {
				return err
			}
			if err := get().calendar.EnsureRange(cmd.Context(), start, end, country); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "calendar ensured: %s - %s\n", dateutil.Format(start), dateutil.Format(end))
			return nil
		},
	}
	ensure.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	ensure.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")
	_ = ensure.MarkFlagRequired("from")
	_ = ensure.MarkFlagRequired("to")

	var year, month int
	monthCmd := &cobra.Command{
		Use:   "month",
		Short: "Print calendar days of a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month < 1 || month > 12 {
				return fmt.Errorf("invalid month: %d", month)
			}
			days, err := get().calendar.GetMonth(cmd.Context(), year, time.Month(month), country)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range days {
				mark := "work"
				if !d.IsWorkingDay {
					mark = "off "
				}
				fmt.Fprintf(out, "%s %s %-8s %s\n", dateutil.Format(d.Date), mark, d.DayType, d.HolidayName)
			}
			return nil
		},
	}
	now := time.Now()
	monthCmd.Flags().IntVar(&year, "year", now.Year(), "year")
	monthCmd.Flags().IntVar(&month, "month", int(now.Month()), "month number")

	cmd.AddCommand(ensure, monthCmd)
	return cmd
}

func newStatsCmd(get func() *app) *cobra.Command {
	var (
		userID   uint
		period   string
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print working time statistics of an employee as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var fromDate, toDate *time.Time
			if from != "" {
				d, err := dateutil.Parse(from)
				if err != nil {
					return err
				}
				fromDate = &d
			}
			if to != "" {
				d, err := dateutil.Parse(to)
				if err != nil {
					return err
				}
				toDate = &d
			}

			snapshot, err := get().stats.GetStats(cmd.Context(), userID, models.PeriodType(period), fromDate, toDate)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot)
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "employee id")
	cmd.Flags().StringVar(&period, "period", string(models.PeriodMonth), "week, month, year or custom")
	cmd.Flags().StringVar(&from, "from", "", "period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "period end (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newCheckMissingCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-missing",
		Short: "Find recent working days without time entries and notify employees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := get().checker.CheckActive(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range result {
				fmt.Fprintf(out, "user %d:", m.UserID)
				for _, d := range m.Dates {
					fmt.Fprintf(out, " %s", dateutil.Format(d))
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%d employees with missing entries\n", len(result))
			return nil
		},
	}
}

func newWorkerCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume queued events and deliver notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if a.cfg.EventTransport != config.TransportAsynq {
				return fmt.Errorf("worker requires EVENT_TRANSPORT=%s", config.TransportAsynq)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			worker := events.NewWorker(a.cfg.RedisAddr, a.cfg.WorkerConcurrency, a.handler, a.logger)
			a.logger.Info("Worker started. Press Ctrl+C to stop.")
			if err := worker.Run(ctx); err != nil {
				return err
			}
			a.logger.Info("Worker stopped gracefully")
			return nil
		},
	}
}
