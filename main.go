package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recruit-reminder-backend/config"
	"recruit-reminder-backend/controllers"
	"recruit-reminder-backend/parser"
	"recruit-reminder-backend/routes"
	"recruit-reminder-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	config.LoadDotEnv()

	root := &cobra.Command{
		Use:          "recruit-reminder",
		Short:        "Recruitment schedule reminders",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), remindCmd(), reportCmd(), parseCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired services shared by every command.
type app struct {
	settings  *config.Settings
	repo      *services.GormRepository
	reminders *services.ReminderService
	weekly    *services.WeeklyReportService
	scheduler *services.Scheduler
}

func newApp() (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := config.ConnectDB(settings.DBURL)
	if err != nil {
		return nil, err
	}

	now := func() time.Time { return time.Now().In(settings.Location) }
	repo := services.NewGormRepository(db)
	sender := newSender(settings)
	metrics := services.MustNewMetrics(prometheus.DefaultRegisterer)

	reminders := services.NewReminderService(repo, sender, services.ReminderConfig{
		Offsets:     settings.ReminderOffsets,
		RetryFailed: settings.RetryFailedReminders,
	}, now, metrics)
	weekly := services.NewWeeklyReportService(repo, sender, services.WeeklyReportConfig{
		ActiveWindow: settings.ActiveUserWindow,
		RangeDays:    settings.WeeklyReportDays,
	}, now, metrics)

	scheduler, err := services.NewScheduler(settings.Location,
		services.JobTable(reminders, weekly, settings.DailyReminderCron, settings.WeeklyReportCron), now)
	if err != nil {
		return nil, err
	}

	return &app{
		settings:  settings,
		repo:      repo,
		reminders: reminders,
		weekly:    weekly,
		scheduler: scheduler,
	}, nil
}

func newSender(settings *config.Settings) services.NotificationSender {
	if settings.Notifier == "log" {
		return services.NewLogSender(nil)
	}
	if settings.TwilioAccountSID == "" || settings.TwilioAuthToken == "" {
		log.Println("Warning: Twilio credentials are missing.")
	}
	return services.NewTwilioSender(services.TwilioConfig{
		AccountSID:     settings.TwilioAccountSID,
		AuthToken:      settings.TwilioAuthToken,
		PhoneNumber:    settings.TwilioPhoneNumber,
		WhatsAppNumber: settings.TwilioWhatsAppNumber,
	})
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			now := func() time.Time { return time.Now().In(a.settings.Location) }

			schedules := &controllers.ScheduleController{Store: a.repo, Location: a.settings.Location, Now: now}
			r := routes.SetupRouter(routes.Dependencies{
				Schedules:   schedules,
				Messages:    &controllers.MessageController{Schedules: schedules, Parser: parser.New(now)},
				Jobs:        &controllers.JobController{Runner: a.scheduler},
				CORSOrigins: a.settings.CORSOrigins,
			})
			printRoutes(r)

			a.scheduler.Start()
			defer func() {
				<-a.scheduler.Stop().Done()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- r.Run(":" + a.settings.Port) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Println("Shutting down")
				return nil
			}
		},
	}
}

func remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run the daily reminder pass once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return printReport(a.scheduler.RunNow(cmd.Context(), services.DailyRemindersJob))
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Run the weekly report pass once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return printReport(a.scheduler.RunNow(cmd.Context(), services.WeeklyReportJob))
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text>",
		Short: "Show how a chat message would be registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			p := parser.New(func() time.Time { return time.Now().In(settings.Location) })
			e, ok := p.Parse(args[0])
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no schedule found")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "date: %s\ntype: %s (%s)\ncompany: %s\n",
				e.DateString(), e.Type, e.TypeName, e.CompanyName)
			return nil
		},
	}
}

func printReport(report *services.RunReport, err error) error {
	if report != nil {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
	}
	return err
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}

