package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invest-tracker/core/logger"
	"invest-tracker/core/middleware/auth"
	"invest-tracker/core/middleware/rayid"
	"invest-tracker/feature/tracker"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the investment tracker server",
	Long: `Starts the HTTP server exposing the reconcile trigger and the
read-only ledger endpoints. With TRACKER_INTERVAL_SECONDS set, a cycle
also runs on a timer in the background.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := buildRuntime()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := rt.log
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		handler := tracker.NewHandler(rt.engine, rt.store, rt.archiver, logg)

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		handler.RegisterRoutes(app)

		// Background scheduler, active only when an interval is configured.
		schedulerCtx, stopScheduler := context.WithCancel(context.Background())
		defer stopScheduler()
		if interval := rt.cfg.Tracker.IntervalSeconds; interval > 0 {
			go runScheduler(schedulerCtx, rt, time.Duration(interval)*time.Second)
		}

		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			if err := app.Listen(":" + rt.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		stopScheduler()
		_ = app.Shutdown()
	},
}

// runScheduler runs one cycle per tick until the context is cancelled.
// Overlap is impossible: the next tick fires only after the previous cycle
// returned, since a single goroutine consumes the ticker.
func runScheduler(ctx context.Context, rt *runtime, interval time.Duration) {
	rt.log.Info("Scheduler started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rt.log.Info("Scheduler stopped")
			return
		case <-ticker.C:
			report, err := rt.engine.RunCycle(ctx)
			if err != nil {
				rt.log.Error("Scheduled cycle failed", zap.Error(err))
			}
			if rt.archiver != nil && report != nil {
				if err := rt.archiver.Archive(ctx, report); err != nil {
					rt.log.Error("Report archive failed", zap.Error(err))
				}
			}
		}
	}
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
