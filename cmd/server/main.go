package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/alerts"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/bid"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/chat"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/config"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/db"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/directory"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/job"
	mware "github.com/cdileep23/XNL-21BCE9435-server/internal/middleware"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/realtime"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/scheduler"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/settlement"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Initialize subsystems
	db.Init(cfg.DatabaseURL)
	alerts.InitClient()
	defer alerts.Close()

	ctx := context.Background()

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		realtime.InitBridge(ctx, rdb)
	}

	sched := scheduler.New(db.Conn, cfg.ExpirySweepHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer sched.Stop()

	e := echo.New()
	e.HideBanner = true

	// Basic middleware
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// Health and root routes
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "marketplace"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if db.Conn == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db not initialized"})
		}
		if err := db.Conn.Ping(context.Background()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Every domain route requires an authenticated caller
	api := e.Group("")
	api.Use(mware.JWTMiddleware)

	// Jobs
	api.POST("/job/create", job.CreateJob, mware.RequireRoles("jobPoster"))
	api.GET("/job/all", job.ListJobs)
	api.GET("/job/posted/me", job.ListMyPostedJobs, mware.RequireRoles("jobPoster"))
	api.GET("/job/applications/me", bid.ListMyApplications, mware.RequireRoles("freelancer"))
	api.GET("/jobs/open/apply", job.ListOpenToApply, mware.RequireRoles("freelancer"))
	api.GET("/job/:id", job.GetJob)
	api.PATCH("/job/update/:id", job.UpdateJob, mware.RequireRoles("jobPoster"))
	api.PATCH("/job/:id/close", job.CancelJob, mware.RequireRoles("jobPoster"))
	api.PATCH("/job/:id/complete", job.CompleteJob, mware.RequireRoles("jobPoster"))
	api.POST("/job/:id/apply", bid.SubmitBid, mware.RequireRoles("freelancer"))

	// Bids
	api.POST("/bids", bid.SubmitBid, mware.RequireRoles("freelancer"))
	api.GET("/bids/job/:jobId/bids", bid.ListBidsForJob, mware.RequireRoles("jobPoster"))
	api.GET("/bids/my-bids", bid.ListMyBids, mware.RequireRoles("freelancer"))
	api.PATCH("/bids/:id/accept", bid.AcceptBid, mware.RequireRoles("jobPoster"))
	api.PATCH("/bids/:id/reject", bid.RejectBid, mware.RequireRoles("jobPoster"))

	// Chats
	api.GET("/chats", chat.ListChats)
	api.GET("/chats/:id", chat.GetChat)
	api.POST("/chats/:id/messages", chat.SendMessage)
	api.POST("/chats/:id/read", chat.MarkRead)
	api.GET("/ws/jobs/:id/chat", chat.JobChatWS)

	// Account
	api.GET("/users/me", directory.Me)

	// Payments
	api.GET("/payments/me", settlement.ListMyPayments)

	// Notifications
	api.GET("/notifications", alerts.ListNotifications)
	api.POST("/notifications/:id/read", alerts.MarkNotificationRead)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
