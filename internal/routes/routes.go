package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/lewlew/lewlew-server/internal/config"
	"github.com/lewlew/lewlew-server/internal/handlers"
	"github.com/lewlew/lewlew-server/internal/middleware"
	"github.com/lewlew/lewlew-server/internal/ws"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Post         *handlers.PostHandler
	Comment      *handlers.CommentHandler
	Friend       *handlers.FriendHandler
	Notification *handlers.NotificationHandler
	Report       *handlers.ReportHandler
	Upload       *handlers.UploadHandler
	Admin        *handlers.AdminHandler
	Health       *handlers.HealthHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, hub *ws.Hub, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth — public, with a stricter rate limit against SMS abuse
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/request-code", h.Auth.RequestCode)
	auth.Post("/verify-code", h.Auth.VerifyCode)
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)

	protected := middleware.JWTProtected(cfg)

	// Users
	api.Get("/users/me", protected, h.User.Me)
	api.Put("/users/me", protected, h.User.UpdateProfile)
	api.Put("/users/me/location", protected, h.User.UpdateLocation)
	api.Get("/users/search", protected, h.User.Search)
	api.Get("/users/:id", protected, h.User.GetUser)
	api.Get("/users/:id/posts", protected, h.Post.UserPosts)

	// Posts
	api.Post("/posts", protected, h.Post.Create)
	api.Get("/posts/nearby", protected, h.Post.Nearby)
	api.Get("/posts/friends", protected, h.Post.FriendsFeed)
	api.Get("/posts/:id", protected, h.Post.Get)
	api.Delete("/posts/:id", protected, h.Post.Delete)
	api.Post("/posts/:id/like", protected, h.Comment.LikePost)
	api.Delete("/posts/:id/like", protected, h.Comment.UnlikePost)

	// Comments
	api.Post("/posts/:id/comments", protected, h.Comment.Create)
	api.Get("/posts/:id/comments", protected, h.Comment.List)
	api.Delete("/comments/:id", protected, h.Comment.Delete)
	api.Post("/comments/:id/like", protected, h.Comment.LikeComment)
	api.Delete("/comments/:id/like", protected, h.Comment.UnlikeComment)

	// Friends
	api.Post("/friends/requests", protected, h.Friend.Request)
	api.Put("/friends/requests/:id/accept", protected, h.Friend.Accept)
	api.Put("/friends/requests/:id/reject", protected, h.Friend.Reject)
	api.Delete("/friends/:id", protected, h.Friend.Remove)
	api.Get("/friends", protected, h.Friend.List)

	// Notifications
	api.Get("/notifications", protected, h.Notification.List)
	api.Put("/notifications/read-all", protected, h.Notification.MarkAllRead)
	api.Put("/notifications/:id/read", protected, h.Notification.MarkRead)

	// Reports
	api.Post("/reports", protected, h.Report.Create)
	api.Get("/reports/mine", protected, h.Report.MyReports)

	// Uploads
	api.Post("/uploads", protected, h.Upload.UploadImage)
	api.Get("/uploads", protected, h.Upload.List)
	api.Delete("/uploads/:id", protected, h.Upload.DeleteImage)

	// Real-time notification stream (token via query parameter)
	app.Get("/ws", ws.UpgradeRequired(cfg.JWTSecret), ws.Handler(hub))

	// Admin panel
	admin := api.Group("/admin", protected, middleware.AdminRequired(db, cfg))
	admin.Get("/dashboard", h.Admin.Dashboard)
	admin.Get("/reports", h.Report.List)
	admin.Get("/reports/stats", h.Report.Stats)
	admin.Get("/reports/:id", h.Report.Get)
	admin.Put("/reports/:id", h.Report.UpdateStatus)
	admin.Delete("/posts/:id", h.Admin.DeletePost)
}
