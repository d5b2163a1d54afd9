package pkg

import (
	"context"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"AutoShed/internal/auth"
	"AutoShed/internal/config"
	"AutoShed/internal/directory"
	"AutoShed/internal/notification"
	"AutoShed/internal/realtime"
	"AutoShed/internal/scheduling"
	"AutoShed/pkg/middleware"
)

var EchoModules = fx.Module("echo",
	fx.Provide(NewEchoServer),
	fx.Provide(config.NewMongoDBConfig),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(config.NewResendConfig),
	fx.Provide(config.NewEmailService),
	fx.Provide(realtime.NewHub),
	fx.Provide(func(h *realtime.Hub) realtime.EventSink { return h }),
	fx.Provide(func(e *config.EmailService) notification.Mailer { return e }),
	fx.Provide(auth.NewUserRepository),
	fx.Provide(func(r *auth.UserRepository) auth.UserStore { return r }),
	fx.Provide(auth.NewUserService),
	fx.Provide(auth.NewAuthHandler),
	fx.Provide(notification.NewNotificationRepository),
	fx.Provide(func(r *notification.NotificationRepository) notification.Store { return r }),
	fx.Provide(notification.NewNotificationService),
	fx.Provide(notification.NewNotificationHandler),
	fx.Provide(notification.NewEmailDispatcher),
	fx.Provide(scheduling.NewSchedulingRepository),
	fx.Provide(func(r *scheduling.SchedulingRepository) scheduling.Store { return r }),
	fx.Provide(scheduling.NewSchedulingService),
	fx.Provide(scheduling.NewSchedulingHandler),
	fx.Provide(directory.NewDirectoryRepository),
	fx.Provide(func(r *directory.DirectoryRepository) directory.Store { return r }),
	fx.Provide(directory.NewDirectoryService),
	fx.Provide(directory.NewDirectoryHandler),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(func(d *notification.EmailDispatcher, lc fx.Lifecycle) { d.Start(lc) }),
)

func NewEchoServer(lc fx.Lifecycle) *echo.Echo {
	e := echo.New()
	e.Validator = config.NewRequestValidator()
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{corsOrigin()},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	port := ":8080"
	log.Println("Server running on http://localhost" + port[1:])
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(port); err != nil {
					log.Fatal("Failed to start the server:", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("shutting down the server ...")
			return e.Shutdown(ctx)
		},
	})
	return e
}

func corsOrigin() string {
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		return origin
	}
	return "http://localhost:5173"
}

func RegisterRoutes(
	e *echo.Echo,
	hub *realtime.Hub,
	authHandler *auth.AuthHandler,
	notificationHandler *notification.NotificationHandler,
	schedulingHandler *scheduling.SchedulingHandler,
	directoryHandler *directory.DirectoryHandler,
) {
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.GET("/ws", hub.Serve)

	api := e.Group("/api")
	api.Use(middleware.JWTMiddleware)
	api.Use(middleware.CasbinMiddleware)

	api.GET("/profile", authHandler.Profile)
	api.GET("/users", authHandler.ListUsers)
	api.DELETE("/users/:id", authHandler.DeleteUser)

	api.GET("/notifications", notificationHandler.ListNotifications)
	api.GET("/notifications/active/common", notificationHandler.ActiveCommon)
	api.GET("/notifications/audience/:audience", notificationHandler.ActiveForAudience)
	api.GET("/notifications/stats/overview", notificationHandler.StatsOverview)
	api.POST("/notifications/bulk-delete", notificationHandler.BulkDelete)
	api.GET("/notifications/:id", notificationHandler.GetNotification)
	api.POST("/notifications", notificationHandler.CreateNotification)
	api.PUT("/notifications/:id", notificationHandler.UpdateNotification)
	api.DELETE("/notifications/:id", notificationHandler.DeleteNotification)

	api.GET("/notices", notificationHandler.ListNotices)
	api.GET("/notices/audience/:audience", notificationHandler.NoticesForAudience)
	api.GET("/notices/:id", notificationHandler.GetNotice)
	api.POST("/notices", notificationHandler.CreateNotice)
	api.PUT("/notices/:id", notificationHandler.UpdateNotice)
	api.DELETE("/notices/:id", notificationHandler.DeleteNotice)

	api.GET("/bookings", schedulingHandler.ListBookings)
	api.GET("/bookings/:id", schedulingHandler.GetBooking)
	api.POST("/bookings", schedulingHandler.CreateBooking)
	api.PUT("/bookings/:id", schedulingHandler.UpdateBooking)
	api.DELETE("/bookings/:id", schedulingHandler.DeleteBooking)

	api.GET("/presentations", schedulingHandler.ListPresentations)
	api.GET("/presentations/:id", schedulingHandler.GetPresentation)
	api.POST("/presentations", schedulingHandler.CreatePresentation)
	api.PUT("/presentations/:id/reschedule", schedulingHandler.Reschedule)
	api.DELETE("/presentations/:id", schedulingHandler.DeletePresentation)

	api.GET("/examiners", directoryHandler.ListExaminers)
	api.GET("/examiners/:id", directoryHandler.GetExaminer)
	api.POST("/examiners", directoryHandler.CreateExaminer)
	api.PUT("/examiners/:id", directoryHandler.UpdateExaminer)
	api.DELETE("/examiners/:id", directoryHandler.DeleteExaminer)

	api.GET("/students", directoryHandler.ListStudents)
	api.GET("/students/:id", directoryHandler.GetStudent)
	api.POST("/students", directoryHandler.CreateStudent)
	api.PUT("/students/:id", directoryHandler.UpdateStudent)
	api.DELETE("/students/:id", directoryHandler.DeleteStudent)
}
