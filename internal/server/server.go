package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/booking"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/config"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/court"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/notify"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/prepaid"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/user"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/waitlist"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config

	// Services shared with the sweep scheduler.
	Bookings booking.Service
	Packages prepaid.Service
	Waitlist waitlist.Service
}

func New(db *sqlx.DB, cfg *config.Config, notifyService *notify.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userRepo := user.NewRepository(db)
	courtRepo := court.NewRepository(db)
	prepaidRepo := prepaid.NewRepository(db)
	waitlistRepo := waitlist.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	prepaidService := prepaid.NewService(prepaidRepo, userRepo)
	waitlistService := waitlist.NewService(
		waitlistRepo, userRepo, courtRepo, notifyService,
		time.Duration(cfg.WaitlistResponseMinutes)*time.Minute,
		cfg.WaitlistPurgeDays,
	)
	bookingService := booking.NewService(
		bookingRepo, userRepo, courtRepo,
		prepaidService, waitlistService, notifyService,
	)

	userHandler := user.NewHandler(userRepo)
	courtHandler := court.NewHandler(courtRepo)
	prepaidHandler := prepaid.NewHandler(prepaidRepo, prepaidService)
	waitlistHandler := waitlist.NewHandler(waitlistService)
	bookingHandler := booking.NewHandler(bookingService)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(notifyService))
	SetupSwagger(router)

	router.POST("/users", userHandler.CreateUser)
	router.GET("/users/:userID", userHandler.GetUser)
	router.PUT("/users/:userID", userHandler.UpdateUser)
	router.GET("/users/:userID/bookings", bookingHandler.ListUserBookings)
	router.GET("/users/:userID/packages", prepaidHandler.ListUserPackages)
	router.GET("/users/:userID/packages/best", prepaidHandler.BestAvailable)
	router.GET("/users/:userID/waitlist", waitlistHandler.ListByUser)

	router.GET("/courts", courtHandler.ListCourts)
	router.GET("/courts/:courtID", courtHandler.GetCourt)
	router.GET("/courts/:courtID/availability", bookingHandler.Availability)

	router.POST("/bookings", bookingHandler.CreateBooking)
	router.POST("/bookings/recurrent", bookingHandler.CreateRecurrentBooking)
	router.GET("/bookings/:bookingID", bookingHandler.GetBooking)
	router.POST("/bookings/:bookingID/cancel", bookingHandler.CancelBooking)

	router.GET("/packages", prepaidHandler.ListPackages)
	router.POST("/packages/purchase", prepaidHandler.Purchase)
	router.GET("/user-packages/:userPackageID", prepaidHandler.GetUserPackage)

	router.POST("/waitlist", waitlistHandler.Enqueue)
	router.GET("/waitlist/:entryID", waitlistHandler.GetEntry)
	router.DELETE("/waitlist/:entryID", waitlistHandler.Remove)

	admin := router.Group("/admin")
	{
		admin.GET("/users", userHandler.ListUsers)
		admin.POST("/courts", courtHandler.CreateCourt)
		admin.PUT("/courts/:courtID", courtHandler.UpdateCourt)
		admin.DELETE("/courts/:courtID", courtHandler.DeactivateCourt)
		admin.POST("/packages", prepaidHandler.CreatePackage)
	}

	return &Server{
		router:   router,
		db:       db,
		config:   cfg,
		Bookings: bookingService,
		Packages: prepaidService,
		Waitlist: waitlistService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
