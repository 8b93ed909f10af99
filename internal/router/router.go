package router

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/localkart/homeservices-api/internal/handlers"
	"github.com/localkart/homeservices-api/internal/middleware"
	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/observability"
)

const ServiceName = "homeservices-api"

type Deps struct {
	Handler        *handlers.Handler
	Auth           *middleware.AuthMiddleware
	Limiter        middleware.Limiter
	Prom           *observability.Prom
	Gatherer       prometheus.Gatherer
	Log            *slog.Logger
	AllowedOrigins []string
	MaxBodyBytes   int64
	Production     bool
}

var registerValidators sync.Once

func New(d Deps) (*gin.Engine, error) {
	var verr error
	registerValidators.Do(func() { verr = handlers.RegisterValidators() })
	if verr != nil {
		return nil, verr
	}

	if d.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.SecurityHeaders())
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	// cors.New panics on an empty allowlist
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	h := d.Handler
	api := r.Group("/api")
	if d.MaxBodyBytes > 0 {
		api.Use(middleware.MaxBodyBytes(d.MaxBodyBytes))
	}
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter, middleware.KeyByIP, d.Log))
	}

	api.GET("/health", h.Health)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)

		me := auth.Group("", d.Auth.RequireAuth())
		me.GET("/me", h.GetCurrentUser)
		me.PUT("/updatedetails", h.UpdateCurrentUser)
		me.POST("/addresses", h.AddAddress)
		me.PUT("/addresses/:id", h.UpdateAddress)
		me.DELETE("/addresses/:id", h.DeleteAddress)
		me.PATCH("/addresses/:id/default", h.SetDefaultAddress)
	}

	bookings := api.Group("/bookings")
	{
		bookings.POST("", d.Auth.OptionalAuth(), h.CreateBooking)

		member := bookings.Group("", d.Auth.RequireAuth())
		member.GET("", d.Auth.RequireRole(models.RoleAdmin), h.GetAllBookings)
		member.GET("/my-bookings", h.GetMyBookings)
		member.GET("/:id", h.GetBooking)
		member.PATCH("/:id", h.UpdateBooking)
		member.DELETE("/:id", h.CancelBooking)
	}

	catalog := api.Group("/services")
	{
		catalog.GET("", h.GetServices)
		catalog.GET("/category/:category", h.GetServicesByCategory)
		catalog.GET("/:id", h.GetService)

		admin := catalog.Group("", d.Auth.RequireAuth(), d.Auth.RequireRole(models.RoleAdmin))
		admin.POST("", h.CreateService)
		admin.PUT("/:id", h.UpdateService)
		admin.DELETE("/:id", h.DeleteService)
		admin.PATCH("/:id/toggle", h.ToggleService)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.Envelope{Success: false, Message: "Route not found"})
	})
	return r, nil
}
