package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/lab-booking-backend/internal/auth"
	"github.com/nekogravitycat/lab-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/lab-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
	resourceHttp "github.com/nekogravitycat/lab-booking-backend/internal/resource/http"
	"github.com/nekogravitycat/lab-booking-backend/internal/schedule"
	scheduleHttp "github.com/nekogravitycat/lab-booking-backend/internal/schedule/http"
	"github.com/nekogravitycat/lab-booking-backend/internal/slot"
	slotHttp "github.com/nekogravitycat/lab-booking-backend/internal/slot/http"
	"github.com/nekogravitycat/lab-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/lab-booking-backend/internal/user/http"
)

// Config holds everything the router needs to assemble middleware and routes.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService     user.Service
	ResService      resource.Service
	ScheduleService schedule.Service
	SlotRepo        slot.Repository
	Materializer    *slot.Materializer
	BookingService  booking.Service
	JWTManager      *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, Logger, Auth) and registers routes for each module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Logger writes request lines to stdout; Recovery turns panics into 500s.
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware validates the request's JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware further checks that the authenticated user is an admin.
	adminMiddleware := RequireAdmin(cfg.UserService)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	resHandler := resourceHttp.NewHandler(cfg.ResService)
	scheduleHandler := scheduleHttp.NewHandler(cfg.ScheduleService)
	slotHandler := slotHttp.NewHandler(cfg.SlotRepo, cfg.Materializer)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.UserService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		resourceHttp.RegisterRoutes(v1, resHandler, authMiddleware, adminMiddleware)
		scheduleHttp.RegisterRoutes(v1, scheduleHandler, authMiddleware, adminMiddleware)
		slotHttp.RegisterRoutes(v1, slotHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r
}
