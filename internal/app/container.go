package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/lab-booking-backend/internal/api"
	"github.com/nekogravitycat/lab-booking-backend/internal/auth"
	"github.com/nekogravitycat/lab-booking-backend/internal/booking"
	"github.com/nekogravitycat/lab-booking-backend/internal/event"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
	"github.com/nekogravitycat/lab-booking-backend/internal/schedule"
	"github.com/nekogravitycat/lab-booking-backend/internal/slot"
	"github.com/nekogravitycat/lab-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	RedisClient  *redis.Client // optional, enables the redis event sink
	Logger       *zap.Logger
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	OpenHour          int
	CloseHour         int
	SlotLengthMinutes int
	GraceMinutes      int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	clk := clock.Real{}

	sinks := []event.Sink{event.NewLogSink(cfg.Logger)}
	if cfg.RedisClient != nil {
		sinks = append(sinks, event.NewRedisSink(cfg.RedisClient))
	}
	notifier := event.NewFanout(cfg.Logger, sinks...)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Slot Materializer
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	scheduleRepo := schedule.NewPgxRepository(cfg.DBPool)
	slotRepo := slot.NewPgxRepository(cfg.DBPool)
	materializer := slot.NewMaterializer(slotRepo, scheduleRepo, resRepo, slot.Hours{
		OpenHour:          cfg.OpenHour,
		CloseHour:         cfg.CloseHour,
		SlotLengthMinutes: cfg.SlotLengthMinutes,
	}, cfg.Logger)

	// Resource Module
	resService := resource.NewService(resRepo, materializer)

	// Schedule Module
	scheduleService := schedule.NewService(scheduleRepo, resService, materializer, cfg.Logger)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	grace := time.Duration(cfg.GraceMinutes) * time.Minute
	bookingService := booking.NewService(bookingRepo, clk, grace, notifier, cfg.Logger)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		UserService:     userService,
		ResService:      resService,
		ScheduleService: scheduleService,
		SlotRepo:        slotRepo,
		Materializer:    materializer,
		BookingService:  bookingService,
		JWTManager:      jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}
}
