package main // Entry point package

import (
	"log"  // Logging library
	"time" // Timezone loading

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/openclock/attendance-service/internal/config"     // Internal config loader
	"github.com/openclock/attendance-service/internal/database"   // MySQL connector
	"github.com/openclock/attendance-service/internal/handler"    // HTTP handlers
	"github.com/openclock/attendance-service/internal/middleware" // Rate limiting middleware
	"github.com/openclock/attendance-service/internal/queue"      // Check-in event consumer
	"github.com/openclock/attendance-service/internal/refcache"   // Reference data cache
	"github.com/openclock/attendance-service/internal/repository" // Data access layer
	"github.com/openclock/attendance-service/internal/router"     // Route registration
	"github.com/openclock/attendance-service/internal/service"    // Attendance core services
)

func main() {
	// Load .env if present; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid COMPANY_TIMEZONE %q: %v", cfg.Timezone, err)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Repositories over the shared connection pool.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	actionTypes := repository.NewActionTypeRepo(db)
	timeRules := repository.NewTimeRuleRepo(db)
	checkIns := repository.NewCheckInRepo(db)

	// One shared reference cache; admin writes invalidate it so reads
	// after a mutation always see fresh data.
	cache := refcache.New(config.LoadCacheConfig().TTL)

	ledger := service.NewLedger(checkIns, actionTypes, timeRules, users, cache, loc)
	catalog := service.NewCatalog(actionTypes, timeRules, users, cache)
	queries := service.NewQuery(checkIns, actionTypes, cache, loc)

	authH := handler.NewAuthHandler(cfg, users, tokens, cache)
	checkInH := handler.NewCheckInHandler(ledger)
	adminH := handler.NewAdminHandler(catalog)
	queryH := handler.NewQueryHandler(queries, loc)

	// The consumer appends recorded check-ins to logs/attendance.log.
	// It reconnects on broker failures and never takes the API down.
	go func() {
		if err := queue.StartCheckInConsumer(); err != nil {
			log.Printf("check-in consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance

	// Distributed rate limiting backed by Redis.  A nil client (Redis
	// unreachable) disables the limiter rather than failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)                                            // Health check
	router.RegisterAuth(e, authH, cfg.JWTSecret)                        // Identity endpoints
	router.RegisterCheckIns(e, checkInH, queryH, adminH, cfg.JWTSecret) // Attendance endpoints
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)                      // Reference data management

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
