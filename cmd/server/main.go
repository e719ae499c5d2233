package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"roombooking/internal/api"
	"roombooking/internal/config"
	"roombooking/internal/logger"
	"roombooking/internal/ratelimit"
	"roombooking/internal/repository"
	"roombooking/internal/service"
	"roombooking/internal/sweepgate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, lg *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var (
		store   repository.BookingStore
		catalog repository.RoomCatalog
	)
	if cfg.DatabaseURL != "" {
		conn, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := conn.PingContext(ctx); err != nil {
			return err
		}
		rooms := repository.NewRoomRepository(conn)
		if cfg.AutoMigrate {
			if err := repository.Migrate(ctx, conn); err != nil {
				return err
			}
			if cfg.SeedRooms > 0 {
				n, err := rooms.SeedRooms(ctx, repository.DefaultRooms(cfg.SeedRooms))
				if err != nil {
					return err
				}
				lg.Info("seeded rooms", zap.Int("count", n))
			}
		}
		store = repository.NewBookingRepository(conn)
		catalog = rooms
		lg.Info("using postgres store")
	} else {
		mem := repository.NewMemoryStore(repository.DefaultRooms(cfg.MemoryRooms)...)
		store, catalog = mem, mem
		lg.Warn("DATABASE_URL not set, using in-memory store", zap.Int("rooms", cfg.MemoryRooms))
	}

	clock := service.SystemClock{}
	arbiter := service.NewSlotArbiter(cfg.GraceWindow, clock)

	schedule, err := sweepgate.ParseSchedule(cfg.SweepSchedule)
	if err != nil {
		return err
	}
	var gate sweepgate.Gate = sweepgate.NewLocal(schedule, clock.Now())
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancelPing()
		if err != nil {
			return err
		}
		gate = sweepgate.NewRedis(rdb, schedule, sweepgate.WithKey(cfg.SweepGateKey))
		lg.Info("sweep gate shared through redis", zap.String("addr", cfg.RedisAddr))
	}

	sweeper := service.NewSweeper(store, gate, arbiter, lg)
	if cfg.SweepCron != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.SweepCron, func() {
			if _, err := sweeper.Sweep(ctx, clock.Now()); err != nil {
				lg.Error("scheduled sweep failed", zap.Error(err))
			}
		})
		if err != nil {
			return err
		}
		c.Start()
		defer c.Stop()
		lg.Info("scheduled sweep enabled", zap.String("spec", cfg.SweepCron))
	}

	var limiter *ratelimit.Store
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimit.NewStore(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter.StartJanitor(ctx)
	}

	handler := api.NewRouter(api.Deps{
		Bookings:     service.NewBookingService(store, arbiter, loc, lg),
		Rooms:        service.NewRoomService(catalog),
		Availability: service.NewAvailabilityService(store, arbiter, loc, cfg.AvailabilityLoopLimit, lg),
		Sweeper:      sweeper,
		Store:        store,
		Limiter:      limiter,
		TrustXFF:     cfg.RateLimitTrustXFF,
		Logger:       lg,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Info("server running",
		zap.String("addr", srv.Addr),
		zap.String("timezone", loc.String()),
		zap.Duration("grace", cfg.GraceWindow),
		zap.String("sweepSchedule", cfg.SweepSchedule))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
