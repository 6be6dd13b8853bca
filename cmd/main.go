package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/washhub/carwash-platform/internal/config"
	"github.com/washhub/carwash-platform/internal/db"
	"github.com/washhub/carwash-platform/internal/events"
	"github.com/washhub/carwash-platform/internal/handlers"
	"github.com/washhub/carwash-platform/internal/logging"
	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/repository"
	"github.com/washhub/carwash-platform/internal/service"
	"github.com/washhub/carwash-platform/internal/session"
)

func main() {
	// 1. Конфиг из env.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init("carwash-core", cfg.Env)

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init db")
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("auto migrate")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("sql DB")
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	washRepo := repository.NewGormCarWashRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	serviceRepo := repository.NewGormServiceRepository(gormDB)
	apptRepo := repository.NewGormAppointmentRepository(gormDB)
	txnRepo := repository.NewGormTransactionRepository(gormDB)
	subRepo := repository.NewGormSubscriptionRepository(gormDB)
	planRepo := repository.NewGormSubscriptionPlanRepository(gormDB)

	// 5. Брокер событий — опционален, без URL ядро работает молча.
	var pub *events.Publisher
	if cfg.AMQPURL != "" {
		pub, err = events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("init amqp publisher")
		}
		defer pub.Close()
	}

	// 6. Redis для черновиков диалогов — тоже опционален.
	var sessions *session.Store
	if cfg.RedisAddr != "" {
		sessions, err = session.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL())
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, session drafts disabled")
			sessions = nil
		} else {
			defer sessions.Close()
		}
	}

	// 7. Сервисы ядра.
	loc := cfg.Location()
	identitySvc := service.NewIdentityService(userRepo, washRepo)
	bookingSvc := service.NewBookingService(washRepo, serviceRepo, apptRepo, pub, service.SlotOptions{
		OpenHour:  cfg.BookingOpenHour,
		CloseHour: cfg.BookingCloseHour,
		StepMin:   cfg.SlotStepMin,
		MaxSlots:  cfg.MaxSlots,
		Loc:       loc,
	})
	paymentSvc := service.NewPaymentService(txnRepo, userRepo, subRepo, planRepo, pub)
	catalogSvc := service.NewCatalogService(serviceRepo, planRepo)
	statsSvc := service.NewStatsService(apptRepo, txnRepo, userRepo, loc)

	// 8. HTTP-сервер на gin.
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestLogger())

	h := handlers.New(identitySvc, bookingSvc, paymentSvc, catalogSvc, statsSvc, sessions)
	h.Register(router)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http serve")
		}
	}()

	// 9. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down http server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
