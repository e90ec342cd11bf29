package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbroker/api"
	"github.com/Domenick1991/flightbroker/config"
	"github.com/Domenick1991/flightbroker/internal/bootstrap"
	"github.com/Domenick1991/flightbroker/internal/cache"
	"github.com/Domenick1991/flightbroker/internal/email"
	"github.com/Domenick1991/flightbroker/internal/kafka"
	"github.com/Domenick1991/flightbroker/internal/logger"
	"github.com/Domenick1991/flightbroker/internal/phonepe"
	"github.com/Domenick1991/flightbroker/internal/provider"
	"github.com/Domenick1991/flightbroker/internal/repository"
	"github.com/Domenick1991/flightbroker/internal/service/auth"
	"github.com/Domenick1991/flightbroker/internal/service/booking"
	"github.com/Domenick1991/flightbroker/internal/service/fares"
	"github.com/Domenick1991/flightbroker/internal/service/payment"
	"github.com/Domenick1991/flightbroker/internal/service/search"
	"github.com/Domenick1991/flightbroker/internal/service/ticket"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Log)
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()
	if err := repository.Migrate(ctx, pool); err != nil {
		log.WithError(err).Fatal("apply schema")
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Auth.TokenCacheTTL)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()

	flightProvider := provider.NewClient(cfg.Provider, log)
	gateway := phonepe.NewClient(cfg.Payment, log)

	tokenRepo := repository.NewTokenRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	tokenService := auth.NewTokenService(tokenRepo, redisCache, flightProvider, log)
	searchService := search.NewSearchService(tokenService, flightProvider, cfg.Session.TraceTTL, log)
	fareService := fares.NewFareService(tokenService, flightProvider, log)
	bookingService := booking.NewBookingService(
		bookingRepo,
		paymentRepo,
		tokenService,
		flightProvider,
		log,
		booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
	)
	ticketService := ticket.NewTicketService(
		bookingRepo,
		tokenService,
		flightProvider,
		redisCache,
		newMailer(cfg, producer, log),
		log,
		ticket.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
	)
	paymentService := payment.NewPaymentService(
		bookingRepo,
		paymentRepo,
		gateway,
		ticketService,
		cfg.Payment,
		log,
		payment.WithProducer(producer, cfg.Kafka.PaymentEventsTopic),
	)

	router := api.NewRouter(api.Handlers{
		Flights:  api.NewFlightHandler(searchService, fareService, cfg.Session, log),
		Bookings: api.NewBookingHandler(bookingService, log),
		Payments: api.NewPaymentHandler(paymentService, log),
		Tickets:  api.NewTicketHandler(ticketService, log),
		Health: api.NewHealthHandler(map[string]api.Checker{
			"postgres": pool.Ping,
			"redis":    redisCache.Ping,
			"kafka":    producer.CheckConnection,
		}, log),
	}, log)

	if err := bootstrap.Run(ctx, cfg.HTTP, router, log); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

// newMailer picks how ticket emails leave the process: through the
// notifications topic for the worker, or straight to SMTP.
func newMailer(cfg *config.Config, producer *kafka.Producer, log logrus.FieldLogger) ticket.Mailer {
	if cfg.Notifications.Mode == "direct" {
		return email.NewSender(cfg.SMTP, log)
	}
	return kafka.NewTicketPublisher(producer, cfg.Kafka.NotificationsTopic)
}
