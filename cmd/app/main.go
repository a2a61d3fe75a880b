package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airticketing/api"
	"github.com/Domenick1991/airticketing/config"
	"github.com/Domenick1991/airticketing/internal/bootstrap"
	"github.com/Domenick1991/airticketing/internal/cache"
	"github.com/Domenick1991/airticketing/internal/kafka"
	"github.com/Domenick1991/airticketing/internal/repository"
	"github.com/Domenick1991/airticketing/internal/service/airports"
	"github.com/Domenick1991/airticketing/internal/service/flights"
	"github.com/Domenick1991/airticketing/internal/service/passengers"
	"github.com/Domenick1991/airticketing/internal/service/reservation"
	"github.com/Domenick1991/airticketing/internal/service/seatmap"
	"github.com/Domenick1991/airticketing/internal/service/tickets"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfgPath string
	flagSet := pflag.NewFlagSet("airticketing", pflag.ContinueOnError)
	flagSet.StringVarP(&cfgPath, "config", "c", "", "path to config file (default: $CONFIG_PATH or config.yaml)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)
	if len(cfg.Auth.Tokens) == 0 {
		logger.Warn("no API tokens configured, every /api/v1 request will be rejected", "env", config.TokensEnv)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.ApplySchema {
		if err := repository.ApplySchema(ctx, pool); err != nil {
			return err
		}
	}

	isoLevel, err := repository.ParseIsoLevel(cfg.Database.Isolation)
	if err != nil {
		return err
	}
	ledger := repository.NewLedger(pool,
		repository.WithIsoLevel(isoLevel),
		repository.WithAttempts(cfg.Database.TxAttempts),
		repository.WithTxTimeout(cfg.Database.TxTimeout()),
		repository.WithLedgerLogger(logger),
	)

	redisCache := cache.NewRedisCache(cfg.Redis)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		// Events are best effort; reservations keep working without a broker.
		logger.Warn("kafka unavailable", "error", err)
	}

	flightRepo := repository.NewFlightRepository(pool)
	aircraftRepo := repository.NewAircraftRepository(pool)
	airportRepo := repository.NewAirportRepository(pool)
	passengerRepo := repository.NewPassengerRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	issuer := tickets.NewIssuer(ledger, ticketRepo, reservationRepo, logger,
		tickets.WithCodeAttempts(cfg.Ticket.CodeAttempts),
		tickets.WithEvents(producer, cfg.Kafka.EventsTopic),
	)

	services := api.Services{
		SeatMap:    seatmap.NewSeatMapService(aircraftRepo, flightRepo, reservationRepo, redisCache, cfg.SeatMap.FirstClassRows, logger),
		Airports:   airports.NewAirportService(airportRepo, logger),
		Flights:    flights.NewFlightService(flightRepo, aircraftRepo, airportRepo, redisCache, logger),
		Passengers: passengers.NewPassengerService(passengerRepo, logger),
		Reservations: reservation.NewReservationService(ledger, reservationRepo, issuer, producer, cfg.Kafka.EventsTopic, logger,
			reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		),
		Tickets: issuer,
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(services, api.NewTokenAuth(cfg.Auth.Tokens), logger)

	return bootstrap.Run(ctx, cfg, router, logger)
}
