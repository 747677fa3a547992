package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/vogiaan1904/ticketbottle-checkin/config"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/auth"
	httpDelivery "github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/http"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka/consumer"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/infra/redis"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/mailer"
	repo "github.com/vogiaan1904/ticketbottle-checkin/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/service"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/ticket"
	pkgKafka "github.com/vogiaan1904/ticketbottle-checkin/pkg/kafka"
	pkgLog "github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	redisCli, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer redis.Disconnect(redisCli)

	ticketRepo := repo.NewRedisTicketRepository(redisCli, l)
	eventRepo := repo.NewRedisEventRepository(redisCli, l)
	historyRepo := repo.NewRedisHistoryRepository(redisCli, cfg.Ticket.HistorySize, l)

	var (
		prod       producer.Producer
		kConsGrCli sarama.ConsumerGroup
	)
	if cfg.Kafka.Enabled {
		kSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RetryMax:     cfg.Kafka.ProducerRetryMax,
			RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}

		prod = producer.NewProducer(kSyncProd, l)
		defer prod.Close()

		kConsGrCli, err = pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroupID,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
		}
	}

	var m mailer.Mailer
	if cfg.Mailer.Enabled {
		m = mailer.NewEmailJSMailer(cfg.Mailer, l)
	}

	issuer := ticket.NewIssuer(cfg.Ticket.IDPrefix)
	tm := auth.NewTokenManager(cfg.JWT)

	regSvc := service.NewRegistrationService(issuer, ticketRepo, eventRepo, m, prod, l)
	checkSvc := service.NewCheckInService(ticketRepo, eventRepo, historyRepo, m, prod, l)

	if kConsGrCli != nil {
		cons := consumer.NewConsumer(kConsGrCli, regSvc, l)
		if err := cons.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start Kafka consumer: %v", err)
		}
		defer cons.Close()
	}

	h := httpDelivery.NewHTTPHandler(checkSvc, regSvc, l)
	router := httpDelivery.NewRouter(h, tm, l)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatalf(ctx, "Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info(ctx, "Server shutting down...")

	// Stop the consume loop now so the deferred consumer Close can
	// finish; the deferred cancel would run too late.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Errorf(ctx, "HTTP server shutdown: %v", err)
	}

	l.Info(ctx, "Server stopped.")
}
