package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbroker/config"
	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/email"
	"github.com/Domenick1991/flightbroker/internal/kafka"
	"github.com/Domenick1991/flightbroker/internal/logger"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// The worker drains the notifications topic and mails each ticket. The
// consumer logs and skips a message that cannot be decoded or sent.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic,
		kafka.WithSkipOnError(), kafka.WithLogger(log))
	defer consumer.Close()

	sender := email.NewSender(cfg.SMTP, log)

	log.WithField("topic", cfg.Kafka.NotificationsTopic).Info("notification worker started")
	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var notice domain.TicketNotice
		if err := json.Unmarshal(msg.Value, &notice); err != nil {
			return fmt.Errorf("decode ticket notice: %w", err)
		}
		if err := sender.SendTicket(ctx, notice); err != nil {
			return fmt.Errorf("send ticket email for %s: %w", notice.PNR, err)
		}
		log.WithFields(logrus.Fields{"offset": msg.Offset, "pnr": notice.PNR}).Info("ticket email sent")
		return nil
	})
	if err != nil {
		log.WithError(err).Fatal("consumer stopped")
	}
	log.Info("notification worker stopped")
}
