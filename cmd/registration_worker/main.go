package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/saasbase-io/accounts/config"
	"github.com/saasbase-io/accounts/internal/application"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
	pginfra "github.com/saasbase-io/accounts/internal/infrastructure/postgres"
	"github.com/saasbase-io/accounts/pkg/helpers"
)

// registrationEvent is published by the identity service when a user signs up.
type registrationEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func main() {
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-registration-worker", cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	esClient, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("failed to init elasticsearch client: %v", err)
	}

	lifecycle := application.NewLifecycleService(pginfra.NewAccountRepository(pool), logger, esClient, cfg.ESAccountsIndex)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQRegistrationQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQRegistrationQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ev registrationEvent
			if err := json.Unmarshal(msg.Body, &ev); err != nil || ev.UserID == "" {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}

			c, cancel := context.WithTimeout(ctx, 10*time.Second)
			_, err := lifecycle.OnUserRegistered(c, ev.UserID, ev.Email)
			cancel()
			if err != nil {
				// a replayed event is already handled; ack and move on
				if errors.Is(err, repo.ErrDuplicateAccount) {
					_ = msg.Ack(false)
					continue
				}
				log.Printf("personal account create failed for %s: %v", ev.UserID, err)
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("registration worker listening on queue=%s", cfg.RabbitMQRegistrationQueue)
	<-stop
	log.Printf("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
