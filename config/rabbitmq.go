package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Low-stock notifications fan out on this exchange; any interested consumer
// (purchasing dashboard, pager bridge) binds its own queue.
const NotificationsExchange = "cafepos.notifications"

type AmqpClient struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

var amqpClient *AmqpClient

func GetAmqp() *AmqpClient {
	return amqpClient
}

// ConnectAmqp dials RabbitMQ when AMQP_URL is set. AMQP is an optional
// notification transport; without it low-stock events are only logged.
func ConnectAmqp() {
	url := strings.TrimSpace(os.Getenv("AMQP_URL"))
	if url == "" {
		log.Printf("AMQP_URL not set; low-stock notifications will be log-only")
		return
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("failed to connect rabbitmq: %v; low-stock notifications will be log-only", err)
		return
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		log.Printf("failed to open rabbitmq channel: %v", err)
		return
	}
	if err := ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		log.Printf("failed to declare notifications exchange: %v", err)
		return
	}
	amqpClient = &AmqpClient{conn: conn, ch: ch}
	log.Printf("connected to rabbitmq")
}

func (c *AmqpClient) PublishPersistent(ctx context.Context, key string, body []byte) error {
	return c.ch.PublishWithContext(ctx, NotificationsExchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
}

func (c *AmqpClient) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
