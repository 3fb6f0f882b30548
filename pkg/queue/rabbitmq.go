package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hobbyhub/pkg/config"
	"hobbyhub/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	CommunityExchange  = "community"
	CommunityQueueName = "community_events"

	RoutingPostCreated  = "post_created"
	RoutingPostDeleted  = "post_deleted"
	RoutingCommentAdded = "comment_added"
)

var routingKeys = []string{RoutingPostCreated, RoutingPostDeleted, RoutingCommentAdded}

type Event struct {
	Type       string    `json:"type"`
	PostID     string    `json:"post_id"`
	CommentID  string    `json:"comment_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func URL(cfg *config.Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	conn, err := amqp.Dial(URL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		CommunityExchange, // name
		"direct",          // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		CommunityQueueName, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(CommunityQueueName, key, CommunityExchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue for %s: %w", key, err)
		}
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Publish sends event to the community exchange using event.Type as routing key.
func (c *Client) Publish(ctx context.Context, event Event) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}

	err = c.channel.PublishWithContext(ctx,
		CommunityExchange, // exchange
		event.Type,        // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish %s for post=%s: %v", event.Type, event.PostID, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published %s for post=%s", event.Type, event.PostID)
	return nil
}

// Encode validates the routing key and marshals the event payload.
func Encode(event Event) ([]byte, error) {
	known := false
	for _, key := range routingKeys {
		if event.Type == key {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return body, nil
}
