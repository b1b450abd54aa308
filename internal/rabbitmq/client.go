package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client is a thin RabbitMQ wrapper used for operational fallback alerts.
// When the gateway books a shipment on a synthetic AWB, the audit logger
// pushes a message onto the alert queue so operations can chase the carrier.
type Client struct {
	// conn is the tcp connection to the rabbitmq server
	conn *amqp.Connection
	chn  *amqp.Channel
}

func NewClient(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	// Open a channel, a logical session inside the connection.
	chn, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %v", err)
	}
	return &Client{conn: conn, chn: chn}, nil
}

// Close cleans up the channel and connection.
func (c *Client) Close() error {
	if err := c.chn.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}

// CreateQueue prepares a durable queue to hold messages.
func (c *Client) CreateQueue(queueName string) error {
	_, err := c.chn.QueueDeclare(
		queueName, // name of queue
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	return err
}

// Publish sends a message to a specific queue.
func (c *Client) Publish(ctx context.Context, queueName string, body []byte) error {
	return c.chn.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key (queue name)
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
