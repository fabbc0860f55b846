package client

import (
	"context"
	"time"

	"darassa/pkg/kafka"
	kafka_config "darassa/pkg/kafka/config"
	kafka_middleware "darassa/pkg/kafka/middleware"
	"darassa/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

// Client owns the process-wide connections. It is built once in main, handed
// to the components that need it, and closed on shutdown.
type Client struct {
	Mongo    *mongo.Client
	Producer *kafka.Producer

	log *logger.Logger
}

func NewClient(log *logger.Logger) *Client {
	return &Client{log: log}
}

func (c *Client) SetMongo(mongoURI string, connTimeout time.Duration) {
	client, err := ConnectMongo(mongoURI, connTimeout)
	if err != nil {
		c.log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	c.log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

func (c *Client) SetKafka(cfg *kafka_config.Config, topic, dlqTopic string) {
	producer, err := kafka.NewProducer(cfg, topic, dlqTopic)
	if err != nil {
		c.log.Fatal("Failed to create Kafka producer", "error", err, "topic", topic)
	}
	if cfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(c.log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}
	c.log.Info("Kafka producer ready", "brokers", cfg.Brokers, "topic", topic, "dlq_topic", dlqTopic)
	c.Producer = producer
}

func (c *Client) GracefulShutdown(ctx context.Context) {
	if c.Producer != nil {
		stats := kafka_middleware.GetMetrics()
		c.log.Info("Closing Kafka producer",
			"published", stats.Published(),
			"failed", stats.PublishFailed(),
			"avg_publish_duration", stats.GetAvgPublishDuration(),
		)
		if err := c.Producer.Close(); err != nil {
			c.log.Error("Failed to close Kafka producer", "error", err)
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			c.log.Error("Failed to disconnect from MongoDB", "error", err)
			return
		}
		c.log.Info("Disconnected from MongoDB")
	}
}
