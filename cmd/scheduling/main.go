package main

import (
	"darassa/internal/scheduling/events"
	"darassa/internal/scheduling/handler"
	"darassa/internal/scheduling/repository"
	"darassa/internal/scheduling/service"
	"darassa/internal/scheduling/validator"
	"darassa/pkg/app"
	"darassa/pkg/client"
	"darassa/pkg/config"
	"darassa/pkg/contracts"
)

const ServiceName = "scheduling"

func main() {
	cfg := config.Load(ServiceName)

	c := client.NewClient(cfg.Log)
	c.SetMongo(cfg.MongoURI, cfg.MongoConnTimeout)
	if cfg.KafkaEnabled {
		c.SetKafka(cfg.Kafka, cfg.KafkaTopic, cfg.KafkaDLQTopic)
	}

	cfg.Log.Info("Starting Scheduling service")
	handlers := initHandlers(cfg, c)
	serverApp := app.NewApplication(cfg, c)
	serverApp.SetApp(handler.NewHealthHandler(c.Mongo, cfg.Log), handlers...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, c *client.Client) []contracts.Handler {
	itemValidator := validator.NewScheduledItemValidator(cfg.Log)
	itemRepo := repository.NewMongoScheduledItemRepository(c.Mongo, cfg)
	lockRepo := repository.NewMongoResourceLockRepository(c.Mongo, cfg)

	checker := service.NewAvailabilityChecker(itemRepo, itemValidator, cfg)
	calendarService := service.NewCalendarService(itemRepo, cfg)
	itemService := service.NewScheduledItemService(
		itemRepo,
		lockRepo,
		checker,
		itemValidator,
		initPublisher(cfg, c),
		cfg,
	)

	cfg.Log.Info("Scheduling service initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		handler.NewCalendarHandler(checker, calendarService, cfg.Log),
		handler.NewScheduledItemHandler(itemService, cfg.Log),
	}
}

func initPublisher(cfg *config.Config, c *client.Client) events.Publisher {
	if c.Producer == nil {
		cfg.Log.Info("Kafka disabled, scheduled item events are not published")
		return events.NewNopPublisher()
	}
	return events.NewKafkaPublisher(c.Producer, cfg.ServiceName)
}
