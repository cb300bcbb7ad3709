package main

import (
	adminhandler "vaxbook/internal/admin/handler"
	adminservice "vaxbook/internal/admin/service"
	"vaxbook/internal/events"
	slotshandler "vaxbook/internal/slots/handler"
	slotsmetrics "vaxbook/internal/slots/metrics"
	slotsrepository "vaxbook/internal/slots/repository"
	slotsservice "vaxbook/internal/slots/service"
	slotsvalidator "vaxbook/internal/slots/validator"
	usershandler "vaxbook/internal/users/handler"
	usersrepository "vaxbook/internal/users/repository"
	usersservice "vaxbook/internal/users/service"
	usersvalidator "vaxbook/internal/users/validator"
	"vaxbook/pkg/app"
	"vaxbook/pkg/config"
	mongodb "vaxbook/pkg/db/mongo"
	"vaxbook/pkg/kafka"
	kafka_config "vaxbook/pkg/kafka/config"
	kafkamiddleware "vaxbook/pkg/kafka/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const ServiceName = "vaxbook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting vaccination booking service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	serverApp := app.NewApplication(cfg)
	publisher := initPublisher(cfg, registry, serverApp)

	userRepo := usersrepository.NewMongoUserRepository(cfg)
	slotRepo := slotsrepository.NewMongoSlotRepository(cfg)
	tx := mongodb.NewTransactionManager(cfg.Client.Mongo.Client, cfg.MongoTransactions)

	userService := usersservice.NewUserService(
		userRepo,
		usersvalidator.NewUserValidator(cfg.Log, cfg.PhoneRegion),
		publisher,
		cfg,
	)
	slotService := slotsservice.NewSlotService(
		slotRepo,
		userRepo,
		tx,
		slotsvalidator.NewSlotValidator(cfg.Log),
		publisher,
		slotsmetrics.New(registry),
		cfg,
	)
	adminService := adminservice.NewAdminService(userRepo, slotRepo, cfg)

	cfg.Log.Info("Services initialized",
		"database", cfg.MongoDatabaseName,
		"transactions", cfg.MongoTransactions,
	)

	serverApp.SetApp(cfg.Client.Mongo.Client, registry,
		usershandler.NewUserHandler(userService, cfg.Log),
		slotshandler.NewSlotHandler(slotService, cfg.Log),
		adminhandler.NewAdminHandler(adminService, slotService, cfg.Location, cfg.Log),
	)
	serverApp.Run()
}

// initPublisher returns a Kafka-backed publisher when Kafka is enabled and a
// no-op one otherwise. The producer is closed on shutdown.
func initPublisher(cfg *config.Config, registry prometheus.Registerer, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NewNoopPublisher(cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.KafkaBookingsDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkamiddleware.MetricsProducerMiddleware(kafkamiddleware.NewMetrics(registry)))
	}
	serverApp.OnShutdown("kafka-producer", producer)

	cfg.Log.Info("Kafka publisher initialized", "topic", producer.Topic())
	return events.NewKafkaPublisher(producer, ServiceName)
}
