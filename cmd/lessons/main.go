package main

import (
	"os"

	"github.com/joho/godotenv"

	availabilityhandler "tutorly/internal/availability/handler"
	availabilityrepo "tutorly/internal/availability/repository"
	availabilityservice "tutorly/internal/availability/service"
	availabilityvalidator "tutorly/internal/availability/validator"
	lessonhandler "tutorly/internal/lessons/handler"
	lessonrepo "tutorly/internal/lessons/repository"
	lessonservice "tutorly/internal/lessons/service"
	lessonvalidator "tutorly/internal/lessons/validator"
	"tutorly/pkg/app"
	"tutorly/pkg/config"
	"tutorly/pkg/contracts"
	"tutorly/pkg/kafka"
	kafkaconfig "tutorly/pkg/kafka/config"
	"tutorly/pkg/lock"
)

const ServiceName = "lessons"

func main() {
	// Missing .env is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Lessons service")

	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	producer := initProducer(cfg)
	if producer != nil {
		defer producer.Close()
	}

	handlers := initHandlers(cfg, producer)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, producer *kafka.Producer) []contracts.Handler {
	slotRepo := availabilityrepo.NewMongoSlotRepository(cfg)
	lessonRepo := lessonrepo.NewMongoLessonRepository(cfg)

	locks := lock.NewRedisManager(cfg.Client.Redis, cfg.Log)

	tutorService := availabilityservice.NewTutorAvailabilityService(
		slotRepo,
		availabilityvalidator.NewSlotValidator(cfg.Log),
		cfg,
	)
	studentService := availabilityservice.NewStudentAvailabilityService(slotRepo, cfg)

	var publisher lessonservice.EventPublisher
	if producer != nil {
		publisher = producer
	}
	bookingService := lessonservice.NewLessonService(
		lessonRepo,
		slotRepo,
		lessonvalidator.NewLessonValidator(cfg.Log),
		locks,
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		availabilityhandler.NewSlotHandler(tutorService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(studentService, cfg.Log),
		lessonhandler.NewLessonHandler(bookingService, cfg.Log),
	}
}

// initProducer builds the booking event producer. Without configured
// brokers the service runs with events disabled rather than failing
// startup.
func initProducer(cfg *config.Config) *kafka.Producer {
	if os.Getenv(kafkaconfig.EnvKafkaBrokers) == "" {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return nil
	}

	producer, err := kafka.NewProducer(kafkaconfig.Load(), cfg.LessonEventsTopic)
	if err != nil {
		cfg.Log.Error("Failed to initialize Kafka producer, booking events disabled", "error", err)
		return nil
	}

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.LessonEventsTopic)
	return producer
}
