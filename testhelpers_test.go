//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/whopgrid/service-catalog/internal/application"
	"github.com/whopgrid/service-catalog/internal/consumer"
	catalogEvents "github.com/whopgrid/service-catalog/internal/events"
	"github.com/whopgrid/service-catalog/internal/kafka"
	"github.com/whopgrid/service-catalog/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// catalogStack holds wired-up catalog service components.
type catalogStack struct {
	Publication *application.PublicationService
	Tracking    *application.TrackingService
	Stats       *application.StatsService
	Reviews     *application.ReviewService
	Consumer    *consumer.ClientEventConsumer
	Cleanup     func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_catalog",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_catalog sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.WhopModel{},
		&repository.PromoCodeModel{},
		&repository.TrackingEventModel{},
		&repository.ReviewModel{},
		&repository.SiteSettingsModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, catalogEvents.TopicCatalogEvents, catalogEvents.TopicTrackingEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupCatalogStack wires up the full catalog service stack.
func setupCatalogStack(t *testing.T, db *gorm.DB, brokers []string) *catalogStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	whopRepo := repository.NewGormWhopRepository(db)
	promoRepo := repository.NewGormPromoRepository(db)
	trackingRepo := repository.NewGormTrackingRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)
	producer := kafka.NewProducer(brokers, logger)

	trackingSvc := application.NewTrackingService(trackingRepo, whopRepo, promoRepo, producer, logger)
	statsSvc := application.NewStatsService(trackingRepo, whopRepo, promoRepo, logger)
	publicationSvc := application.NewPublicationService(whopRepo, producer, logger)
	reviewSvc := application.NewReviewService(reviewRepo, whopRepo, logger)

	groupID := fmt.Sprintf("test-catalog-%s", uuid.New().String()[:8])
	clientConsumer := consumer.NewClientEventConsumer(brokers, groupID, trackingSvc, logger)

	return &catalogStack{
		Publication: publicationSvc,
		Tracking:    trackingSvc,
		Stats:       statsSvc,
		Reviews:     reviewSvc,
		Consumer:    clientConsumer,
		Cleanup:     func() { _ = producer.Close() },
	}
}

// seedWhop inserts a whop row with a controlled creation time.
func seedWhop(t *testing.T, db *gorm.DB, name, slug string, createdAt time.Time, publishedAt *time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	model := repository.WhopModel{
		ID:        id,
		Name:      name,
		Slug:      slug,
		CreatedAt: createdAt,
		PublishedAt: publishedAt,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed whop")
	return id
}

// seedWhopBacklog inserts n unpublished whops with strictly increasing
// creation times and returns their ids oldest-first.
func seedWhopBacklog(t *testing.T, db *gorm.DB, n int) []uuid.UUID {
	t.Helper()
	base := time.Now().UTC().Add(-48 * time.Hour)
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		id := seedWhop(t, db,
			fmt.Sprintf("Whop %04d", i),
			fmt.Sprintf("whop-%04d", i),
			base.Add(time.Duration(i)*time.Second), nil)
		ids = append(ids, id)
	}
	return ids
}

// publishedSlugs returns the slugs of currently published whops, ordered by
// creation time.
func publishedSlugs(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var slugs []string
	require.NoError(t, db.Model(&repository.WhopModel{}).
		Where("published_at IS NOT NULL").
		Order("created_at ASC").
		Pluck("slug", &slugs).Error)
	return slugs
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForTrackingRow polls the ledger until a row for the whop appears.
func waitForTrackingRow(t *testing.T, db *gorm.DB, whopID uuid.UUID, timeout time.Duration) repository.TrackingEventModel {
	t.Helper()
	var result repository.TrackingEventModel
	require.Eventually(t, func() bool {
		err := db.Where("whop_id = ?", whopID).First(&result).Error
		return err == nil
	}, timeout, 200*time.Millisecond, "tracking event for whop %s never appeared", whopID)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
