package messaging

import (
	"context"
	"fmt"
	"net"
	"time"

	"lms/internal/models"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/jetstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	natsJs "github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const consumerPrefix = "lms__"

func connectNATS(config *models.JetStreamEventsConfig) *nats.Conn {
	nc, err := nats.Connect(net.JoinHostPort(config.Host, config.Port))
	if err != nil {
		zap.L().Fatal("Failed to connect to NATS", zap.Error(err))
	}
	return nc
}

type JetStreamPublisher struct {
	topicName string
	publisher *jetstream.Publisher
}

func NewJetStreamPublisher(config *models.JetStreamEventsConfig, topicName string) IPublisher {
	publisher, err := jetstream.NewPublisher(jetstream.PublisherConfig{
		Conn: connectNATS(config),
	})
	if err != nil {
		zap.L().Fatal("Failed to create JetStream publisher", zap.Error(err))
	}

	return &JetStreamPublisher{topicName: topicName, publisher: publisher}
}

func (p *JetStreamPublisher) Publish(messages ...*message.Message) error {
	return p.publisher.Publish(p.topicName, messages...)
}

func (p *JetStreamPublisher) Close() error {
	return p.publisher.Close()
}

type JetStreamSubscriber struct {
	topicName  string
	subscriber *jetstream.Subscriber
}

// NewJetStreamSubscriber provisions a work-queue stream and a durable
// consumer for the topic, then attaches a watermill subscriber to it. Stream
// and consumer creation are idempotent across instances.
func NewJetStreamSubscriber(config *models.JetStreamEventsConfig, topicName string) ISubscriber {
	nc := connectNATS(config)

	js, err := natsJs.New(nc)
	if err != nil {
		zap.L().Fatal("Failed to create JetStream context", zap.Error(err))
	}

	ctx := context.Background()
	stream, err := js.CreateStream(ctx, natsJs.StreamConfig{
		Name:      topicName,
		Subjects:  []string{topicName},
		Retention: natsJs.WorkQueuePolicy,
	})
	if err != nil {
		zap.L().Fatal("Failed to create stream",
			zap.String("stream", topicName), zap.Error(err))
	}

	consumerName := fmt.Sprintf("%s%s", consumerPrefix, topicName)
	if _, err = stream.CreateOrUpdateConsumer(ctx, natsJs.ConsumerConfig{
		Name:      consumerName,
		AckPolicy: natsJs.AckExplicitPolicy,
	}); err != nil {
		zap.L().Fatal("Failed to create consumer",
			zap.String("consumer", consumerName), zap.Error(err))
	}

	var configurator jetstream.ConsumerConfigurator
	subscriber, err := jetstream.NewSubscriber(jetstream.SubscriberConfig{
		Conn:                nc,
		AckWaitTimeout:      30 * time.Second,
		ResourceInitializer: jetstream.ExistingConsumer(configurator, ""),
		Logger:              watermill.NopLogger{},
	})
	if err != nil {
		zap.L().Fatal("Failed to create JetStream subscriber", zap.Error(err))
	}

	return &JetStreamSubscriber{topicName: topicName, subscriber: subscriber}
}

func (s *JetStreamSubscriber) Subscribe() <-chan *message.Message {
	sub, err := s.subscriber.Subscribe(context.Background(), s.topicName)
	if err != nil {
		zap.L().Fatal("Failed to subscribe to topic",
			zap.String("topic", s.topicName), zap.Error(err))
	}
	return sub
}

func (s *JetStreamSubscriber) Close() error {
	return s.subscriber.Close()
}
