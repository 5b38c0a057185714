package messaging

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// NewMemoryChannel returns the in-process broker backing single-instance
// deployments. Publisher and subscriber of a topic must share the instance.
func NewMemoryChannel() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		Persistent: true,
	}, watermill.NopLogger{})
}

type MemoryPublisher struct {
	channel   *gochannel.GoChannel
	topicName string
}

func NewMemoryPublisher(channel *gochannel.GoChannel, topicName string) IPublisher {
	return &MemoryPublisher{channel: channel, topicName: topicName}
}

func (p *MemoryPublisher) Publish(messages ...*message.Message) error {
	return p.channel.Publish(p.topicName, messages...)
}

func (p *MemoryPublisher) Close() error {
	return p.channel.Close()
}

type MemorySubscriber struct {
	channel   *gochannel.GoChannel
	topicName string
}

func NewMemorySubscriber(channel *gochannel.GoChannel, topicName string) ISubscriber {
	return &MemorySubscriber{channel: channel, topicName: topicName}
}

func (s *MemorySubscriber) Subscribe() <-chan *message.Message {
	messages, err := s.channel.Subscribe(context.Background(), s.topicName)
	if err != nil {
		zap.L().Error("Failed to subscribe to memory topic",
			zap.String("topic", s.topicName), zap.Error(err))
		return nil
	}
	return messages
}

// Close is shared with the publisher side; gochannel tolerates the double
// close.
func (s *MemorySubscriber) Close() error {
	return s.channel.Close()
}
