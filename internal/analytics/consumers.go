package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cactripplanner/shortlinks/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumerGroup subscribes both analytics topics and hands their events to store.
func NewConsumerGroup(subscriber message.Subscriber, store Store, logger *zap.Logger) *messaging.ConsumerGroup {
	group := messaging.NewConsumerGroup(subscriber, logger)

	group.Add(messaging.NewConsumer(subscriber, TopicShortLinkCreated, store.SaveShortLinkCreated, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicShortLinkResolved, store.SaveShortLinkResolved, logger))

	return group
}
