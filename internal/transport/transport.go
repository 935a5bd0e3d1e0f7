// Package transport implements collaborators.Publisher over concrete push channels.
package transport

import (
	"auction-engine/utils"
	"context"
)

// SubscriberChannel is the private channel of one subscriber
func SubscriberChannel(subscriberID string) string {
	return "user." + subscriberID + ".notifications"
}

// LogPublisher writes every payload to the application log. It is the
// default transport when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher { return &LogPublisher{} }

func (LogPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	utils.Info("notification published", map[string]any{
		"channel": topic,
		"payload": string(payload),
	})
	return nil
}

func (LogPublisher) SendToSubscriber(_ context.Context, subscriberID string, payload []byte) error {
	utils.Info("notification sent", map[string]any{
		"channel":       SubscriberChannel(subscriberID),
		"subscriber_id": subscriberID,
		"payload":       string(payload),
	})
	return nil
}
