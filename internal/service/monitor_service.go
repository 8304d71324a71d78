package service

import (
	"context"
	"encoding/json"
	"log"

	"voice-agent-be/internal/dto"
	"voice-agent-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IMonitorService interface {
	Consume(ctx context.Context) error
}

type monitorService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
}

func NewMonitorService(pubSub *gochannel.GoChannel, topicName string, hub *websocket.Hub) IMonitorService {
	return &monitorService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
	}
}

// Consume subscribes to completed exchanges and relays them to every
// connected websocket client.
func (ms *monitorService) Consume(ctx context.Context) error {
	messages, err := ms.pubSub.Subscribe(ctx, ms.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ms.processMessage(msg)
		}
	}()

	return nil
}

func (ms *monitorService) processMessage(msg *message.Message) {
	var payload dto.ExchangeCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal exchange message: %v. Acking to discard.", err)
		msg.Ack()
		return
	}

	frame, err := json.Marshal(map[string]interface{}{
		"type": "exchange_completed",
		"data": payload,
	})
	if err != nil {
		log.Printf("[ERROR] Failed to marshal broadcast frame for session %s: %v", payload.SessionID, err)
		msg.Ack()
		return
	}

	ms.hub.Broadcast(frame)
	log.Printf("[INFO] Broadcast exchange for session %s (%d messages, %dms)", payload.SessionID, payload.TotalMessages, payload.DurationMs)
	msg.Ack()
}
