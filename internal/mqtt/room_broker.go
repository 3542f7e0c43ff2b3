package mqtt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqttc "loadmap/common/mqtt"
	"loadmap/internal/domain"
	"loadmap/internal/service"

	"go.uber.org/zap"
)

// RoomCreator stores extracted rooms for a plan.
type RoomCreator interface {
	CreateRooms(ctx context.Context, planID string, rooms []service.NewRoom) ([]domain.Room, error)
}

// Subscriber the part of the MQTT client the broker needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqttc.MessageHandler) error
}

// RoomMessage payload published by external label extractors:
//
//	{"plan_id": "level-1", "rooms": [{"raw_label": "BED", "confidence": 0.97}]}
type RoomMessage struct {
	PlanID string            `json:"plan_id"`
	Rooms  []service.NewRoom `json:"rooms"`
}

// RoomIngestBroker feeds room records arriving over MQTT into the room store.
type RoomIngestBroker struct {
	rooms   RoomCreator
	timeout time.Duration
	logger  *zap.Logger
}

func NewRoomIngestBroker(rooms RoomCreator, logger *zap.Logger) *RoomIngestBroker {
	return &RoomIngestBroker{rooms: rooms, timeout: 10 * time.Second, logger: logger}
}

// Start subscribes the broker to topic.
func (b *RoomIngestBroker) Start(sub Subscriber, topic string, qos byte) error {
	if err := sub.Subscribe(topic, qos, b.HandleMessage); err != nil {
		return err
	}
	b.logger.Info("Room ingest subscribed", zap.String("topic", topic))
	return nil
}

// HandleMessage decodes one RoomMessage and stores its rooms.
func (b *RoomIngestBroker) HandleMessage(topic string, payload []byte) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var msg RoomMessage
	if err := dec.Decode(&msg); err != nil {
		return fmt.Errorf("failed to unmarshal room message: %w", err)
	}
	if strings.TrimSpace(msg.PlanID) == "" {
		return fmt.Errorf("room message on %s has no plan_id", topic)
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	created, err := b.rooms.CreateRooms(ctx, msg.PlanID, msg.Rooms)
	if err != nil {
		return fmt.Errorf("failed to store rooms for plan %s: %w", msg.PlanID, err)
	}
	b.logger.Info("Rooms ingested",
		zap.String("topic", topic),
		zap.String("plan_id", msg.PlanID),
		zap.Int("count", len(created)),
	)
	return nil
}
