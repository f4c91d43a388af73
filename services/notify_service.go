package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Notification is the message published when an allotment is created or
// changes status. Contact fields are best-effort snapshots for template
// rendering downstream.
type Notification struct {
	Event          string    `json:"event"`
	ReferenceCode  string    `json:"referenceCode"`
	HotelID        uint      `json:"hotelId"`
	HotelContact   string    `json:"hotelContact,omitempty"`
	RoomID         uint      `json:"roomId"`
	OccupantID     string    `json:"occupantId"`
	OccupantName   string    `json:"occupantName,omitempty"`
	OccupantPhone  string    `json:"occupantContact,omitempty"`
	Occupancy      int       `json:"occupancy"`
	CheckInDate    time.Time `json:"checkInDate"`
	CheckOutDate   time.Time `json:"checkOutDate"`
	Status         string    `json:"status"`
	DispatchedAtMs int64     `json:"dispatchedAtMs"`
}

// Notifier delivers notifications best-effort. Implementations must never
// block the caller's request cycle and must swallow delivery failures.
type Notifier interface {
	Dispatch(n Notification)
	Close() error
}

// KafkaNotifier publishes notifications to a Kafka topic. Messages are keyed
// by reference code so one allotment's lifecycle stays ordered within a
// partition; across allotments there is no ordering guarantee.
type KafkaNotifier struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaNotifier(brokers []string, topic string, logger *zap.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Warn("kafka writer error", zap.String("detail", fmt.Sprintf(msg, args...)))
		}),
	}
	return &KafkaNotifier{writer: writer, logger: logger}
}

func (n *KafkaNotifier) Dispatch(note Notification) {
	note.DispatchedAtMs = time.Now().UnixMilli()
	payload, err := json.Marshal(note)
	if err != nil {
		n.logger.Warn("failed to marshal notification", zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		err := n.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(note.ReferenceCode),
			Value: payload,
			Time:  time.Now(),
		})
		if err != nil {
			n.logger.Warn("notification publish failed",
				zap.String("event", note.Event),
				zap.String("reference_code", note.ReferenceCode),
				zap.Error(err),
			)
		}
	}()
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// Notification event names for allotment lifecycle messages.
const (
	NotifyAllotmentCreated = "allotment.created"
	NotifyAllotmentStatus  = "allotment.status-changed"
	NotifyAllotmentUpdated = "allotment.updated"
)
