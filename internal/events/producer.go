package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventSesionIniciada    = "sesion.iniciada"
	EventUsuarioCreado     = "usuario.creado"
	EventEmpresaCreada     = "empresa.creada"
	EventPasswordReseteado = "password.reseteado"
)

// Producer publishes auth events. A nil Producer is a no-op so the
// server runs fine without a broker configured.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

type envelope struct {
	Event    string    `json:"event"`
	TenantID string    `json:"tenant_id,omitempty"`
	At       time.Time `json:"at"`
	Payload  any       `json:"payload,omitempty"`
}

func (p *Producer) PublishEvent(ctx context.Context, event, key, tenantID string, payload any) error {
	if p == nil || p.writer == nil {
		return nil
	}

	data, err := json.Marshal(envelope{
		Event:    event,
		TenantID: tenantID,
		At:       time.Now().UTC(),
		Payload:  payload,
	})
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	})
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
