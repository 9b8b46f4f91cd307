// Package kafka exporta los eventos de dominio a un tópico de Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	"github.com/segmentio/kafka-go"
)

// MessageWriter lo cumple *kafka.Writer; permite sustituirlo en pruebas.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher serializa cada evento como JSON con la clave de particionado del evento,
// de modo que los eventos de un mismo pedido conservan su orden.
type Publisher struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewWriter construye el writer de kafka-go para el tópico.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// NewPublisher envuelve un writer. timeout acota cada envío para no bloquear al llamador.
func NewPublisher(writer MessageWriter, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{writer: writer, timeout: timeout}
}

// Handle es un events.Handler: publica el evento en el tópico.
func (p *Publisher) Handle(ctx context.Context, evt event.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", evt.ID, err)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	msg := kafka.Message{
		Key:   []byte(evt.Key()),
		Value: data,
		Time:  evt.OccurredAt.UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publicar evento %s en kafka: %w", evt.Type, err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
