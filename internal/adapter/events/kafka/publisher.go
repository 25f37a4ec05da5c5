package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type dialFunc func(ctx context.Context, address string) (io.Closer, error)

// Publisher emits one AccountSnapshotted event per account, keyed by client
// id so all snapshots of a client land on the same partition.
type Publisher struct {
	writer  messageWriter
	brokers []string
	dial    dialFunc
	now     func() time.Time
}

// NewPublisher creates a Publisher writing to topic on the given brokers.
// Writes wait for acknowledgement from all in-sync replicas.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		brokers: brokers,
		dial:    dialBroker,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func dialBroker(ctx context.Context, address string) (io.Closer, error) {
	conn, err := kafka.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Name identifies the sink in logs.
func (p *Publisher) Name() string { return "kafka" }

// Publish writes all events in a single batch.
func (p *Publisher) Publish(ctx context.Context, run domain.RunInfo, snapshots []domain.AccountSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	at := p.now()
	msgs := make([]kafka.Message, 0, len(snapshots))
	for _, snap := range snapshots {
		data, err := json.Marshal(domain.NewAccountSnapshotted(run, snap, at))
		if err != nil {
			return fmt.Errorf("marshal snapshot for client %d: %w", snap.Client, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatUint(uint64(snap.Client), 10)),
			Value: data,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Ping succeeds once any broker accepts a connection.
func (p *Publisher) Ping(ctx context.Context) error {
	var errs []error
	for _, broker := range p.brokers {
		conn, err := p.dial(ctx, broker)
		if err != nil {
			errs = append(errs, fmt.Errorf("dial %s: %w", broker, err))
			continue
		}
		return conn.Close()
	}
	if len(errs) == 0 {
		return errors.New("no kafka brokers configured")
	}
	return errors.Join(errs...)
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ ports.Exporter = (*Publisher)(nil)
