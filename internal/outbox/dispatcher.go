// Package outbox buffers exercise events and delivers them to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/events"
)

// ErrQueueFull is returned by Publish when the buffer cannot take another event.
var ErrQueueFull = errors.New("outbox queue full")

const drainTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Config tunes batching.
type Config struct {
	Topic         string
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int
}

// Dispatcher queues ExerciseLogged events in memory and writes them to Kafka in batches.
type Dispatcher struct {
	producer         messageWriter
	topic            string
	batchSize        int
	flushInterval    time.Duration
	queue            chan events.ExerciseLogged
	log              logrus.FieldLogger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(producer messageWriter, cfg Config, log logrus.FieldLogger) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.BatchSize
	}
	return &Dispatcher{
		producer:         producer,
		topic:            cfg.Topic,
		batchSize:        cfg.BatchSize,
		flushInterval:    cfg.FlushInterval,
		queue:            make(chan events.ExerciseLogged, cfg.QueueSize),
		log:              log.WithField("component", "outbox"),
		shutdownComplete: make(chan struct{}),
	}
}

// Publish enqueues the event without blocking.
func (d *Dispatcher) Publish(_ context.Context, event events.ExerciseLogged) error {
	select {
	case d.queue <- event:
		return nil
	default:
		droppedCounter.Inc()
		return ErrQueueFull
	}
}

// Start runs the delivery loop until ctx is cancelled, then flushes what is
// still queued. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.flushInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	batch := make([]events.ExerciseLogged, 0, d.batchSize)
	for {
		select {
		case <-ctx.Done():
			d.drain(batch)
			return
		case event := <-d.queue:
			batch = append(batch, event)
			if len(batch) >= d.batchSize {
				d.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				d.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

// Wait waits until dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) drain(batch []events.ExerciseLogged) {
loop:
	for {
		select {
		case event := <-d.queue:
			batch = append(batch, event)
		default:
			break loop
		}
	}
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	d.flush(ctx, batch)
}

func (d *Dispatcher) flush(ctx context.Context, batch []events.ExerciseLogged) {
	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	messages := make([]kafka.Message, 0, len(batch))
	for _, event := range batch {
		msg, err := encode(event)
		if err != nil {
			d.log.WithError(err).WithField("exercise_id", event.ExerciseID).Error("encode event")
			failedCounter.Inc()
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return
	}

	if err := d.producer.WriteMessages(ctx, d.topic, messages...); err != nil {
		d.log.WithError(err).WithField("count", len(messages)).Error("delivery failure")
		failedCounter.Add(float64(len(messages)))
		return
	}
	deliveredCounter.Add(float64(len(messages)))
}

func encode(event events.ExerciseLogged) (kafka.Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.UserID),
		Value: body,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(events.ExerciseLoggedType)},
			{Key: "user_id", Value: []byte(event.UserID)},
		},
	}, nil
}
