package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/config"
	"store-monitor/internal/domain/report"
	"store-monitor/internal/logger"
)

const publishTimeout = 3 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits one message per report status change, keyed by
// report id so a report's events stay ordered within a partition.
type KafkaPublisher struct {
	w      messageWriter
	topic  string
	logger *logrus.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, l *logrus.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{w: w, topic: cfg.Topic, logger: logger.OrDefault(l)}
}

type statusMessage struct {
	Type       string     `json:"type"`
	Job        report.Job `json:"job"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func (p *KafkaPublisher) Notify(ctx context.Context, job report.Job) {
	if p == nil || p.w == nil {
		return
	}
	b, err := json.Marshal(statusMessage{Type: "report_status", Job: job, OccurredAt: time.Now().UTC()})
	if err != nil {
		p.logger.WithError(err).Warn("[Kafka] encode status event")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(job.ReportID.String()),
		Value: b,
		Headers: []kafka.Header{
			{Key: "status", Value: []byte(job.Status)},
		},
	})
	if err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"report_id": job.ReportID,
			"topic":     p.topic,
		}).Warn("[Kafka] publish status event failed")
	}
}

func (p *KafkaPublisher) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}
