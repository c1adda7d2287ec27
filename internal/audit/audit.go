// Package audit defines the write-only audit sink injected into the engine.
// The engine never owns audit storage; it hands events to whatever sink it
// was constructed with.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"ms-pos/internal/logger"
)

type Logger interface {
	Log(level, action string, details map[string]any)
}

type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
}

// Publisher is satisfied by the kafka producer.
type Publisher interface {
	Publish(topic, key string, value []byte) error
}

// KafkaSink streams audit events to a Kafka topic, falling back to the local
// logger when the broker is unreachable. Audit is fire-and-forget: a failed
// publish never fails the operation that produced it.
type KafkaSink struct {
	producer Publisher
	topic    string
	fallback *logger.Logger
}

func NewKafkaSink(producer Publisher, topic string, log *logger.Logger) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, fallback: log}
}

func (s *KafkaSink) Log(level, action string, details map[string]any) {
	event := Event{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Action:    action,
		Details:   details,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.warn(level, action, fmt.Sprintf("marshal failed: %v", err))
		return
	}

	if err := s.producer.Publish(s.topic, action, payload); err != nil {
		s.warn(level, action, string(payload))
	}
}

func (s *KafkaSink) warn(level, action, message string) {
	if s.fallback != nil {
		s.fallback.Warn("AUDIT", fmt.Sprintf("[%s] %s - %s", level, action, message))
	}
}

// LogSink writes audit events through the structured logger only. Used when
// Kafka is disabled.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Log(level, action string, details map[string]any) {
	payload, _ := json.Marshal(details)
	s.log.Info("AUDIT", fmt.Sprintf("[%s] %s %s", level, action, string(payload)))
}

// Nop discards audit events; used in tests.
type Nop struct{}

func (Nop) Log(level, action string, details map[string]any) {}
