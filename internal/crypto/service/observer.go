package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/credvault/internal/metrics"
)

// NoOpObserver ignores every event.
type NoOpObserver struct{}

// BeforeEncrypt does nothing.
func (NoOpObserver) BeforeEncrypt(field, plaintext string) {}

// AfterDecrypt does nothing.
func (NoOpObserver) AfterDecrypt(field, plaintext string) {}

// KeyRotated does nothing.
func (NoOpObserver) KeyRotated(at time.Time) {}

// Observers fans every event out to each observer in order.
type Observers []Observer

// BeforeEncrypt notifies every observer.
func (o Observers) BeforeEncrypt(field, plaintext string) {
	for _, observer := range o {
		observer.BeforeEncrypt(field, plaintext)
	}
}

// AfterDecrypt notifies every observer.
func (o Observers) AfterDecrypt(field, plaintext string) {
	for _, observer := range o {
		observer.AfterDecrypt(field, plaintext)
	}
}

// KeyRotated notifies every observer.
func (o Observers) KeyRotated(at time.Time) {
	for _, observer := range o {
		observer.KeyRotated(at)
	}
}

// LogObserver writes audit events to a structured logger. Only the field name and
// the value length are logged.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// BeforeEncrypt logs the field about to be encrypted.
func (l *LogObserver) BeforeEncrypt(field, plaintext string) {
	l.logger.Debug("before encrypt",
		slog.String("field", field),
		slog.Int("length", len(plaintext)),
	)
}

// AfterDecrypt logs the field that was decrypted.
func (l *LogObserver) AfterDecrypt(field, plaintext string) {
	l.logger.Debug("after decrypt",
		slog.String("field", field),
		slog.Int("length", len(plaintext)),
	)
}

// KeyRotated logs the rotation timestamp.
func (l *LogObserver) KeyRotated(at time.Time) {
	l.logger.Info("encryption key rotated", slog.Time("rotated_at", at))
}

// MetricsObserver counts envelope operations per field.
type MetricsObserver struct {
	metrics metrics.BusinessMetrics
}

// NewMetricsObserver creates a MetricsObserver.
func NewMetricsObserver(m metrics.BusinessMetrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

// BeforeEncrypt counts an encryption of field.
func (m *MetricsObserver) BeforeEncrypt(field, plaintext string) {
	m.metrics.RecordOperation(context.Background(), "envelope", "encrypt_"+field, "success")
}

// AfterDecrypt counts a decryption of field.
func (m *MetricsObserver) AfterDecrypt(field, plaintext string) {
	m.metrics.RecordOperation(context.Background(), "envelope", "decrypt_"+field, "success")
}

// KeyRotated counts a completed key rotation.
func (m *MetricsObserver) KeyRotated(at time.Time) {
	m.metrics.RecordOperation(context.Background(), "envelope", "key_rotated", "success")
}
