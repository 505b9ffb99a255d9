// Package history records provisioning attempts so that an installer can later
// see which broker settings were pushed to which device.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmX86/TempSync-hardware/internal/record"
)

// Attempt is one provisioning attempt as stored in the history table.
// The broker password is never stored.
type Attempt struct {
	// AttemptID uniquely identifies the attempt.
	AttemptID string `json:"attempt_id"`
	// Timestamp is when the record was sent (or failed to be sent).
	Timestamp time.Time `json:"timestamp"`
	// Device is the host:port of the provisioning listener.
	Device string `json:"device"`

	Mode           string `json:"mode"`
	BrokerAddress  string `json:"broker_address"`
	BrokerPort     int    `json:"broker_port"`
	HasCredentials bool   `json:"has_credentials"`
	Username       string `json:"username,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewAttempt describes sending r to device. sendErr is the outcome of the send.
func NewAttempt(device string, r record.Record, sendErr error) Attempt {
	a := Attempt{
		AttemptID:      uuid.NewString(),
		Timestamp:      time.Now(),
		Device:         device,
		Mode:           r.Mode.String(),
		BrokerAddress:  r.Address,
		BrokerPort:     r.Port,
		HasCredentials: r.HasCredentials,
		Success:        sendErr == nil,
	}

	if r.HasCredentials {
		a.Username = r.Username
	}

	if sendErr != nil {
		a.Error = sendErr.Error()
	}

	return a
}

type Recorder interface {
	Record(ctx context.Context, a Attempt) error
	Close() error
}

func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

type NoopRecorder struct{}

func (r *NoopRecorder) Record(ctx context.Context, a Attempt) error {
	return nil
}

func (r *NoopRecorder) Close() error {
	return nil
}
