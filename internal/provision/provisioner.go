// Package provision pushes broker settings to a thermostat: it encodes the
// record, sends it to the device and records the attempt.
package provision

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log"

	"github.com/jmX86/TempSync-hardware/internal/history"
	"github.com/jmX86/TempSync-hardware/internal/record"
)

// Sender delivers an encoded record to the device.
type Sender interface {
	Send(ctx context.Context, payload []byte) error
}

type Provisioner struct {
	device   string
	sender   Sender
	recorder history.Recorder

	// Dump, when set, receives a hex dump of every encoded record before it is sent.
	Dump io.Writer
}

// New returns a Provisioner sending to device through sender.
// recorder may be nil, in which case attempts are not recorded.
func New(device string, sender Sender, recorder history.Recorder) *Provisioner {
	if recorder == nil {
		recorder = history.NewNoop()
	}

	return &Provisioner{
		device:   device,
		sender:   sender,
		recorder: recorder,
	}
}

// Provision encodes r and sends it to the device.
//
// Validation errors are returned before any connection is opened, so the
// device never sees a partial record. Send errors are returned as is; there
// is no retry.
func (p *Provisioner) Provision(ctx context.Context, r record.Record) error {
	payload, err := record.Encode(r)
	if err != nil {
		return fmt.Errorf("invalid broker settings: %w", err)
	}

	if p.Dump != nil {
		fmt.Fprint(p.Dump, hex.Dump(payload))
	}

	log.Printf("Sending %s broker settings (%s port %d) to %s", r.Mode, r.Address, r.Port, p.device)

	sendErr := p.sender.Send(ctx, payload)

	if err := p.recorder.Record(ctx, history.NewAttempt(p.device, r, sendErr)); err != nil {
		log.Printf("Failed to record provisioning attempt: %v", err)
	}

	if sendErr != nil {
		return sendErr
	}

	log.Printf("Sent %d bytes to %s", len(payload), p.device)

	return nil
}
