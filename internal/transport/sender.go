package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"
)

// Sender delivers a payload to a device as the entire content of one TCP connection.
// No response is read: a send succeeds when every byte was written without error.
type Sender struct {
	// Address is the host:port of the device's provisioning listener.
	Address string

	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// Send connects to the device, writes payload in full and closes the connection.
// The connection is closed on every path.
func (s *Sender) Send(ctx context.Context, payload []byte) (err error) {
	if s.Address == "" {
		return fmt.Errorf("no device address (host:port) provided")
	}

	d := net.Dialer{Timeout: s.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", s.Address)
	if err != nil {
		return fmt.Errorf("failed to connect to device at %s: %w", s.Address, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close connection to %s: %w", s.Address, cerr)
		}
	}()

	if s.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	if err := writeFull(conn, payload); err != nil {
		return fmt.Errorf("failed to send %d bytes to %s: %w", len(payload), s.Address, err)
	}

	return nil
}

// writeFull loops until all of p has been written.
func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
