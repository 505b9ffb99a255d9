package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"
)

// Handler processes one payload received from a provisioning client.
type Handler func(remote net.Addr, payload []byte) error

// Listener is the device side of the provisioning exchange.
// Each accepted connection carries exactly one fixed-size payload.
type Listener struct {
	// PayloadSize is the number of bytes read from each connection.
	PayloadSize int
	// ReadTimeout bounds how long a client may take to send its payload.
	ReadTimeout time.Duration

	Handler Handler
}

// Serve accepts connections on ln until ctx is cancelled.
// Connections are handled one at a time, matching a device that only
// accepts a single provisioning client.
func (l *Listener) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}

		if err := l.handle(conn); err != nil {
			log.Printf("Failed to handle payload from %s: %v", conn.RemoteAddr(), err)
		}
	}
}

func (l *Listener) handle(conn net.Conn) error {
	defer conn.Close()

	if l.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(l.ReadTimeout)); err != nil {
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
	}

	payload := make([]byte, l.PayloadSize)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return fmt.Errorf("failed to read %d-byte payload: %w", l.PayloadSize, err)
	}

	return l.Handler(conn.RemoteAddr(), payload)
}
