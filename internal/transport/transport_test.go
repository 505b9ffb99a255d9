package transport

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) net.Listener {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln
}

func TestSendAndServe(t *testing.T) {
	ln := listen(t)

	received := make(chan []byte, 1)
	l := &Listener{
		PayloadSize: 133,
		ReadTimeout: 5 * time.Second,
		Handler: func(_ net.Addr, payload []byte) error {
			received <- payload
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- l.Serve(ctx, ln) }()

	payload := bytes.Repeat([]byte{0xAB}, 133)
	s := &Sender{Address: ln.Addr().String(), DialTimeout: time.Second, WriteTimeout: time.Second}
	require.NoError(t, s.Send(context.Background(), payload))

	select {
	case got := <-received:
		assert.Equal(t, payload, got)
	case <-time.After(5 * time.Second):
		t.Fatal("payload was not received")
	}

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestSendClosesConnection(t *testing.T) {
	ln := listen(t)

	done := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		// ReadAll only returns once the sender has closed its side.
		data, _ := io.ReadAll(conn)
		done <- data
	}()

	s := &Sender{Address: ln.Addr().String(), DialTimeout: time.Second}
	require.NoError(t, s.Send(context.Background(), []byte("hello")))

	select {
	case data := <-done:
		assert.Equal(t, []byte("hello"), data)
	case <-time.After(5 * time.Second):
		t.Fatal("connection was not closed")
	}
}

func TestSendConnectionRefused(t *testing.T) {
	ln := listen(t)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := &Sender{Address: addr, DialTimeout: time.Second}
	err := s.Send(context.Background(), []byte{1})
	assert.ErrorContains(t, err, "failed to connect to device")
}

func TestSendNoAddress(t *testing.T) {
	err := (&Sender{}).Send(context.Background(), []byte{1})
	assert.Error(t, err)
}

type chunkWriter struct {
	bytes.Buffer
	max int
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if len(p) > w.max {
		p = p[:w.max]
	}
	return w.Buffer.Write(p)
}

type zeroWriter struct{}

func (zeroWriter) Write(p []byte) (int, error) { return 0, nil }

func TestWriteFull(t *testing.T) {
	w := &chunkWriter{max: 10}
	payload := bytes.Repeat([]byte{1, 2, 3}, 50)
	require.NoError(t, writeFull(w, payload))
	assert.Equal(t, payload, w.Bytes())

	assert.ErrorIs(t, writeFull(zeroWriter{}, payload), io.ErrShortWrite)
}

func TestServeShortPayload(t *testing.T) {
	ln := listen(t)

	called := make(chan struct{}, 1)
	l := &Listener{
		PayloadSize: 133,
		ReadTimeout: time.Second,
		Handler: func(net.Addr, []byte) error {
			called <- struct{}{}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Serve(ctx, ln)

	s := &Sender{Address: ln.Addr().String(), DialTimeout: time.Second}
	require.NoError(t, s.Send(context.Background(), []byte{1, 2, 3}))

	select {
	case <-called:
		t.Fatal("handler must not see a short payload")
	case <-time.After(200 * time.Millisecond):
	}
}
