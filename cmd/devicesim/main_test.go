package main

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"

	"github.com/jmX86/TempSync-hardware/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRecordMasksPassword(t *testing.T) {
	payload, err := record.Encode(record.Record{
		Mode:           record.ModeHostname,
		Address:        "broker.local",
		Port:           1883,
		HasCredentials: true,
		Username:       "admin",
		Password:       "pass",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	remote := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
	require.NoError(t, printRecord(&buf, remote, payload, false))

	var got receivedRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "127.0.0.1:50000", got.From)
	assert.Equal(t, "hostname", got.Mode)
	assert.Equal(t, "broker.local", got.Address)
	assert.Equal(t, 1883, got.Port)
	assert.True(t, got.HasCredentials)
	assert.Equal(t, "admin", got.Username)
	assert.Equal(t, "****", got.Password)
}

func TestPrintRecordInvalid(t *testing.T) {
	var buf bytes.Buffer
	err := printRecord(&buf, &net.TCPAddr{}, make([]byte, record.Size), true)
	assert.ErrorIs(t, err, record.ErrUnknownVersion)
	assert.Zero(t, buf.Len())
}

func TestPrintRecordMasksEachCharacter(t *testing.T) {
	payload, err := record.Encode(record.Record{
		Mode:           record.ModeIP,
		Address:        "10.0.0.1",
		Port:           1883,
		HasCredentials: true,
		Username:       "admin",
		Password:       "pässwörd",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printRecord(&buf, &net.TCPAddr{}, payload, false))

	var got receivedRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "********", got.Password)
}
