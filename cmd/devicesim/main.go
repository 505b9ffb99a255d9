// Command devicesim emulates a thermostat's provisioning listener.
//
// It accepts provisioning connections, decodes each record and prints it as
// one JSON line, so thermostat-setup can be exercised without hardware.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/jmX86/TempSync-hardware/internal/record"
	"github.com/jmX86/TempSync-hardware/internal/transport"
	"github.com/spf13/pflag"
)

func main() {
	var (
		listen       string
		output       string
		showPassword bool
	)

	flagSet := pflag.NewFlagSet("devicesim", pflag.ExitOnError)
	flagSet.StringVar(&listen, "listen", ":35252", "address to accept provisioning connections on")
	flagSet.StringVar(&output, "output", "", "append received records to this file instead of stdout")
	flagSet.BoolVar(&showPassword, "show-password", false, "print passwords instead of masking them")
	flagSet.Parse(os.Args[1:])

	var out io.Writer = os.Stdout
	if output != "" {
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("Failed to open output: %v", err)
		}
		defer f.Close()
		out = f
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := &transport.Listener{
		PayloadSize: record.Size,
		ReadTimeout: 10 * time.Second,
		Handler: func(remote net.Addr, payload []byte) error {
			return printRecord(out, remote, payload, showPassword)
		},
	}

	log.Printf("Waiting for provisioning records on %s", ln.Addr())

	if err := l.Serve(ctx, ln); err != nil {
		log.Fatalf("Listener failed: %v", err)
	}
}

type receivedRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	From           string    `json:"from"`
	Mode           string    `json:"mode"`
	Address        string    `json:"address"`
	Port           int       `json:"port"`
	HasCredentials bool      `json:"has_credentials"`
	Username       string    `json:"username,omitempty"`
	Password       string    `json:"password,omitempty"`
}

func printRecord(w io.Writer, remote net.Addr, payload []byte, showPassword bool) error {
	r, err := record.Decode(payload)
	if err != nil {
		return err
	}

	entry := receivedRecord{
		Timestamp:      time.Now(),
		From:           remote.String(),
		Mode:           r.Mode.String(),
		Address:        r.Address,
		Port:           r.Port,
		HasCredentials: r.HasCredentials,
		Username:       r.Username,
		Password:       r.Password,
	}

	if !showPassword && entry.Password != "" {
		entry.Password = strings.Repeat("*", utf8.RuneCountInString(r.Password))
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
