// Command thermostat-setup provisions a thermostat with the settings of the
// MQTT broker it should report to.
//
// The thermostat must be in setup mode, listening for a single provisioning
// connection. Broker settings are taken from the broker section of the
// config file, or asked for interactively when there is none.
//
// Usage:
//
//	thermostat-setup [--config config.yaml] [--device host:port] [--dump] [--watch]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmX86/TempSync-hardware/internal/config"
	"github.com/jmX86/TempSync-hardware/internal/history"
	"github.com/jmX86/TempSync-hardware/internal/prompt"
	"github.com/jmX86/TempSync-hardware/internal/provision"
	"github.com/jmX86/TempSync-hardware/internal/record"
	"github.com/jmX86/TempSync-hardware/internal/transport"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("thermostat-setup: %v", err)
	}
}

// run provisions the device once, or keeps re-provisioning it with --watch.
// Interrupting the process cancels ctx, which ends a watch cleanly.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	var (
		configPath string
		device     string
		dump       bool
		watch      bool
	)

	flagSet := pflag.NewFlagSet("thermostat-setup", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	flagSet.StringVar(&device, "device", "", "host:port of the device's provisioning listener (default "+config.DefaultDeviceAddress+")")
	flagSet.BoolVar(&dump, "dump", false, "print a hex dump of the record before sending it")
	flagSet.BoolVar(&watch, "watch", false, "re-provision the device every time the config file changes")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	if device != "" {
		cfg.Device.Address = device
	}

	timeouts, err := cfg.Device.Timeouts()
	if err != nil {
		return fmt.Errorf("invalid device config: %w", err)
	}

	recorder, err := history.New(&cfg.History)
	if err != nil {
		return fmt.Errorf("failed to set up provisioning history: %w", err)
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			log.Printf("Failed to close provisioning history: %v", err)
		}
	}()

	sender := &transport.Sender{
		Address:      cfg.Device.Address,
		DialTimeout:  timeouts.Dial,
		WriteTimeout: timeouts.Write,
	}

	p := provision.New(cfg.Device.Address, sender, recorder)
	if dump {
		p.Dump = stdout
	}

	if watch {
		return runWatch(ctx, configPath, p)
	}

	r, err := brokerRecord(cfg)
	if err != nil {
		return fmt.Errorf("failed to read broker settings: %w", err)
	}

	if err := p.Provision(ctx, r); err != nil {
		return fmt.Errorf("provisioning failed: %w", err)
	}

	fmt.Fprintln(stdout, "Done.")

	return nil
}

// brokerRecord takes the broker settings from cfg, falling back to asking the operator.
func brokerRecord(cfg *config.Config) (record.Record, error) {
	if cfg.Broker != nil {
		return cfg.Broker.Record(), nil
	}

	pr, err := prompt.NewTerminal()
	if err != nil {
		return record.Record{}, err
	}
	defer pr.Close()

	return pr.Record()
}

// runWatch provisions from the config file once, then again after every change to it.
// Only the broker section is reloaded; the device endpoint stays as started.
func runWatch(ctx context.Context, configPath string, p *provision.Provisioner) error {
	if configPath == "" {
		return fmt.Errorf("--watch requires --config")
	}

	loadBroker := func() (record.Record, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return record.Record{}, fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Broker == nil {
			return record.Record{}, fmt.Errorf("%s has no broker section", configPath)
		}
		return cfg.Broker.Record(), nil
	}

	// A config that cannot be provisioned from at all is fatal up front.
	// Later edits that break it are only logged.
	r, err := loadBroker()
	if err != nil {
		return err
	}

	if err := p.Provision(ctx, r); err != nil {
		log.Printf("Initial provisioning failed: %v", err)
	}

	provisionFromFile := func(ctx context.Context) error {
		r, err := loadBroker()
		if err != nil {
			return err
		}
		return p.Provision(ctx, r)
	}

	w := &provision.Watcher{
		Path:     configPath,
		Debounce: provision.DefaultDebounce,
		OnChange: provisionFromFile,
	}

	log.Printf("Watching %s for changes", configPath)

	return w.Run(ctx)
}
