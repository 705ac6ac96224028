// Command rfcommd runs one HFP RFCOMM control-channel session: it
// attaches to an already-bridged byte stream standing in for a connected
// RFCOMM socket, drives the SLC handshake and AT dispatch loop, and
// publishes transport property changes on D-Bus.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"

	"github.com/blueheadset/rfcomm-hfp/dbussink"
	"github.com/blueheadset/rfcomm-hfp/hfp"
	"github.com/blueheadset/rfcomm-hfp/internal/config"
)

func main() {
	flag.String("role", "hf", "HFP role to play: hf or ag")
	flag.String("rfcomm-socket", "/run/bluealsa/rfcomm0", "Unix-domain socket standing in for the connected RFCOMM fd")
	flag.String("handler-socket", "", "Optional Unix-domain socket for the external AT-handler sibling")
	flag.String("dbus-object-path", "/org/bluealsa/hci0/dev_00_00_00_00_00_00/hfp", "D-Bus object path to publish property changes on")
	flag.String("dbus-interface", "org.bluealsa.RFCOMM1", "D-Bus interface name reported in PropertiesChanged")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Bool("enable-msbc", true, "Advertise and allow mSBC codec negotiation")
	flag.Int("slc-retries", 10, "Number of SLC message retries before giving up")
	flag.Int("slc-timeout-ms", 10000, "Milliseconds to wait for an SLC reply before retrying")
	flag.Parse()

	cfg, err := config.Load(config.WithDefaults(), config.WithEnv(), config.WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	role := hfp.RoleHF
	if cfg.Role == "ag" {
		role = hfp.RoleAG
	}

	engineCfg, err := hfp.NewConfigBuilder().
		WithRole(role).
		WithFeaturesHF(cfg.FeaturesHF).
		WithFeaturesAG(cfg.FeaturesAG).
		WithEnableMSBC(cfg.EnableMSBC).
		WithSLCRetries(cfg.SLCRetries).
		WithSLCTimeout(cfg.SLCTimeout).
		Build()
	if err != nil {
		logger.Error("failed to build engine config", "error", err)
		os.Exit(1)
	}

	conn, err := net.Dial("unix", cfg.RFCOMMSocket)
	if err != nil {
		logger.Error("failed to attach to RFCOMM socket", "socket", cfg.RFCOMMSocket, "error", err)
		os.Exit(1)
	}

	// handler is kept as the bare io.ReadWriteCloser interface, never a
	// concrete net.Conn, so that leaving it unset produces a true nil
	// interface: the Engine compares it against nil to decide whether an
	// external AT handler is configured at all.
	var handler io.ReadWriteCloser
	if cfg.HandlerSocket != "" {
		h, err := net.Dial("unix", cfg.HandlerSocket)
		if err != nil {
			logger.Warn("failed to attach to external AT handler, continuing without it", "socket", cfg.HandlerSocket, "error", err)
		} else {
			handler = h
		}
	}

	sink, busConn := newSink(cfg, logger)

	transport := hfp.NewSharedTransport()
	device := hfp.NewDeviceRecord()
	hfpConn := hfp.NewConn(role, engineCfg, conn, transport, device, sink)

	// Engine.Run closes the RFCOMM socket (and the handler socket, if
	// any) itself on the way out, to unblock its own feeder goroutines;
	// Cleanup only needs to release what Run doesn't know about.
	engine := hfp.NewEngine(hfpConn, handler, logger)
	engine.Cleanup = func() {
		if busConn != nil {
			busConn.Close()
		}
	}

	logger.Info("starting RFCOMM session", "role", role, "socket", cfg.RFCOMMSocket)

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			logger.Error("session ended", "error", err)
			cancel()
			os.Exit(1)
		}
	}

	cancel()
	logger.Info("session closed")
}

func newSink(cfg *config.Config, logger *slog.Logger) (hfp.PropertySink, *dbus.Conn) {
	var busConn *dbus.Conn
	var err error
	if cfg.DBusSystemBus {
		busConn, err = dbus.ConnectSystemBus()
	} else {
		busConn, err = dbus.ConnectSessionBus()
	}
	if err != nil {
		logger.Warn("failed to connect to D-Bus, property changes will not be published", "error", err)
		return hfp.NopSink{}, nil
	}
	return dbussink.New(busConn, dbus.ObjectPath(cfg.DBusObjectPath), cfg.DBusInterface), busConn
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
