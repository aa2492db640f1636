package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/x402labs/attestation-ledger/cmd/flags"
	"github.com/x402labs/attestation-ledger/events"
	"github.com/x402labs/attestation-ledger/httpserver"
	"github.com/x402labs/attestation-ledger/interfaces"
	"github.com/x402labs/attestation-ledger/ledger"
	"github.com/x402labs/attestation-ledger/storage"
)

var serverFlags = []cli.Flag{
	flags.ListenAddrFlag,
	flags.MetricsAddrFlag,
	flags.SlotStoreFlag,
	flags.AllowlistFileFlag,
	flags.AMQPURLFlag,
	flags.AMQPExchangeFlag,
	flags.IPFSAddrFlag,
	flags.LogJSONFlag,
	flags.LogDebugFlag,
	flags.LogUIDFlag,
	flags.LogServiceFlag,
	flags.PprofFlag,
	flags.DrainSecondsFlag,
}

func main() {
	app := &cli.App{
		Name:  "ledger-server",
		Usage: "Serve the public attestation ledger API",
		Flags: serverFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			// Slot store substrate
			storeURIs := cCtx.StringSlice(flags.SlotStoreFlag.Name)
			locations := make([]interfaces.SlotStoreLocation, 0, len(storeURIs))
			for _, uri := range storeURIs {
				location, err := interfaces.NewSlotStoreLocation(uri)
				if err != nil {
					logger.Error("Invalid slot store URI", slog.String("uri", uri), "err", err)
					return err
				}
				locations = append(locations, location)
			}

			factory := storage.NewSlotStoreFactory(logger)
			slots, err := factory.CreateMultiStore(locations)
			if err != nil {
				logger.Error("Failed to create slot store", "err", err)
				return err
			}
			logger.Info("Slot store configured", slog.String("location", slots.LocationURI()))

			// Event sinks
			var sinks []interfaces.EventSink
			sinks = append(sinks, events.NewLogSink(logger))

			if amqpURL := cCtx.String(flags.AMQPURLFlag.Name); amqpURL != "" {
				amqpSink, err := events.NewAMQPSink(amqpURL, cCtx.String(flags.AMQPExchangeFlag.Name), logger)
				if err != nil {
					logger.Error("Failed to connect AMQP event sink", "err", err)
					return err
				}
				defer amqpSink.Close()
				sinks = append(sinks, amqpSink)
			}

			if ipfsAddr := cCtx.String(flags.IPFSAddrFlag.Name); ipfsAddr != "" {
				sinks = append(sinks, events.NewIPFSSink(ipfsAddr, logger))
			}

			// Authorization
			allowed, err := loadAllowlist(cCtx.String(flags.AllowlistFileFlag.Name))
			if err != nil {
				logger.Error("Failed to load attester allowlist", "err", err)
				return err
			}
			if len(allowed) == 0 {
				logger.Warn("No attester allowlist configured - attestation is open to any valid signer")
			}

			store := ledger.NewStore(slots, events.NewMultiSink(sinks...), ledger.NewAllowlistAuthorizer(allowed...), logger)
			handler := httpserver.NewHandler(store, logger)

			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flags.ListenAddrFlag.Name))
			srv, err := httpserver.New(cfg, handler)
			if err != nil {
				logger.Error("Failed to create HTTP server", "err", err)
				return err
			}

			srv.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit
			logger.Info("Shutting down")
			srv.Shutdown()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadAllowlist reads a JSON array of hex-encoded ed25519 public keys.
// An empty path yields an empty allowlist (open attestation).
func loadAllowlist(path string) ([]interfaces.AttesterPubkey, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read allowlist file: %w", err)
	}

	var hexKeys []string
	if err := json.Unmarshal(raw, &hexKeys); err != nil {
		return nil, fmt.Errorf("could not parse allowlist file: %w", err)
	}

	keys := make([]interfaces.AttesterPubkey, 0, len(hexKeys))
	for _, hexKey := range hexKeys {
		key, err := interfaces.NewAttesterPubkeyFromHex(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid attester key %q: %w", hexKey, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
