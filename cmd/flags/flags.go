// Package flags holds the flag definitions and setup helpers shared by the
// ledger binaries.
package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/x402labs/attestation-ledger/common"
	"github.com/x402labs/attestation-ledger/httpserver"
)

// SetupLogger builds the process logger from the standard log-* flags.
func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJSONFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUIDFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// ConfigureServer assembles the HTTP server config from flags.
func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var SlotStoreFlag = &cli.StringSliceFlag{
	Name:  "slot-store",
	Value: cli.NewStringSlice("memory://"),
	Usage: "slot store URI; repeat for replicas, first is authoritative (memory://, file://, s3://, vault://, redis://, sqlite://, postgres://)",
}

var AllowlistFileFlag = &cli.StringFlag{
	Name:  "allowlist-file",
	Value: "",
	Usage: "JSON file with allowed attester public keys (hex); empty means open attestation",
}

var AMQPURLFlag = &cli.StringFlag{
	Name:  "amqp-url",
	Value: "",
	Usage: "RabbitMQ URL for publishing attestation events (optional)",
}

var AMQPExchangeFlag = &cli.StringFlag{
	Name:  "amqp-exchange",
	Value: "attestations",
	Usage: "RabbitMQ fanout exchange for attestation events",
}

var IPFSAddrFlag = &cli.StringFlag{
	Name:  "ipfs-addr",
	Value: "",
	Usage: "IPFS API address (host:port) for archiving attestation events (optional)",
}

var LogJSONFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}

var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}

var LogUIDFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}

var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
