package flags

import (
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/tee-bls-signer/eip2335"
	"github.com/ruteri/tee-bls-signer/kms"
	"github.com/ruteri/tee-bls-signer/logging"
)

// SetupLogger builds the process logger from the common logging flags.
func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logger := logging.Setup(logging.Options{
		JSON:    cCtx.Bool(LogJsonFlag.Name),
		Debug:   cCtx.Bool(LogDebugFlag.Name),
		Service: cCtx.String(LogServiceFlag.Name),
	})
	if cCtx.Bool(LogUidFlag.Name) {
		logger = logging.WithRandomUID(logger)
	}
	return logger
}

// ConfigureLimits builds an eip2335.Limits from the decryption flags.
func ConfigureLimits(cCtx *cli.Context) eip2335.Limits {
	return eip2335.Limits{
		MaxScryptCost: int(cCtx.Int64(MaxScryptCostFlag.Name)),
	}
}

// ConfigureCapacity reads the keystore capacity flag, falling back to
// kms.DefaultCapacity when unset.
func ConfigureCapacity(cCtx *cli.Context) int {
	capacity := cCtx.Int(MaxKeysFlag.Name)
	if capacity <= 0 {
		return kms.DefaultCapacity
	}
	return capacity
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:9000",
	Usage: "address to listen on for the signing API",
}

var OpsListenAddrFlag = &cli.StringFlag{
	Name:  "ops-listen-addr",
	Value: "127.0.0.1:9001",
	Usage: "address to listen on for /healthz, /readyz, /drain, /undrain",
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:9002",
	Usage: "address to listen on for Prometheus metrics, empty disables it",
}

var MaxKeysFlag = &cli.IntFlag{
	Name:  "max-keys",
	Value: kms.DefaultCapacity,
	Usage: "maximum number of key pairs the keystore will hold",
}

var MaxBufFlag = &cli.IntFlag{
	Name:  "max-buf",
	Value: 32768,
	Usage: "maximum size in bytes of a single buffered request",
}

var MaxScryptCostFlag = &cli.Int64Flag{
	Name:  "max-scrypt-cost",
	Value: int64(eip2335.DefaultLimits().MaxScryptCost),
	Usage: "maximum allowed scrypt n*r*p product for an imported keystore",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "tee-bls-signer",
	Usage: "add 'service' tag to logs",
}

var CommonFlags = []cli.Flag{
	ListenAddrFlag,
	OpsListenAddrFlag,
	MetricsAddrFlag,
	MaxKeysFlag,
	MaxBufFlag,
	MaxScryptCostFlag,
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}
