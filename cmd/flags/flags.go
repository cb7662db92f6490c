package flags

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/luw-coordination-registry/api"
	"github.com/ruteri/luw-coordination-registry/common"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/statecatalog"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

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

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
	}
}

// LoadConfigFile returns a Before hook that fills flags not set on the command
// line from the YAML file named by --config. Only altsrc-wrapped flags are
// read from the file.
func LoadConfigFile(flags []cli.Flag) cli.BeforeFunc {
	load := altsrc.InitInputSourceWithContext(flags, altsrc.NewYamlSourceFromFlagFunc(ConfigFlag.Name))
	return func(cCtx *cli.Context) error {
		if cCtx.String(ConfigFlag.Name) == "" {
			return nil
		}
		return load(cCtx)
	}
}

// ParseState accepts a state name from the vocabulary or its numeric code.
// Unknown numeric codes are passed through so the ledger can reject them.
func ParseState(vocabulary *statecatalog.Vocabulary, s string) (interfaces.StateCode, error) {
	if code, ok := vocabulary.Code(s); ok {
		return code, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown %s state %q", vocabulary.Name(), s)
	}
	return interfaces.StateCode(n), nil
}

var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "YAML file with flag values",
	EnvVars: []string{"LUW_CONFIG"},
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

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
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
var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	Usage:   "address to listen on for Prometheus metrics",
	EnvVars: []string{"LUW_METRICS_ADDR"},
}

// CommonFlags can be loaded from the config file.
var CommonFlags = []cli.Flag{
	altsrc.NewBoolFlag(LogJsonFlag),
	altsrc.NewBoolFlag(LogDebugFlag),
	altsrc.NewBoolFlag(LogUidFlag),
	altsrc.NewBoolFlag(PprofFlag),
	altsrc.NewInt64Flag(DrainSecondsFlag),
	altsrc.NewStringFlag(MetricsAddrFlag),
}
