package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ruteri/luw-coordination-registry/api/assethandler"
	"github.com/ruteri/luw-coordination-registry/api/luwhandler"
	"github.com/ruteri/luw-coordination-registry/api/servers"
	"github.com/ruteri/luw-coordination-registry/cmd/flags"
	"github.com/ruteri/luw-coordination-registry/common"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
	"github.com/ruteri/luw-coordination-registry/metrics"
	"github.com/ruteri/luw-coordination-registry/registry"
	"github.com/ruteri/luw-coordination-registry/storage"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

var (
	listenAddrFlag = &cli.StringFlag{
		Name:    "listen-addr",
		Value:   "127.0.0.1:8080",
		Usage:   "address to listen on for API",
		EnvVars: []string{"LUW_LISTEN_ADDR"},
	}
	certifierFlag = &cli.StringFlag{
		Name:    "certifier",
		Usage:   "certifier address, allowed to rebind storage contracts",
		EnvVars: []string{"LUW_CERTIFIER"},
	}
	datadirFlag = &cli.StringFlag{
		Name:    "datadir",
		Usage:   "LevelDB directory for the ledger; in-memory if empty",
		EnvVars: []string{"LUW_DATADIR"},
	}
	dbCacheFlag = &cli.IntFlag{
		Name:  "db-cache",
		Value: 16,
		Usage: "LevelDB cache size in MB",
	}
	dbHandlesFlag = &cli.IntFlag{
		Name:  "db-handles",
		Value: 16,
		Usage: "LevelDB open file handles",
	}
	strictFlag = &cli.BoolFlag{
		Name:  "strict-transitions",
		Usage: "reject state changes outside the lifecycle transition table",
	}
	checkpointBackendFlag = &cli.StringSliceFlag{
		Name:    "checkpoint-backend",
		Usage:   "storage URI to write a checkpoint to on shutdown (repeatable)",
		EnvVars: []string{"LUW_CHECKPOINT_BACKENDS"},
	}
	restoreCheckpointFlag = &cli.StringFlag{
		Name:  "restore-checkpoint",
		Usage: "checkpoint id to restore from the checkpoint backends into an empty ledger",
	}
)

var serverFlags = append([]cli.Flag{
	flags.ConfigFlag,
	altsrc.NewStringFlag(listenAddrFlag),
	altsrc.NewStringFlag(certifierFlag),
	altsrc.NewStringFlag(datadirFlag),
	altsrc.NewIntFlag(dbCacheFlag),
	altsrc.NewIntFlag(dbHandlesFlag),
	altsrc.NewBoolFlag(strictFlag),
	altsrc.NewStringSliceFlag(checkpointBackendFlag),
	altsrc.NewStringFlag(restoreCheckpointFlag),
	altsrc.NewStringFlag(flags.LogServiceFlagFn("luw-registry")),
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:   "luwserver",
		Usage:  "Serve the LUW coordination registry API",
		Flags:  serverFlags,
		Before: flags.LoadConfigFile(serverFlags),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)
	ctx := cCtx.Context

	certifier, err := interfaces.NewAddressFromHex(cCtx.String(certifierFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid --certifier: %w", err)
	}

	cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(listenAddrFlag.Name))
	metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
	if err != nil {
		return err
	}

	l, err := openLedger(cCtx, logger, metricsSrv)
	if err != nil {
		logger.Error("Failed to open ledger", "err", err)
		return err
	}
	defer func() {
		if err := l.Close(); err != nil {
			logger.Error("Failed to close ledger", "err", err)
		}
	}()

	var backend interfaces.StorageBackend
	if locations := cCtx.StringSlice(checkpointBackendFlag.Name); len(locations) > 0 {
		backend, err = checkpointBackend(logger, locations)
		if err != nil {
			return err
		}
	}

	if raw := cCtx.String(restoreCheckpointFlag.Name); raw != "" {
		if backend == nil {
			return errors.New("--restore-checkpoint requires --checkpoint-backend")
		}
		id, err := interfaces.NewContentIDFromHex(raw)
		if err != nil {
			return fmt.Errorf("invalid --restore-checkpoint: %w", err)
		}
		if err := storage.RestoreCheckpoint(ctx, backend, id, l); err != nil {
			logger.Error("Failed to restore checkpoint", "err", err)
			return err
		}
		logger.Info("Checkpoint restored", "checkpoint", id.String(), "sequence", l.Sequence())
	}

	reg, err := registry.Bootstrap(ctx, l, certifier, registry.Options{
		StrictTransitions: cCtx.Bool(strictFlag.Name),
		Log:               logger,
	})
	if err != nil {
		logger.Error("Failed to bootstrap contracts", "err", err)
		return err
	}
	m := reg.Manifest()
	logger.Info("Contracts ready",
		"coordinator", m.Coordinator.Hex(),
		"luwStore", m.LUWStore.Hex(),
		"providerRegistry", m.ProviderRegistry.Hex(),
		"twinRegistry", m.TwinRegistry.Hex(),
		"strictTransitions", m.StrictTransitions)

	server, err := servers.New(cfg, metricsSrv,
		luwhandler.NewHandler(reg.Coordinator, logger),
		assethandler.NewHandler(reg.Assets, reg.Assets, logger),
	)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()

	if backend != nil {
		// the ledger is quiescent once the API is down
		if err := writeCheckpoint(context.Background(), logger, backend, l, reg.Manifest()); err != nil {
			logger.Error("Failed to write checkpoint", "err", err)
			return err
		}
	}

	logger.Info("Server shutdown complete")
	return nil
}

func openLedger(cCtx *cli.Context, logger *slog.Logger, metricsSrv *metrics.MetricsServer) (*ledger.Ledger, error) {
	lcfg := ledger.Config{
		Log:        logger,
		Registerer: metricsSrv.Registry(),
	}
	datadir := cCtx.String(datadirFlag.Name)
	if datadir == "" {
		logger.Warn("Using in-memory ledger, state is lost on exit unless checkpointed")
		return ledger.New(memorydb.New(), lcfg)
	}
	logger.Info("Opening ledger", "datadir", datadir)
	return ledger.OpenLevelDB(datadir, cCtx.Int(dbCacheFlag.Name), cCtx.Int(dbHandlesFlag.Name), lcfg)
}

func checkpointBackend(logger *slog.Logger, uris []string) (interfaces.StorageBackend, error) {
	locations := make([]interfaces.StorageBackendLocation, 0, len(uris))
	for _, uri := range uris {
		loc, err := interfaces.NewStorageBackendLocation(uri)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return storage.NewStorageBackendFactory(logger).CreateMultiBackend(locations)
}

func writeCheckpoint(ctx context.Context, logger *slog.Logger, backend interfaces.StorageBackend, l *ledger.Ledger, m registry.Manifest) error {
	id, err := storage.SaveCheckpoint(ctx, backend, l)
	if err != nil {
		return err
	}

	manifest, err := json.Marshal(m)
	if err != nil {
		return err
	}
	manifestID, err := backend.Store(ctx, manifest, interfaces.ManifestType)
	if err != nil {
		return err
	}

	logger.Info("Checkpoint written",
		"checkpoint", id.String(),
		"manifest", manifestID.String(),
		"sequence", l.Sequence(),
		"backend", backend.LocationURI())
	return nil
}
