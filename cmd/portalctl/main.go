// Command portalctl inspects and maintains the audit-portal collections
// from the command line: listing and importing records, resolving
// locations, postings and issue numbers, exporting reports and watching
// live changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"
	_ "time/tzdata"

	"auditportal/internal/attachment"
	"auditportal/internal/broadcast"
	"auditportal/internal/catalog"
	"auditportal/internal/config"
	"auditportal/internal/kv"
	"auditportal/internal/logging"
	"auditportal/internal/metrics"
	"auditportal/internal/portal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

var (
	exitFunc   = os.Exit
	loadConfig = config.Load
)

type env struct {
	cfg      config.Config
	logger   *zap.Logger
	portal   *portal.Portal
	registry *prometheus.Registry
	stdout   io.Writer
	stderr   io.Writer
}

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"list":          {"list records of a collection", runList},
	"import":        {"add records from a JSON array", runImport},
	"blocks":        {"list the blocks of a district", runBlocks},
	"panchayats":    {"list the panchayats of a block", runPanchayats},
	"resolve":       {"resolve a panchayat to its district, block and LGD code", runResolve},
	"posting":       {"show the current posting of a staff member", runPosting},
	"next-case":     {"preview the next case study number for a district", runNextCase},
	"find-issue":    {"look up an issue number in a scheme's entries", runFindIssue},
	"summary":       {"print dashboard counts", runSummary},
	"export":        {"write a collection to an xlsx workbook", runExport},
	"orphans":       {"list attachments no record references", runOrphans},
	"url":           {"print a display URL for a gallery or library item", runURL},
	"watch":         {"print changes to a collection as they happen", runWatch},
	"serve-metrics": {"serve Prometheus metrics", runServeMetrics},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: portalctl <command> [flags]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, commands[name].summary)
	}
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		usage(stderr)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "portalctl")
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	e, cleanup, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		fmt.Fprintf(stderr, "startup: %v\n", err)
		return 1
	}
	defer cleanup()
	e.stdout, e.stderr = stdout, stderr

	if err := cmd.run(ctx, e, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "%s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func setup(ctx context.Context, cfg config.Config, logger *zap.Logger) (*env, func(), error) {
	var closers []io.Closer
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("close", zap.Error(err))
			}
		}
	}

	backend, err := kv.Open(ctx, cfg.KVOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	closers = append(closers, backend)
	bus, err := broadcast.Open(ctx, cfg.BroadcastOptions(), logger)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("open broadcast: %w", err)
	}
	closers = append(closers, bus)
	files, err := attachment.Open(ctx, cfg.AttachmentOptions())
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("open attachments: %w", err)
	}
	// Only some backends hold connections.
	if c, ok := files.(io.Closer); ok {
		closers = append(closers, c)
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		release()
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		release()
		return nil, nil, err
	}

	loc := cfg.Location()
	p := portal.New(portal.Deps{
		KV:          backend,
		Bus:         bus,
		Catalog:     cat,
		Attachments: attachment.NewService(files, logger),
		Logger:      logger,
		Observer:    recorder,
		Now:         func() time.Time { return time.Now().In(loc) },
	})
	logger.Debug("portal ready",
		zap.String("storage", string(backend.Driver())),
		zap.String("broadcast", cfg.BroadcastDriver),
		zap.String("attachments", string(files.Driver())))

	cleanup := func() {
		p.Close()
		release()
	}
	return &env{cfg: cfg, logger: logger, portal: p, registry: reg}, cleanup, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
