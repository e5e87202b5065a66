package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"auditportal/internal/access"
	"auditportal/internal/resolve"
	"auditportal/internal/views"
	"auditportal/pkg/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// filterFlags collects repeated -filter key=value pairs.
type filterFlags map[string]string

func (f filterFlags) String() string { return fmt.Sprint(map[string]string(f)) }

func (f filterFlags) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || k == "" {
		return fmt.Errorf("filter %q must be key=value", v)
	}
	f[k] = val
	return nil
}

func newFlags(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func writeJSON(e *env, v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runList(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "list")
	search := fs.String("search", "", "case-insensitive text search")
	filters := filterFlags{}
	fs.Var(filters, "filter", "equality filter key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one collection name")
	}
	key, err := collectionKey(fs.Arg(0))
	if err != nil {
		return err
	}
	items, n, err := collectionsOf(e.portal)[key].list(ctx, *search, filters)
	if err != nil {
		return err
	}
	e.logger.Debug("listed collection", zap.String("collection", string(key)), zap.Int("records", n))
	return writeJSON(e, items)
}

func runImport(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "import")
	file := fs.String("file", "", "JSON file holding an array of records (- for stdin)")
	role := fs.String("role", string(domain.RoleAdmin), "role of the acting user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *file == "" {
		return errors.New("usage: import -file records.json <collection>")
	}
	key, err := collectionKey(fs.Arg(0))
	if err != nil {
		return err
	}
	ops := collectionsOf(e.portal)[key]
	if ops.add == nil {
		return fmt.Errorf("%s records carry attachments and cannot be imported", key)
	}
	var data []byte
	if *file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		return err
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("decode %s: %w", *file, err)
	}
	actor := access.RoleActor(domain.Role(*role))
	for i, raw := range raws {
		if err := ops.add(ctx, actor, raw); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	fmt.Fprintf(e.stdout, "imported %d records into %s\n", len(raws), key)
	return nil
}

func runBlocks(_ context.Context, e *env, args []string) error {
	fs := newFlags(e, "blocks")
	district := fs.String("district", "", "district name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return writeJSON(e, resolve.Blocks(e.portal.Catalog(), *district))
}

func runPanchayats(_ context.Context, e *env, args []string) error {
	fs := newFlags(e, "panchayats")
	district := fs.String("district", "", "district name")
	block := fs.String("block", "", "block name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return writeJSON(e, resolve.Panchayats(e.portal.Catalog(), *district, *block))
}

func runResolve(_ context.Context, e *env, args []string) error {
	fs := newFlags(e, "resolve")
	var ref domain.LocationRef
	fs.StringVar(&ref.Panchayat, "panchayat", "", "panchayat name")
	fs.StringVar(&ref.District, "district", "", "optional district constraint")
	fs.StringVar(&ref.Block, "block", "", "optional block constraint")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filled, ok := resolve.FillLocation(e.portal.Catalog(), ref)
	return writeJSON(e, map[string]any{"found": ok, "location": filled})
}

func runPosting(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "posting")
	code := fs.String("employee", "", "employee code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, ok := e.portal.Users.ByEmployeeCode(ctx, *code)
	if !ok {
		return fmt.Errorf("no staff member with employee code %q", *code)
	}
	return writeJSON(e, e.portal.Users.CurrentPosting(u))
}

func runNextCase(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "next-case")
	district := fs.String("district", "", "district name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *district == "" {
		return errors.New("-district is required")
	}
	fmt.Fprintln(e.stdout, e.portal.CaseStudies.NextCaseStudyNumber(ctx, *district))
	return nil
}

func runFindIssue(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "find-issue")
	scheme := fs.String("scheme", string(domain.SchemeMGNREGS), "MGNREGS or PMAY-G")
	issue := fs.String("issue", "", "issue number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, ok := e.portal.FindIssue(ctx, domain.Scheme(*scheme), *issue)
	out := map[string]any{"found": ok, "fields": resolve.FieldsFor(m, ok)}
	if ok {
		out["entryId"] = m.Entry.ID
	}
	return writeJSON(e, out)
}

func runSummary(ctx context.Context, e *env, args []string) error {
	if err := newFlags(e, "summary").Parse(args); err != nil {
		return err
	}
	return writeJSON(e, e.portal.Summary(ctx))
}

func runExport(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "export")
	out := fs.String("out", "", "xlsx file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *out == "" {
		return errors.New("usage: export -out report.xlsx <collection>")
	}
	key, err := collectionKey(fs.Arg(0))
	if err != nil {
		return err
	}
	table, err := exportTable(ctx, e, key)
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := views.WriteXLSX(f, table); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "wrote %d rows to %s\n", len(table.Rows), *out)
	return nil
}

func runOrphans(ctx context.Context, e *env, args []string) error {
	if err := newFlags(e, "orphans").Parse(args); err != nil {
		return err
	}
	gallery, err := e.portal.Gallery.Orphans(ctx)
	if err != nil {
		return err
	}
	library, err := e.portal.Library.Orphans(ctx)
	if err != nil {
		return err
	}
	return writeJSON(e, append(gallery, library...))
}

func runURL(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "url")
	id := fs.Int64("id", 0, "record id")
	expiry := fs.Duration("expiry", e.cfg.AttachmentTTL, "lifetime of presigned URLs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: url -id N gallery|library")
	}
	key, err := collectionKey(fs.Arg(0))
	if err != nil {
		return err
	}
	var url string
	switch key {
	case domain.CollectionGallery:
		rec, ok := e.portal.Gallery.Get(ctx, *id)
		if !ok {
			return fmt.Errorf("no gallery item %d", *id)
		}
		url, err = e.portal.Gallery.URL(ctx, rec, *expiry)
	case domain.CollectionLibrary:
		rec, ok := e.portal.Library.Get(ctx, *id)
		if !ok {
			return fmt.Errorf("no library item %d", *id)
		}
		url, err = e.portal.Library.URL(ctx, rec, *expiry)
	default:
		return fmt.Errorf("%s records carry no attachments", key)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, url)
	return nil
}

func runWatch(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "watch")
	d := fs.Duration("for", 0, "stop after this long (0 waits for interrupt)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one collection name")
	}
	key, err := collectionKey(fs.Arg(0))
	if err != nil {
		return err
	}
	if *d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *d)
		defer cancel()
	}
	ops := collectionsOf(e.portal)[key]
	stop := ops.watch(func(count int) {
		fmt.Fprintf(e.stdout, "%s %s now holds %d records\n", time.Now().Format(time.RFC3339), key, count)
	})
	defer stop()
	// Load once so the store is subscribed with a current snapshot.
	_, n, _ := ops.list(ctx, "", nil)
	fmt.Fprintf(e.stdout, "watching %s (%d records)\n", key, n)
	<-ctx.Done()
	return nil
}

func runServeMetrics(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "serve-metrics")
	addr := fs.String("addr", e.cfg.MetricsAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	e.logger.Info("serving metrics", zap.String("addr", *addr))
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
