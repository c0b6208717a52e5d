package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/antoniopresto/wasm-validator/internal/boundary"
	"github.com/antoniopresto/wasm-validator/internal/config"
	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
	"github.com/antoniopresto/wasm-validator/internal/fs"
	"github.com/antoniopresto/wasm-validator/internal/repo"
	"github.com/antoniopresto/wasm-validator/internal/report"
	"github.com/antoniopresto/wasm-validator/internal/server"
	"github.com/antoniopresto/wasm-validator/internal/watch"
)

// ValidateOptions describes one 'jsv validate' run.
type ValidateOptions struct {
	SchemaPath string
	Targets    []string
	// MaskValues overrides the configured masking when set.
	MaskValues *bool
	Format     string
	Verbose    bool
	UseColour  bool
	// OneShot compiles the schema again for every document.
	OneShot bool
	// Workers overrides the configured parallelism when above zero.
	Workers int
	// ChangedSince limits the run to documents changed since a git revision.
	ChangedSince string
}

// Manager defines the operations behind the CLI commands.
type Manager interface {
	ValidateDocuments(ctx context.Context, opts ValidateOptions) error
	WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error
	CheckSchema(ctx context.Context, schemaPath string, format string) error
	Codes(format string) error
	Serve(ctx context.Context, addr string) error
	Config() *config.Config
}

// Ensure the interface is satisfied.
var _ Manager = (*LazyManager)(nil)

// LazyManager acts as a placeholder for a real Manager implementation, allowing
// for deferred initialization of dependencies.
type LazyManager struct {
	inner  Manager
	closer io.Closer // Log file opened during initialization
}

// Close releases resources acquired during initialization.
func (l *LazyManager) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *LazyManager) SetInner(m Manager) {
	l.inner = m
}

// HasInner returns true if the inner manager has been set.
// This is used by PersistentPreRunE to skip initialization if already configured (e.g., in tests).
func (l *LazyManager) HasInner() bool {
	return l.inner != nil
}

func (l *LazyManager) check() Manager {
	if l.inner == nil {
		panic("LazyManager accessed before initialization; check command wiring.")
	}
	return l.inner
}

func (l *LazyManager) ValidateDocuments(ctx context.Context, opts ValidateOptions) error {
	return l.check().ValidateDocuments(ctx, opts)
}

func (l *LazyManager) WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error {
	return l.check().WatchValidation(ctx, opts, readyChan)
}

func (l *LazyManager) CheckSchema(ctx context.Context, schemaPath string, format string) error {
	return l.check().CheckSchema(ctx, schemaPath, format)
}

func (l *LazyManager) Codes(format string) error {
	return l.check().Codes(format)
}

func (l *LazyManager) Serve(ctx context.Context, addr string) error {
	return l.check().Serve(ctx, addr)
}

func (l *LazyManager) Config() *config.Config {
	return l.check().Config()
}

// Ensure the interface is satisfied.
var _ Manager = (*CLIManager)(nil)

// CLIManager is the concrete implementation of the Manager interface.
type CLIManager struct {
	logger         *slog.Logger
	cfg            *config.Config
	resolver       fs.PathResolver
	gitter         repo.Gitter
	reporterWriter io.Writer
}

func NewCLIManager(l *slog.Logger, cfg *config.Config, r fs.PathResolver) *CLIManager {
	return &CLIManager{
		logger:         l,
		cfg:            cfg,
		resolver:       r,
		gitter:         repo.NewCLIGitter(),
		reporterWriter: os.Stdout,
	}
}

// SetOutput redirects reports and listings to w.
func (m *CLIManager) SetOutput(w io.Writer) {
	m.reporterWriter = w
}

func (m *CLIManager) Config() *config.Config {
	return m.cfg
}

// session holds what a validation run needs once the schema is compiled.
type session struct {
	opts     ValidateOptions
	schema   any
	dopts    []diagnostics.Option
	compiled *diagnostics.Validator
}

// newSession reads and compiles the schema.
func (m *CLIManager) newSession(opts ValidateOptions) (*session, error) {
	schema, err := boundary.DecodeFile(boundary.SubjectSchema, opts.SchemaPath)
	if err != nil {
		return nil, err
	}

	dopts := m.cfg.DiagnosticsOptions()
	if opts.MaskValues != nil {
		dopts = append(dopts, diagnostics.WithMaskValues(*opts.MaskValues))
	}

	v, err := diagnostics.Compile(schema, dopts...)
	if err != nil {
		if iss, ok := diagnostics.AsIssues(err); ok {
			return nil, &InvalidSchemaError{Path: opts.SchemaPath, Issues: iss}
		}
		return nil, err
	}
	return &session{opts: opts, schema: schema, dopts: dopts, compiled: v}, nil
}

// validate checks one document. Documents that cannot be read or decoded are
// reported as unreadable rather than failing the run.
func (s *session) validate(path string) report.Result {
	instance, err := boundary.DecodeFile(boundary.SubjectInstance, path)
	if err != nil {
		return report.Result{Path: path, Err: err}
	}

	if s.opts.OneShot {
		err = diagnostics.Validate(s.schema, instance, s.dopts...)
	} else {
		err = s.compiled.Validate(instance)
	}
	if err == nil {
		return report.Result{Path: path}
	}
	if iss, ok := diagnostics.AsIssues(err); ok {
		return report.Result{Path: path, Issues: iss}
	}
	return report.Result{Path: path, Err: err}
}

// documents expands the targets into the documents they name.
func (m *CLIManager) documents(opts ValidateOptions) ([]string, error) {
	var docs []string
	for _, t := range opts.Targets {
		found, err := m.resolver.ListDocuments(t)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", t, err)
		}
		docs = append(docs, found...)
	}
	docs = m.withoutOwnFiles(opts, sortedUnique(docs))
	if len(docs) == 0 {
		return nil, &NoDocumentsError{Targets: opts.Targets}
	}
	return docs, nil
}

// changedDocuments returns the documents named by the targets that changed
// since rev. Unlike documents, finding none is not an error.
func (m *CLIManager) changedDocuments(ctx context.Context, opts ValidateOptions) ([]string, error) {
	var docs []string
	for _, t := range opts.Targets {
		changes, err := m.gitter.Changes(ctx, repo.Revision(opts.ChangedSince), t)
		if err != nil {
			return nil, err
		}
		for _, c := range changes {
			docs = append(docs, c.Path)
		}
	}
	return m.withoutOwnFiles(opts, sortedUnique(docs)), nil
}

// withoutOwnFiles drops the schema and the configuration file from docs,
// unless a target names them explicitly.
func (m *CLIManager) withoutOwnFiles(opts ValidateOptions, docs []string) []string {
	own := map[string]bool{}
	for _, p := range []string{opts.SchemaPath, m.cfg.Path} {
		if p == "" {
			continue
		}
		if c, err := fs.CanonicalPath(p); err == nil {
			own[c] = true
		}
	}
	for _, t := range opts.Targets {
		if c, err := fs.CanonicalPath(t); err == nil {
			delete(own, c)
		}
	}
	if len(own) == 0 {
		return docs
	}
	return slices.DeleteFunc(slices.Clone(docs), func(d string) bool {
		c, err := fs.CanonicalPath(d)
		if err != nil || !own[c] {
			return false
		}
		m.logger.Debug("Skipping schema or configuration file", "path", d)
		return true
	})
}

func sortedUnique(docs []string) []string {
	slices.Sort(docs)
	return slices.Compact(docs)
}

// run validates docs in parallel and returns the finished report.
func (m *CLIManager) run(ctx context.Context, s *session, docs []string) (*report.Report, error) {
	rep := report.NewReport(s.opts.SchemaPath)

	workers := s.opts.Workers
	if workers <= 0 {
		workers = m.cfg.WorkerCount()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := s.validate(doc)
			m.logger.Debug("Validated document", "path", doc, "status", res.Status().String())
			rep.Add(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep.Finish()
	return rep, nil
}

func (m *CLIManager) reporter(opts ValidateOptions) report.Reporter {
	if opts.Format == FormatJSON {
		return &report.JSONReporter{}
	}
	return &report.TextReporter{Verbose: opts.Verbose, UseColour: opts.UseColour}
}

func (m *CLIManager) ValidateDocuments(ctx context.Context, opts ValidateOptions) error {
	m.logger.Debug("validating documents", "schema", opts.SchemaPath, "targets", opts.Targets,
		"format", opts.Format, "oneShot", opts.OneShot)

	s, err := m.newSession(opts)
	if err != nil {
		return err
	}

	var docs []string
	if opts.ChangedSince != "" {
		if docs, err = m.changedDocuments(ctx, opts); err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Fprintf(m.reporterWriter, "No documents changed since %s\n", opts.ChangedSince)
			return nil
		}
	} else if docs, err = m.documents(opts); err != nil {
		return err
	}

	rep, err := m.run(ctx, s, docs)
	if err != nil {
		return err
	}
	if err := m.reporter(opts).Write(m.reporterWriter, rep); err != nil {
		return err
	}
	return failure(rep)
}

func failure(rep *report.Report) error {
	if rep.OK() {
		return nil
	}
	c := rep.Counts()
	return &ValidationFailedError{Invalid: c[report.StatusInvalid], Unreadable: c[report.StatusUnreadable]}
}

// WatchValidation validates once, then again whenever the schema or a
// document changes, until ctx is cancelled. A changed schema re-validates
// every document; a changed document is validated on its own. If you want to
// know when the watcher is ready, pass a non-nil readyChan.
func (m *CLIManager) WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error {
	m.logger.Debug("watching validation", "schema", opts.SchemaPath, "targets", opts.Targets)

	docs, err := m.documents(opts)
	if err != nil {
		return err
	}
	w, err := watch.New(opts.SchemaPath, opts.Targets, m.logger)
	if err != nil {
		return err
	}

	var mu sync.Mutex // Serialises reruns
	var current *session

	rerun := func(s *session, docs []string) {
		rep, rErr := m.run(ctx, s, docs)
		if rErr != nil {
			m.logger.Error("Validation failed", "error", rErr)
			return
		}
		if wErr := m.reporter(opts).Write(m.reporterWriter, rep); wErr != nil {
			m.logger.Error("Failed to write report", "error", wErr)
		}
	}
	reload := func() {
		s, sErr := m.newSession(opts)
		if sErr != nil {
			current = nil
			m.logger.Error("Schema cannot be used", "error", sErr)
			return
		}
		current = s
		all, dErr := m.documents(opts)
		if dErr != nil {
			m.logger.Error("Cannot list documents", "error", dErr)
			return
		}
		rerun(current, all)
	}

	if current, err = m.newSession(opts); err != nil {
		m.logger.Error("Schema cannot be used", "error", err)
	} else {
		rerun(current, docs)
	}

	callback := func(ev watch.Event) {
		mu.Lock()
		defer mu.Unlock()
		// An unusable schema is retried on any change.
		if ev.SchemaChanged || current == nil {
			m.logger.Info("Schema changed, validating every document", "schema", opts.SchemaPath)
			reload()
			return
		}
		changed := m.withoutOwnFiles(opts, ev.Documents)
		if len(changed) == 0 {
			return
		}
		m.logger.Info("Documents changed", "count", len(changed))
		rerun(current, changed)
	}

	if readyChan != nil {
		// Watch may return before it is ready.
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-w.Ready:
			case <-done:
				return
			}
			select {
			case readyChan <- struct{}{}:
			case <-done:
			}
		}()
	}

	return w.Watch(ctx, callback)
}

// CheckSchema compiles the schema and reports whether it can be used.
func (m *CLIManager) CheckSchema(_ context.Context, schemaPath string, format string) error {
	m.logger.Debug("checking schema", "schema", schemaPath)

	_, err := m.newSession(ValidateOptions{SchemaPath: schemaPath})
	resp := &boundary.Response{Valid: true}
	if err != nil {
		var invalid *InvalidSchemaError
		if !errors.As(err, &invalid) {
			return err
		}
		resp = &boundary.Response{Valid: false, Issues: invalid.Issues}
	}

	if format == FormatJSON {
		data, mErr := json.MarshalNoEscape(resp)
		if mErr != nil {
			return mErr
		}
		fmt.Fprintln(m.reporterWriter, string(data))
	} else if resp.Valid {
		fmt.Fprintf(m.reporterWriter, "Schema %s is valid\n", schemaPath)
	} else {
		for _, iss := range resp.Issues {
			fmt.Fprintf(m.reporterWriter, "✗ %s [%s] %s\n", iss.Path, iss.Code, iss.Message)
		}
	}
	return err
}

// Codes lists every issue code.
func (m *CLIManager) Codes(format string) error {
	codes := append(diagnostics.AllCodes(), diagnostics.CodeInvalidSchema)
	if format == FormatJSON {
		data, err := json.MarshalNoEscape(server.CodesResponse{Codes: codes})
		if err != nil {
			return err
		}
		fmt.Fprintln(m.reporterWriter, string(data))
		return nil
	}
	for _, c := range codes {
		fmt.Fprintln(m.reporterWriter, c)
	}
	return nil
}

// Serve runs the HTTP API until ctx is cancelled. A non-empty addr overrides
// the configured address.
func (m *CLIManager) Serve(ctx context.Context, addr string) error {
	cfg := *m.cfg
	if addr != "" {
		cfg.Server.Addr = addr
	}
	m.logger.Debug("serving", "addr", cfg.Server.Addr)
	return server.New(&cfg, m.logger).Run(ctx)
}
