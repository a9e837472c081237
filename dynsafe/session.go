// Package dynsafe ties the analysis together for one set of interface definitions.
//
// A Session owns the Arena, the safety Checker and the verdict cache. Definitions
// must not change during a Session: start a new one when they do.
package dynsafe

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/cottand/dynsafe/cache"
	"github.com/cottand/dynsafe/diag"
	"github.com/cottand/dynsafe/internal/log"
	"github.com/cottand/dynsafe/model"
	"github.com/cottand/dynsafe/safety"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Jobs bounds how many interfaces CheckAll evaluates in parallel.
	// Zero means runtime.GOMAXPROCS.
	Jobs int
	// Logger defaults to log.DefaultLogger
	Logger *slog.Logger
	// SkipValidation skips validating the whole arena upfront.
	// Ancestors of each checked interface are validated regardless.
	SkipValidation bool
}

type Session struct {
	ID       uuid.UUID
	arena    *model.Arena
	checker  *safety.Checker
	verdicts *cache.Cache[model.InterfaceID, safety.Verdict]
	jobs     int
	logger   *slog.Logger
}

// NewSession validates arena and prepares it for analysis
func NewSession(arena *model.Arena, opts Options) (*Session, error) {
	if arena == nil {
		return nil, errors.New("nil arena")
	}
	if !opts.SkipValidation {
		if err := arena.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid definitions")
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger
	}
	id := uuid.New()
	logger = logger.With("session", id.String())
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	s := &Session{
		ID:       id,
		arena:    arena,
		checker:  safety.NewChecker(arena, logger),
		verdicts: cache.New[model.InterfaceID, safety.Verdict](logger),
		jobs:     jobs,
		logger:   logger.With("section", "session"),
	}
	s.logger.Debug("session started", "interfaces", arena.Len(), "jobs", jobs)
	return s, nil
}

func (s *Session) Arena() *model.Arena { return s.arena }

// Close tears the session down. Queries still waiting on a verdict fail with cache.ErrClosed.
func (s *Session) Close() {
	s.verdicts.Close()
	s.checker.Close()
	s.logger.Debug("session closed")
}

// Check returns the verdict for id, computing it at most once per Session
func (s *Session) Check(ctx context.Context, id model.InterfaceID) (safety.Verdict, error) {
	return s.verdicts.GetOrCompute(ctx, id, func(ctx context.Context) (safety.Verdict, error) {
		return s.checker.CheckID(ctx, id)
	})
}

// CheckAll returns the verdict of every interface in the arena, in arena order.
// Interfaces are checked in parallel. The first precondition failure aborts the rest.
func (s *Session) CheckAll(ctx context.Context) ([]safety.Verdict, error) {
	var ids []model.InterfaceID
	for iface := range s.arena.All() {
		ids = append(ids, iface.ID)
	}
	verdicts := make([]safety.Verdict, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)
	for i, id := range ids {
		g.Go(func() error {
			v, err := s.Check(gctx, id)
			if err != nil {
				return err
			}
			verdicts[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}

// Report checks id and renders its diagnostics. Safe interfaces produce an empty Report.
func (s *Session) Report(ctx context.Context, id model.InterfaceID) (diag.Report, error) {
	iface, err := s.arena.Get(id)
	if err != nil {
		return diag.Report{}, err
	}
	v, err := s.Check(ctx, id)
	if err != nil {
		return diag.Report{}, err
	}
	return diag.Render(iface, v.Violations), nil
}

func (s *Session) Stats() cache.Stats {
	return s.verdicts.Stats()
}
