// Package reconcile brings a persisted enumble table in line with a registry.
//
// Every declared entry is upserted by id. With DeleteMissing, every id from 1
// up to the highest declared or persisted id is visited and the persisted
// rows that no entry covers are deleted in one batch. Any write failure aborts the run;
// writes already applied are not rolled back here, so callers that need
// atomicity run Reconcile inside a store transaction.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/enumbler/internal/enumble"
	"github.com/conduit-lang/enumbler/internal/store"
)

// Store is the persisted record store a registry is reconciled against
type Store interface {
	// FindOrInitialize returns the row with id, or a new unsaved record
	FindOrInitialize(ctx context.Context, id int) (*store.Record, error)
	// Save writes the record, running schema validation when validate is set
	Save(ctx context.Context, rec *store.Record, validate bool) error
	// ListIDs returns every persisted id in ascending order
	ListIDs(ctx context.Context) ([]int, error)
	// DeleteAll removes rows by id in one batch
	DeleteAll(ctx context.Context, ids []int) error
}

// Options controls a reconciliation run
type Options struct {
	// DeleteMissing deletes persisted rows whose id no entry declares
	DeleteMissing bool
	// Validate runs store-level validation on every save
	Validate bool
}

// DefaultOptions keeps orphaned rows and validates saves
func DefaultOptions() Options {
	return Options{Validate: true}
}

// Result summarizes a run. Plan fills it without writing.
type Result struct {
	RunID     string
	Model     string
	Table     string
	Created   []int
	Updated   []int
	Unchanged []int
	// Orphaned lists visited ids that no entry declares
	Orphaned []int
	// Deleted lists the orphaned ids that had a persisted row and were
	// removed (or, for a plan, would be)
	Deleted []int
	DryRun  bool
}

// Drift reports whether the run changed, or would change, the store
func (r *Result) Drift() bool {
	return len(r.Created) > 0 || len(r.Updated) > 0 || len(r.Deleted) > 0
}

// PersistenceError reports a store failure that aborted a run
type PersistenceError struct {
	Table string
	Op    string
	ID    int
	Err   error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	if e.ID > 0 {
		return fmt.Sprintf("reconcile %s: %s id %d: %v", e.Table, e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("reconcile %s: %s: %v", e.Table, e.Op, e.Err)
}

// Unwrap returns the underlying store error
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistence returns true if err came from the store during a run
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Reconciler pushes registries into a store
type Reconciler struct {
	store  Store
	logger *zap.Logger
}

// New creates a reconciler. A nil logger disables logging.
func New(s Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: s, logger: logger}
}

// Reconcile upserts every entry of reg and, with DeleteMissing, deletes the
// orphaned rows
func (r *Reconciler) Reconcile(ctx context.Context, reg *enumble.Registry, opts Options) (*Result, error) {
	return r.run(ctx, reg, opts, false)
}

// Plan reports what Reconcile would do without writing
func (r *Reconciler) Plan(ctx context.Context, reg *enumble.Registry, opts Options) (*Result, error) {
	return r.run(ctx, reg, opts, true)
}

func (r *Reconciler) run(ctx context.Context, reg *enumble.Registry, opts Options, dryRun bool) (*Result, error) {
	model := reg.Model()
	res := &Result{
		RunID:  uuid.NewString(),
		Model:  model.Name,
		Table:  model.Table,
		DryRun: dryRun,
	}
	log := r.logger.With(
		zap.String("run_id", res.RunID),
		zap.String("model", model.Name),
		zap.String("table", model.Table),
		zap.Bool("dry_run", dryRun),
	)

	ids, persisted, err := r.workingSet(ctx, reg, opts)
	if err != nil {
		return nil, &PersistenceError{Table: model.Table, Op: "list ids", Err: err}
	}

	var stale []int
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, declared := reg.ByID(id)
		if !declared {
			res.Orphaned = append(res.Orphaned, id)
			if _, ok := persisted[id]; ok {
				stale = append(stale, id)
			}
			continue
		}

		rec, err := r.store.FindOrInitialize(ctx, id)
		if err != nil {
			return nil, &PersistenceError{Table: model.Table, Op: "find", ID: id, Err: err}
		}

		attrs := entry.Attributes()
		isNew := rec.IsNew()
		changed := rec.Changed(attrs)

		if !dryRun {
			rec.Assign(attrs)
			if err := r.store.Save(ctx, rec, opts.Validate); err != nil {
				log.Error("save failed", zap.Int("id", id), zap.Error(err))
				return nil, &PersistenceError{Table: model.Table, Op: "save", ID: id, Err: err}
			}
		}

		switch {
		case isNew:
			res.Created = append(res.Created, id)
		case changed:
			res.Updated = append(res.Updated, id)
		default:
			res.Unchanged = append(res.Unchanged, id)
		}
		log.Debug("entry reconciled", zap.Int("id", id), zap.String("name", entry.Name().String()),
			zap.Bool("created", isNew), zap.Bool("changed", changed))
	}

	if len(stale) > 0 && !dryRun {
		if err := r.store.DeleteAll(ctx, stale); err != nil {
			log.Error("delete failed", zap.Ints("ids", stale), zap.Error(err))
			return nil, &PersistenceError{Table: model.Table, Op: "delete", Err: err}
		}
	}
	res.Deleted = stale

	log.Info("reconciled",
		zap.Int("created", len(res.Created)),
		zap.Int("updated", len(res.Updated)),
		zap.Int("unchanged", len(res.Unchanged)),
		zap.Int("orphaned", len(res.Orphaned)),
		zap.Int("deleted", len(res.Deleted)),
	)
	return res, nil
}

// workingSet returns the ids to visit in ascending order and, with
// DeleteMissing, the set of persisted ids
func (r *Reconciler) workingSet(ctx context.Context, reg *enumble.Registry, opts Options) ([]int, map[int]struct{}, error) {
	if !opts.DeleteMissing {
		return reg.IDs(), nil, nil
	}

	existing, err := r.store.ListIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	persisted := make(map[int]struct{}, len(existing))
	upper := max(reg.MaxID(), 0)
	for _, id := range existing {
		persisted[id] = struct{}{}
		upper = max(upper, id)
	}

	ids := make([]int, 0, upper)
	for id := 1; id <= upper; id++ {
		ids = append(ids, id)
	}
	// Ids below 1 are outside the range walk but still declared
	var below []int
	for _, id := range reg.IDs() {
		if id < 1 {
			below = append(below, id)
		}
	}
	if len(below) > 0 {
		ids = append(below, ids...)
		sort.Ints(ids)
	}
	return ids, persisted, nil
}
