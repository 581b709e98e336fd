package board

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"jobtrack/internal/model"
	"jobtrack/internal/ordering"
	"jobtrack/internal/statusutil"
)

// Remote is the store the board mirrors.
type Remote interface {
	Update(ctx context.Context, id string, patch model.Patch) (model.Application, error)
	List(ctx context.Context, params model.ListParams) (model.ListResult, error)
}

// ErrorReporter surfaces failures to the user.
type ErrorReporter interface {
	Report(err error)
}

type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) { f(err) }

type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) Report(err error) {
	if r.Logger == nil || err == nil {
		return
	}
	r.Logger.Error("board error", "err", err)
}

type Location struct {
	ColumnID model.Status `json:"columnId"`
	Index    int          `json:"index"`
}

// DropResult describes a finished drag. Destination is nil when the drag was cancelled.
type DropResult struct {
	ItemID      string    `json:"itemId"`
	Source      Location  `json:"source"`
	Destination *Location `json:"destination,omitempty"`
}

// DragUpdate has the same shape as DropResult and is fired while the card is still held.
type DragUpdate = DropResult

// Pending is a drop that has been applied locally and awaits the remote result.
type Pending struct {
	ItemID     string
	Patch      model.MovePatch
	Generation uint64

	snapshot Snapshot
	applied  uint64
	prev     model.MovePatch
}

type Outcome struct {
	ItemID     string
	Generation uint64
	Err        error
	RolledBack bool
	// Exact is set when the rollback restored the whole pre-drop snapshot. Otherwise only
	// the moved application went back to its last confirmed status and order key. Nothing
	// is rolled back when a newer drop of the application has already committed.
	Exact bool
}

// itemState tracks one application while drops of it are in flight.
type itemState struct {
	confirmed model.MovePatch // what the remote is known to hold
	latest    uint64
	committed uint64
	inflight  int
}

type dragOrigin struct {
	key    string
	itemID string
	prev   model.MovePatch
}

// Coordinator applies drag results to the cache before the remote store confirms them
// and rolls them back when it does not.
type Coordinator struct {
	cache    *Cache
	remote   Remote
	reporter ErrorReporter
	logger   *slog.Logger

	mu       sync.Mutex
	params   model.ListParams
	gen      uint64
	items    map[string]*itemState
	drag     *dragOrigin
}

func NewCoordinator(cache *Cache, remote Remote, reporter ErrorReporter, logger *slog.Logger) *Coordinator {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if reporter == nil {
		reporter = LogReporter{Logger: logger}
	}
	return &Coordinator{
		cache:    cache,
		remote:   remote,
		reporter: reporter,
		logger:   logger,
		items:    map[string]*itemState{},
	}
}

func (c *Coordinator) Cache() *Cache { return c.cache }

func (c *Coordinator) Params() model.ListParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// SetParams changes the active query. The next Refresh fills its cache entry.
func (c *Coordinator) SetParams(p model.ListParams) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revertDragLocked()
	c.params = p
}

// Board returns the board for the active query as currently cached.
func (c *Coordinator) Board() Board {
	res, _ := c.cache.Get(c.Params().Key())
	return Build(res.Results)
}

// Refresh replaces the active cache entry with the remote list.
func (c *Coordinator) Refresh(ctx context.Context) error {
	params := c.Params()
	res, err := c.remote.List(ctx, params)
	if err != nil {
		return fmt.Errorf("refresh board: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag != nil && c.drag.key == params.Key() {
		c.drag = nil
	}
	c.cache.Set(params.Key(), res)
	return nil
}

func validDrop(d DropResult) bool {
	if d.ItemID == "" || d.Destination == nil {
		return false
	}
	return statusutil.Valid(d.Source.ColumnID) && statusutil.Valid(d.Destination.ColumnID)
}

// OnDragUpdate moves the held card to its provisional position in the cache. It never
// contacts the remote store. It reports whether the cache changed.
func (c *Coordinator) OnDragUpdate(u DragUpdate) bool {
	if !validDrop(u) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.params.Key()
	if c.drag != nil && (c.drag.itemID != u.ItemID || c.drag.key != key) {
		c.revertDragLocked()
	}
	if c.drag == nil {
		cur, _ := c.cache.Get(key)
		i := cur.Find(u.ItemID)
		if i < 0 {
			return false
		}
		a := cur.Results[i]
		c.drag = &dragOrigin{key: key, itemID: u.ItemID, prev: model.MovePatch{Status: a.Status, SortIndex: a.SortIndex}}
	}

	_, _, ok := c.cache.Update(key, func(cur *model.ListResult) bool {
		_, ok := placeInto(cur, u)
		return ok
	})
	return ok
}

// CancelDrag puts a held card back where it was picked up.
func (c *Coordinator) CancelDrag() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revertDragLocked()
}

func (c *Coordinator) revertDragLocked() {
	d := c.drag
	c.drag = nil
	if d == nil {
		return
	}
	c.cache.Update(d.key, func(cur *model.ListResult) bool {
		i := cur.Find(d.itemID)
		if i < 0 {
			return false
		}
		d.prev.Apply(&cur.Results[i])
		return true
	})
}

// placeInto computes the order key for the drop and merges it into the moved record.
func placeInto(cur *model.ListResult, d DropResult) (model.MovePatch, bool) {
	i := cur.Find(d.ItemID)
	if i < 0 {
		return model.MovePatch{}, false
	}
	dest, ok := Build(cur.Results).Column(d.Destination.ColumnID)
	if !ok {
		return model.MovePatch{}, false
	}
	patch := model.MovePatch{
		Status:    d.Destination.ColumnID,
		SortIndex: ordering.ComputeOrderKey(dest.Items, d.Destination.Index, d.ItemID),
	}
	patch.Apply(&cur.Results[i])
	return patch, true
}

// OnDragEnd snapshots the active cache entry, computes the new order key and applies it
// locally. The returned Pending must be passed to Settle once the remote update finishes.
// Cancelled drops and unknown columns leave the board as it was before the drag.
func (c *Coordinator) OnDragEnd(d DropResult) (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !validDrop(d) {
		c.revertDragLocked()
		return Pending{}, false
	}
	// The snapshot must be the pre-drag state, not the last provisional position.
	c.revertDragLocked()

	key := c.params.Key()
	var patch, prev model.MovePatch
	before, version, ok := c.cache.Update(key, func(cur *model.ListResult) bool {
		i := cur.Find(d.ItemID)
		if i < 0 {
			return false
		}
		prev = model.MovePatch{Status: cur.Results[i].Status, SortIndex: cur.Results[i].SortIndex}
		var ok bool
		patch, ok = placeInto(cur, d)
		return ok
	})
	if !ok {
		return Pending{}, false
	}

	c.gen++
	st := c.items[d.ItemID]
	if st == nil {
		st = &itemState{confirmed: prev}
		c.items[d.ItemID] = st
	}
	st.latest = c.gen
	st.inflight++
	return Pending{
		ItemID:     d.ItemID,
		Patch:      patch,
		Generation: c.gen,
		snapshot:   before,
		applied:    version,
		prev:       prev,
	}, true
}

// Settle finishes a pending drop. A failure is not rolled back when a newer drop of the same
// application has committed. Otherwise the pre-drop snapshot is restored when the cache
// entry has not been written since, and failing that the application is put back at the
// last position the remote confirmed. Failures are always reported.
func (c *Coordinator) Settle(p Pending, err error) Outcome {
	out := Outcome{ItemID: p.ItemID, Generation: p.Generation, Err: err}

	c.mu.Lock()
	st := c.items[p.ItemID]
	if st == nil {
		st = &itemState{confirmed: p.prev, latest: p.Generation, inflight: 1}
	}
	st.inflight--
	if st.inflight <= 0 {
		delete(c.items, p.ItemID)
	}

	if err == nil {
		if p.Generation > st.committed {
			st.committed = p.Generation
			st.confirmed = p.Patch
		}
		// An older failure may have reverted the card while this drop was in flight.
		if p.Generation == st.latest {
			c.applyLocked(p.snapshot.Key, p.ItemID, p.Patch)
		}
		c.mu.Unlock()
		c.logger.Debug("drag committed", "id", p.ItemID, "status", p.Patch.Status, "orderKey", p.Patch.SortIndex, "generation", p.Generation)
		return out
	}

	switch {
	case st.committed > p.Generation:
	case c.cache.RestoreIfVersion(p.snapshot, p.applied):
		out.RolledBack = true
		out.Exact = true
	default:
		c.applyLocked(p.snapshot.Key, p.ItemID, st.confirmed)
		out.RolledBack = true
	}
	c.mu.Unlock()

	if out.RolledBack {
		c.logger.Warn("drag rolled back", "id", p.ItemID, "status", p.Patch.Status, "orderKey", p.Patch.SortIndex, "generation", p.Generation, "exact", out.Exact, "err", err)
	} else {
		c.logger.Warn("drag failed after a newer move committed", "id", p.ItemID, "status", p.Patch.Status, "orderKey", p.Patch.SortIndex, "generation", p.Generation, "err", err)
	}
	c.reporter.Report(fmt.Errorf("move %s to %s: %w", p.ItemID, p.Patch.Status, err))
	return out
}

// applyLocked writes m onto the application in the cache entry under key. Nothing is
// written when the application is missing or already there.
func (c *Coordinator) applyLocked(key, id string, m model.MovePatch) {
	c.cache.Update(key, func(cur *model.ListResult) bool {
		i := cur.Find(id)
		if i < 0 {
			return false
		}
		a := cur.Results[i]
		if a.Status == m.Status && a.SortIndex == m.SortIndex {
			return false
		}
		m.Apply(&cur.Results[i])
		return true
	})
}

// Commit sends p to the remote store and settles it.
func (c *Coordinator) Commit(ctx context.Context, p Pending) Outcome {
	_, err := c.remote.Update(ctx, p.ItemID, p.Patch)
	return c.Settle(p, err)
}

// Drop applies d locally and commits it in the background. The channel receives exactly
// one Outcome. It returns false when the drop was a no-op.
func (c *Coordinator) Drop(ctx context.Context, d DropResult) (<-chan Outcome, bool) {
	p, ok := c.OnDragEnd(d)
	if !ok {
		return nil, false
	}
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- c.Commit(ctx, p)
	}()
	return ch, true
}
