// Package table is the dashboard table's state machine: sort spec, column
// visibility, row selection and infinite-scroll pagination, plus the
// per-row edit and delete actions. Sort state round-trips through the page
// query string, column visibility through the local store; selection is
// ephemeral.
package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"extrud-backend/internal/client/localstore"
	"extrud-backend/internal/storage"
	"extrud-backend/internal/validate"
)

// NearBottomPx is how close to the table's end the scroll position must be
// before the next page is requested.
const NearBottomPx = 300

const (
	columnsKey     = "columns"
	columnsVersion = 1
)

// ErrConfirmRequired is returned by DeleteRow for a server-backed record
// until the caller has shown the confirmation step.
var ErrConfirmRequired = errors.New("deletion requires confirmation")

// Pager fetches one page of server rows and reports how many arrived.
type Pager interface {
	FetchPage(ctx context.Context, skip int) (int, error)
}

// RecordStore is the server-side mutation surface used by row actions.
type RecordStore interface {
	Create(ctx context.Context, values storage.LogValues) (int64, error)
	Update(ctx context.Context, id int64, values storage.LogValues) error
	SoftDelete(ctx context.Context, id int64) error
}

// DraftStore is the local-draft surface used by row actions; none of its
// methods reach the server.
type DraftStore interface {
	Update(id string, values storage.LogValues) error
	Remove(id string) error
	Values(id string) (storage.LogValues, error)
}

// RowRef identifies a displayed row: a local draft when DraftID is set,
// otherwise a server record.
type RowRef struct {
	DraftID string
	ID      int64
}

func (r RowRef) key() string {
	if r.DraftID != "" {
		return "draft:" + r.DraftID
	}
	return fmt.Sprintf("id:%d", r.ID)
}

type Controller struct {
	log     *slog.Logger
	ls      *localstore.Store
	pager   Pager
	records RecordStore
	drafts  DraftStore

	// OnInvalidate, when set, is called after a successful edit so the
	// owner can drop its suggestion cache alongside the record queries.
	OnInvalidate func()

	mu        sync.Mutex
	sort      []storage.SortKey
	visible   map[string]bool
	selected  map[string]RowRef
	inFlight  bool
	pages     int
	exhausted bool
	subs      map[int]func()
	nextSub   int
}

func New(log *slog.Logger, ls *localstore.Store, pager Pager, records RecordStore, drafts DraftStore) *Controller {
	const op = "table.New"

	c := &Controller{
		log:      log,
		ls:       ls,
		pager:    pager,
		records:  records,
		drafts:   drafts,
		visible:  map[string]bool{},
		selected: map[string]RowRef{},
		subs:     map[int]func(){},
	}

	if _, err := ls.Load(columnsKey, columnsVersion, &c.visible, nil); err != nil {
		log.Warn("stored column settings not loaded", slog.String("op", op), slog.String("error", err.Error()))
		c.visible = map[string]bool{}
	}

	return c
}

// --- sort spec ---

// ToggleSort cycles one column through ascending, descending and unsorted.
// Multi-column priority follows click order. Any change restarts
// pagination from the first page.
func (c *Controller) ToggleSort(fieldID string) {
	c.mu.Lock()
	idx := -1
	for i, k := range c.sort {
		if k.ID == fieldID {
			idx = i
			break
		}
	}
	switch {
	case idx < 0:
		c.sort = append(c.sort, storage.SortKey{ID: fieldID})
	case !c.sort[idx].Desc:
		c.sort[idx].Desc = true
	default:
		c.sort = append(c.sort[:idx], c.sort[idx+1:]...)
	}
	c.resetPagesLocked()
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) SortSpec() []storage.SortKey {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]storage.SortKey, len(c.sort))
	copy(out, c.sort)
	return out
}

// EncodeQuery writes the sort spec into query-string values, so the table
// state is shareable and survives a reload.
func (c *Controller) EncodeQuery(q url.Values) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.sort) == 0 {
		q.Del("sort")
		return
	}
	blob, err := json.Marshal(c.sort)
	if err != nil {
		return
	}
	q.Set("sort", string(blob))
}

// ParseQuery restores the sort spec from query-string values. A malformed
// value leaves the spec empty rather than failing the page.
func (c *Controller) ParseQuery(q url.Values) {
	raw := q.Get("sort")

	c.mu.Lock()
	c.sort = nil
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.sort); err != nil {
			c.log.Warn("bad sort query ignored", slog.String("sort", raw))
			c.sort = nil
		}
	}
	c.resetPagesLocked()
	c.mu.Unlock()
}

// --- column visibility ---

func (c *Controller) SetColumnVisible(fieldID string, visible bool) error {
	const op = "table.SetColumnVisible"

	c.mu.Lock()
	c.visible[fieldID] = visible
	err := c.ls.Save(columnsKey, columnsVersion, c.visible)
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.notify()
	return nil
}

// ColumnVisible defaults to true for columns never toggled.
func (c *Controller) ColumnVisible(fieldID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.visible[fieldID]
	if !ok {
		return true
	}
	return v
}

// --- row selection (ephemeral) ---

func (c *Controller) Select(ref RowRef) {
	c.mu.Lock()
	c.selected[ref.key()] = ref
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) Deselect(ref RowRef) {
	c.mu.Lock()
	delete(c.selected, ref.key())
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.selected = map[string]RowRef{}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) Selected() []RowRef {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]RowRef, 0, len(c.selected))
	for _, ref := range c.selected {
		out = append(out, ref)
	}
	return out
}

// --- pagination ---

// OnScroll requests the next page once the scroll position is within
// NearBottomPx of the table's end. At most one fetch is in flight, and
// none is issued after a short page signalled the end of the data.
func (c *Controller) OnScroll(ctx context.Context, distanceFromBottomPx int) error {
	if distanceFromBottomPx > NearBottomPx {
		return nil
	}
	return c.FetchNext(ctx)
}

func (c *Controller) FetchNext(ctx context.Context) error {
	const op = "table.FetchNext"

	c.mu.Lock()
	if c.inFlight || c.exhausted {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	skip := c.pages * storage.PageSize
	c.mu.Unlock()

	n, err := c.pager.FetchPage(ctx, skip)

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		c.mu.Unlock()
		// Loaded pages stay visible; scrolling again retries.
		return fmt.Errorf("%s: %w", op, err)
	}
	c.pages++
	if n < storage.PageSize {
		c.exhausted = true
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

// Refresh forgets fetched pages so the next scroll refetches from the
// start. Used after mutations and sort changes.
func (c *Controller) Refresh() {
	c.mu.Lock()
	c.resetPagesLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) resetPagesLocked() {
	c.pages = 0
	c.exhausted = false
}

// --- row actions ---

// UpdateField applies an edit from the inline cell editor. The values pass
// field validation first; a rejected edit is returned as validate.Errors
// and nothing is written anywhere. Draft rows are updated in the draft
// store only; server rows go through the record store, after which the
// record queries and the suggestion cache are invalidated. On failure no
// local state changes.
func (c *Controller) UpdateField(ctx context.Context, ref RowRef, values storage.LogValues) error {
	const op = "table.UpdateField"

	if errs := validate.Validate(values); errs != nil {
		return errs
	}

	if ref.DraftID != "" {
		if err := c.drafts.Update(ref.DraftID, values); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		c.notify()
		return nil
	}

	if err := c.records.Update(ctx, ref.ID, values); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.resetPagesLocked()
	invalidate := c.OnInvalidate
	c.mu.Unlock()

	if invalidate != nil {
		invalidate()
	}
	c.notify()
	return nil
}

// SubmitDraft turns a local draft into a server record: the draft's values
// are validated, created on the server, and the draft removed on success.
// A validation or create failure leaves the draft untouched.
func (c *Controller) SubmitDraft(ctx context.Context, draftID string) (int64, error) {
	const op = "table.SubmitDraft"

	values, err := c.drafts.Values(draftID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if errs := validate.Validate(values); errs != nil {
		return 0, errs
	}

	id, err := c.records.Create(ctx, values)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	// The record exists now. A failed removal leaves a stale draft behind,
	// which the operator can still delete by hand.
	if err := c.drafts.Remove(draftID); err != nil {
		c.log.Warn("submitted draft not removed", slog.String("op", op),
			slog.String("draft", draftID), slog.String("error", err.Error()))
	}

	c.mu.Lock()
	delete(c.selected, RowRef{DraftID: draftID}.key())
	c.resetPagesLocked()
	invalidate := c.OnInvalidate
	c.mu.Unlock()

	if invalidate != nil {
		invalidate()
	}
	c.notify()
	return id, nil
}

// DeleteRow removes a draft locally, or soft-deletes a server record after
// the caller confirmed.
func (c *Controller) DeleteRow(ctx context.Context, ref RowRef, confirmed bool) error {
	const op = "table.DeleteRow"

	if ref.DraftID != "" {
		if err := c.drafts.Remove(ref.DraftID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		c.mu.Lock()
		delete(c.selected, ref.key())
		c.mu.Unlock()
		c.notify()
		return nil
	}

	if !confirmed {
		return ErrConfirmRequired
	}

	if err := c.records.SoftDelete(ctx, ref.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	delete(c.selected, ref.key())
	c.resetPagesLocked()
	c.mu.Unlock()

	c.notify()
	return nil
}

// --- observers ---

func (c *Controller) Subscribe(fn func()) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
