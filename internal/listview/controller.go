// Package listview drives one list page: it fetches the filtered page of a
// resource, runs create, update and delete through a form, and refetches
// after every successful write.
package listview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/filters"
	"fintrack/internal/forms"
	applog "fintrack/internal/log"
)

var (
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrDefaultEntity  = errors.New("cannot modify default")
	ErrFormClosed     = errors.New("form is not open")
	ErrNotConfirmed   = errors.New("delete not confirmed")
	ErrInvalidForm    = errors.New("form has invalid fields")
)

// FormState is where the create/edit/delete dialog stands.
type FormState int

const (
	Closed FormState = iota
	CreateOpen
	EditOpen
	ConfirmDelete
)

func (s FormState) String() string {
	switch s {
	case CreateOpen:
		return "create"
	case EditOpen:
		return "edit"
	case ConfirmDelete:
		return "confirm-delete"
	}
	return "closed"
}

// Owned is implemented by entities that may be system defaults.
type Owned interface {
	IsDefault() bool
}

// Backend is the REST collection a controller drives. *api.Resource
// satisfies it.
type Backend[T any] interface {
	Name() string
	List(ctx context.Context, query url.Values) (api.Page[T], error)
	Create(ctx context.Context, payload any) (T, error)
	Update(ctx context.Context, id int64, payload any) (T, error)
	Delete(ctx context.Context, id int64) error
}

// EventPublisher announces successful writes. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishMutation(ctx context.Context, evt amqp.MutationEvent) error
}

// LocationStore remembers the last query of each list page.
type LocationStore interface {
	LoadLocation(ctx context.Context, resource string) (string, error)
	SaveLocation(ctx context.Context, resource, query string) error
}

// Invalidator drops cached data derived from the backend.
type Invalidator interface {
	Invalidate()
}

// Options wires the optional collaborators of a Controller.
type Options struct {
	Notifier  Notifier
	Publisher EventPublisher
	Locations LocationStore
	Lookups   Invalidator
	Logger    *applog.Logger
}

// View is a snapshot of a controller's state for rendering.
type View[T any] struct {
	Resource   string
	Query      string
	Filters    filters.Filters
	Items      []T
	Meta       core.PaginationMeta
	Kind       api.PageKind
	Loading    bool
	Err        error
	FormState  FormState
	Form       forms.Form
	DeleteID   int64
	Submitting bool
}

// Controller owns the state of one list page. It is safe for concurrent use;
// network calls run without holding the lock.
type Controller[T core.Entity] struct {
	backend   Backend[T]
	binder    forms.Binder[T]
	notifier  Notifier
	publisher EventPublisher
	locations LocationStore
	lookups   Invalidator
	logger    *applog.Logger

	mu      sync.Mutex
	query   string
	filters filters.Filters
	items   []T
	meta    core.PaginationMeta
	kind    api.PageKind
	lastErr error

	// fetch fencing
	issued    uint64
	pending   int
	discarded int

	state      FormState
	form       forms.Form
	deleteID   int64
	submitting bool
}

func New[T core.Entity](backend Backend[T], binder forms.Binder[T], opts Options) *Controller[T] {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &Controller[T]{
		backend:   backend,
		binder:    binder,
		notifier:  notifier,
		publisher: opts.Publisher,
		locations: opts.Locations,
		lookups:   opts.Lookups,
		logger:    logger.WithComponent(applog.ComponentListView).With(applog.FieldResource, backend.Name()),
		filters:   filters.Decode(""),
		items:     []T{},
		meta:      core.PaginationMeta{CurrentPage: 1, LastPage: 1},
		form:      binder.Blank(),
	}
}

func (c *Controller[T]) Resource() string { return c.backend.Name() }

// Load restores the last saved location of the page, if any, and fetches it.
func (c *Controller[T]) Load(ctx context.Context) error {
	query := ""
	if c.locations != nil {
		saved, err := c.locations.LoadLocation(ctx, c.backend.Name())
		if err != nil {
			c.logger.WarnContext(ctx, "Failed to restore list location", applog.FieldError, err.Error())
		} else {
			query = saved
		}
	}
	return c.Navigate(ctx, filters.Location{Resource: c.backend.Name(), Query: query})
}

// Navigate moves the page to loc and fetches it. It implements
// filters.Navigator.
func (c *Controller[T]) Navigate(ctx context.Context, loc filters.Location) error {
	c.mu.Lock()
	c.query = loc.Query
	c.filters = filters.Decode(loc.Query)
	c.mu.Unlock()

	if c.locations != nil {
		if err := c.locations.SaveLocation(ctx, c.backend.Name(), loc.Query); err != nil {
			c.logger.WarnContext(ctx, "Failed to save list location", applog.FieldError, err.Error())
		}
	}
	return c.Fetch(ctx)
}

// SetFilters merges updates into the current query and navigates there.
func (c *Controller[T]) SetFilters(ctx context.Context, updates map[string]string) error {
	c.mu.Lock()
	current := c.query
	c.mu.Unlock()
	_, err := filters.Push(ctx, c, c.backend.Name(), current, updates)
	return err
}

// GoToPage clamps page to the known page range and navigates there.
func (c *Controller[T]) GoToPage(ctx context.Context, page int) error {
	c.mu.Lock()
	last := c.meta.LastPage
	c.mu.Unlock()
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return c.SetFilters(ctx, map[string]string{filters.KeyPage: fmt.Sprint(page)})
}

// Fetch issues one GET for the current filters. A response that arrives
// after a newer fetch was issued is discarded. On failure the list is
// emptied and the error is reported.
func (c *Controller[T]) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.pending++
	query := c.filters.Query()
	c.mu.Unlock()

	page, err := c.backend.List(ctx, query)

	c.mu.Lock()
	c.pending--
	if seq != c.issued {
		c.discarded++
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "Discarded stale list response",
			applog.FieldSequence, seq, applog.FieldQuery, query.Encode())
		return nil
	}
	if err != nil {
		c.items = []T{}
		c.meta = core.PaginationMeta{CurrentPage: 1, LastPage: 1}
		c.kind = api.Plain
		c.lastErr = err
		c.mu.Unlock()
		c.logger.ErrorContext(ctx, "Failed to fetch list",
			applog.FieldOperation, applog.OpList, applog.FieldQuery, query.Encode(), applog.FieldError, err.Error())
		c.notifier.Notify(Notification{Level: LevelError, Message: Message(err)})
		return err
	}
	c.items = page.Items
	c.meta = page.Meta
	c.kind = page.Kind
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "Fetched list",
		applog.FieldSequence, seq,
		applog.FieldQuery, query.Encode(),
		applog.FieldCount, len(page.Items),
		applog.FieldPage, page.Meta.CurrentPage,
		applog.FieldTotal, page.Meta.Total)
	return nil
}

// OpenCreate opens the form in its blank create shape.
func (c *Controller[T]) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = CreateOpen
	c.form = c.binder.Blank()
	c.deleteID = 0
}

// OpenEdit projects item into the form. Default entities are refused.
func (c *Controller[T]) OpenEdit(item T) error {
	if err := c.guardOwned(item); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = EditOpen
	c.form = c.binder.FromEntity(item)
	c.form.EditID = item.EntityID()
	c.deleteID = 0
	return nil
}

// ConfirmDelete asks for confirmation before item is deleted. Default
// entities are refused.
func (c *Controller[T]) ConfirmDelete(item T) error {
	if err := c.guardOwned(item); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ConfirmDelete
	c.deleteID = item.EntityID()
	c.form = c.binder.Blank()
	return nil
}

func (c *Controller[T]) guardOwned(item T) error {
	if owned, ok := any(item).(Owned); ok && owned.IsDefault() {
		c.notifier.Notify(Notification{Level: LevelError, Message: ErrDefaultEntity.Error()})
		return ErrDefaultEntity
	}
	return nil
}

// Close dismisses the dialog and resets the form to the create shape.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.close()
}

func (c *Controller[T]) close() {
	c.state = Closed
	c.form = c.binder.Blank()
	c.deleteID = 0
}

// SetField updates one form field.
func (c *Controller[T]) SetField(field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Set(field, value)
}

// Submit sends the form: POST when creating, PUT when editing. On success
// the list is refetched before the form closes. On failure the form stays
// open with the error inline and nothing is refetched.
func (c *Controller[T]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	if c.state != CreateOpen && c.state != EditOpen {
		c.mu.Unlock()
		return ErrFormClosed
	}
	payload, fieldErrs := c.binder.Payload(c.form)
	if len(fieldErrs) > 0 {
		c.form.Errors = fieldErrs
		c.form.Message = ""
		c.mu.Unlock()
		return ErrInvalidForm
	}
	c.form.Errors = forms.Errors{}
	c.form.Message = ""
	c.submitting = true
	editID := c.form.EditID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	var (
		saved  T
		err    error
		op     = applog.OpCreate
		action = amqp.ActionCreated
	)
	if editID == 0 {
		saved, err = c.backend.Create(ctx, payload)
	} else {
		op, action = applog.OpUpdate, amqp.ActionUpdated
		saved, err = c.backend.Update(ctx, editID, payload)
	}
	if err != nil {
		c.fail(ctx, op, editID, err)
		return err
	}

	id := editID
	if id == 0 {
		id = saved.EntityID()
	}
	c.succeed(ctx, op, action, id)
	return nil
}

// Delete removes the entity awaiting confirmation.
func (c *Controller[T]) Delete(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	if c.state != ConfirmDelete || c.deleteID == 0 {
		c.mu.Unlock()
		return ErrNotConfirmed
	}
	c.submitting = true
	id := c.deleteID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	if err := c.backend.Delete(ctx, id); err != nil {
		c.fail(ctx, applog.OpDelete, id, err)
		return err
	}
	c.succeed(ctx, applog.OpDelete, amqp.ActionDeleted, id)
	return nil
}

func (c *Controller[T]) fail(ctx context.Context, op string, id int64, err error) {
	msg := Message(err)

	c.mu.Lock()
	c.form.Message = msg
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if c.form.Errors == nil {
			c.form.Errors = forms.Errors{}
		}
		for _, field := range apiErr.Fields() {
			c.form.Errors.Add(field, apiErr.FieldError(field))
		}
	}
	c.mu.Unlock()

	c.logger.WarnContext(ctx, "Mutation failed", applog.NewFields().
		WithOperation(op).
		WithResource(c.backend.Name(), id).
		WithError(err).ToSlice()...)
	c.notifier.Notify(Notification{Level: LevelError, Message: msg})
}

func (c *Controller[T]) succeed(ctx context.Context, op string, action amqp.Action, id int64) {
	if c.lookups != nil {
		c.lookups.Invalidate()
	}
	c.publish(ctx, action, id)

	// The refetch reports its own failure; the write itself went through.
	_ = c.Fetch(ctx)

	c.mu.Lock()
	c.close()
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Mutation succeeded", applog.NewFields().
		WithOperation(op).
		WithResource(c.backend.Name(), id).ToSlice()...)
	c.notifier.Notify(Notification{Level: LevelSuccess, Message: successMessage(action)})
}

func (c *Controller[T]) publish(ctx context.Context, action amqp.Action, id int64) {
	if c.publisher == nil {
		return
	}
	evt := amqp.NewMutationEvent(c.backend.Name(), action, id)
	if err := c.publisher.PublishMutation(ctx, evt); err != nil {
		c.logger.ErrorContext(ctx, "Failed to publish mutation event",
			applog.FieldEntityID, id, applog.FieldError, err.Error())
	}
}

func successMessage(action amqp.Action) string {
	switch action {
	case amqp.ActionCreated:
		return "Created successfully"
	case amqp.ActionUpdated:
		return "Updated successfully"
	}
	return "Deleted successfully"
}

// View returns a snapshot of the page state.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return View[T]{
		Resource:   c.backend.Name(),
		Query:      c.query,
		Filters:    c.filters,
		Items:      items,
		Meta:       c.meta,
		Kind:       c.kind,
		Loading:    c.pending > 0,
		Err:        c.lastErr,
		FormState:  c.state,
		Form:       c.form.Clone(),
		DeleteID:   c.deleteID,
		Submitting: c.submitting,
	}
}

// Items returns the loaded page.
func (c *Controller[T]) Items() []T {
	return c.View().Items
}

// Find returns the loaded item with the given id.
func (c *Controller[T]) Find(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Discarded counts stale responses dropped so far.
func (c *Controller[T]) Discarded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discarded
}
