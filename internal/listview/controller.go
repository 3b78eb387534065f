package listview

import "strings"

// Action is a status mutation requested from the controller's owner.
type Action struct {
	RecordID string
	Status   string
	Reason   string
}

// Dispatcher receives status mutation requests. It does not return the mutated record; the owner
// supplies a refreshed collection through SetRecords once the mutation has been applied.
type Dispatcher func(action Action)

// EmptyState distinguishes an empty collection from a filter that excludes everything.
type EmptyState string

const (
	EmptyNone      EmptyState = ""
	EmptyNoRecords EmptyState = "no_records"
	EmptyNoMatches EmptyState = "no_matches"
)

// RejectModal is the pending rejection awaiting a reason.
type RejectModal struct {
	Open     bool   `json:"open"`
	RecordID string `json:"record_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// State is the serialisable part of a controller: everything except the records and dispatcher.
type State struct {
	Search   string      `json:"search"`
	Status   string      `json:"status"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Modal    RejectModal `json:"modal"`
	// Total is the filtered total when the state was taken. Restore compares it with the
	// current collection so a total changed by someone else still returns to page 1.
	Total *int `json:"total,omitempty"`
}

// Row is a displayed record plus whether approve/reject controls are offered for it.
type Row[T Record] struct {
	Record     T    `json:"record"`
	Actionable bool `json:"actionable"`
}

// View is the rendered result of the controller's current state.
type View[T Record] struct {
	Rows         []Row[T]    `json:"rows"`
	Search       string      `json:"search"`
	Status       string      `json:"status"`
	Page         int         `json:"page"`
	PageSize     int         `json:"page_size"`
	TotalPages   int         `json:"total_pages"`
	TotalItems   int         `json:"total_items"`
	TotalRecords int         `json:"total_records"`
	Empty        EmptyState  `json:"empty_state"`
	Modal        RejectModal `json:"modal"`
}

// Option customises a Controller.
type Option func(*options)

type options struct {
	pageSize int
}

// WithPageSize sets the initial page size.
func WithPageSize(size int) Option {
	return func(o *options) {
		o.pageSize = size
	}
}

// Controller keeps the search/filter/page state of a list and the reject modal for one owner.
// It is not safe for concurrent use.
type Controller[T Record] struct {
	records  []T
	dispatch Dispatcher
	state    State
}

// New constructs a controller with no records, the "all" filter and page 1.
func New[T Record](dispatch Dispatcher, opts ...Option) *Controller[T] {
	cfg := options{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.pageSize <= 0 {
		cfg.pageSize = DefaultPageSize
	}

	return &Controller[T]{
		dispatch: dispatch,
		state: State{
			Status:   StatusAll,
			Page:     1,
			PageSize: cfg.pageSize,
		},
	}
}

// State returns a copy of the controller state stamped with the current filtered total.
func (c *Controller[T]) State() State {
	state := c.state
	total := len(c.filtered())
	state.Total = &total
	return state
}

// Restore replaces the controller state, normalising the filter. The page returns to 1 when the
// stamped total differs from the filtered total of the current records; otherwise it is clamped.
func (c *Controller[T]) Restore(state State) {
	if state.PageSize <= 0 {
		state.PageSize = c.state.PageSize
	}
	state.Status = NormalizeStatusFilter(state.Status)
	if !state.Modal.Open {
		state.Modal = RejectModal{}
	}
	previous := state.Total
	state.Total = nil
	c.state = state

	if previous == nil {
		c.state.Page = ClampPage(c.state.Page, len(c.filtered()), c.state.PageSize)
		return
	}
	c.settlePage(*previous)
}

// SetRecords replaces the collection supplied by the owner.
func (c *Controller[T]) SetRecords(records []T) {
	before := len(c.filtered())
	c.records = records
	c.settlePage(before)
}

// SetSearch changes the search term.
func (c *Controller[T]) SetSearch(term string) {
	before := len(c.filtered())
	c.state.Search = term
	c.settlePage(before)
}

// SetStatusFilter changes the status filter; an empty value means "all".
func (c *Controller[T]) SetStatusFilter(status string) {
	before := len(c.filtered())
	c.state.Status = NormalizeStatusFilter(status)
	c.settlePage(before)
}

// SetPageSize changes the page size and returns to page 1.
func (c *Controller[T]) SetPageSize(size int) {
	if size <= 0 || size == c.state.PageSize {
		return
	}
	c.state.PageSize = size
	c.state.Page = 1
}

// SetPage navigates to page, clamped into range.
func (c *Controller[T]) SetPage(page int) {
	c.state.Page = ClampPage(page, len(c.filtered()), c.state.PageSize)
}

// NextPage advances one page unless already on the last.
func (c *Controller[T]) NextPage() {
	c.SetPage(c.state.Page + 1)
}

// PrevPage goes back one page unless already on the first.
func (c *Controller[T]) PrevPage() {
	c.SetPage(c.state.Page - 1)
}

// settlePage resets to page 1 when the filtered total changed, otherwise clamps.
func (c *Controller[T]) settlePage(previousTotal int) {
	total := len(c.filtered())
	if total != previousTotal {
		c.state.Page = 1
		return
	}
	c.state.Page = ClampPage(c.state.Page, total, c.state.PageSize)
}

func (c *Controller[T]) filtered() []T {
	return Filter(c.records, c.state.Search, c.state.Status)
}

// View renders the current page.
func (c *Controller[T]) View() View[T] {
	filtered := c.filtered()
	page := Paginate(filtered, c.state.Page, c.state.PageSize)

	rows := make([]Row[T], 0, len(page.Items))
	for _, record := range page.Items {
		rows = append(rows, Row[T]{Record: record, Actionable: IsActionable(record)})
	}

	empty := EmptyNone
	switch {
	case len(c.records) == 0:
		empty = EmptyNoRecords
	case len(filtered) == 0:
		empty = EmptyNoMatches
	}

	return View[T]{
		Rows:         rows,
		Search:       c.state.Search,
		Status:       c.state.Status,
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalPages:   page.TotalPages,
		TotalItems:   page.TotalItems,
		TotalRecords: len(c.records),
		Empty:        empty,
		Modal:        c.state.Modal,
	}
}

// Find returns the record with the given id from the current collection.
func (c *Controller[T]) Find(id string) (T, bool) {
	for _, record := range c.records {
		if record.RecordID() == id {
			return record, true
		}
	}
	var zero T
	return zero, false
}

// RequestApprove dispatches an approval for a pending record. It reports false, without
// dispatching, when the record is unknown or already in a terminal status.
func (c *Controller[T]) RequestApprove(id string) bool {
	record, ok := c.Find(id)
	if !ok || !IsActionable(record) {
		return false
	}
	c.emit(Action{RecordID: id, Status: StatusApproved})
	return true
}

// RequestReject opens the reject modal for a pending record without dispatching anything.
func (c *Controller[T]) RequestReject(id string) bool {
	record, ok := c.Find(id)
	if !ok || !IsActionable(record) {
		return false
	}
	c.state.Modal = RejectModal{Open: true, RecordID: id}
	return true
}

// Modal returns the reject modal state.
func (c *Controller[T]) Modal() RejectModal {
	return c.state.Modal
}

// SetReason updates the reason buffer of an open modal.
func (c *Controller[T]) SetReason(reason string) {
	if !c.state.Modal.Open {
		return
	}
	c.state.Modal.Reason = reason
}

// ConfirmReject dispatches the rejection with the trimmed reason and closes the modal. A blank
// reason, or a modal not open for id, leaves the state untouched (apart from the reason buffer)
// and dispatches nothing.
func (c *Controller[T]) ConfirmReject(id, reason string) bool {
	if !c.state.Modal.Open || c.state.Modal.RecordID != id {
		return false
	}
	c.state.Modal.Reason = reason

	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return false
	}

	c.state.Modal = RejectModal{}
	c.emit(Action{RecordID: id, Status: StatusRejected, Reason: trimmed})
	return true
}

// CancelReject closes the modal and discards the reason buffer.
func (c *Controller[T]) CancelReject() {
	c.state.Modal = RejectModal{}
}

func (c *Controller[T]) emit(action Action) {
	if c.dispatch != nil {
		c.dispatch(action)
	}
}
