package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"venuebooking/internal/domain"
)

const testTimeout = 5 * time.Second

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

// fakeEventRepo is an in-memory EventRepository. It hands out copies, like a real store.
type fakeEventRepo struct {
	mu            sync.Mutex
	byID          map[string]*domain.Event
	getErr        error
	markBookedErr error
	setCalErr     error
	// inUse marks event ids that bookings reference.
	inUse map[string]bool
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event)}
	for _, e := range events {
		f.byID[e.ID] = copyEvent(e)
	}
	return f
}

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	return &c
}

func (f *fakeEventRepo) get(id string) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		return copyEvent(e)
	}
	return nil
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[e.ID]; ok {
		return domain.ErrEventExists
	}
	f.byID[e.ID] = copyEvent(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if e := f.get(id); e != nil {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if status == "" || e.Status == status {
			out = append(out, copyEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.byID[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Title, cur.Date, cur.StartTime, cur.EndTime = e.Title, e.Date, e.StartTime, e.EndTime
	cur.Description, cur.PerformerEmail, cur.UpdatedAt = e.Description, e.PerformerEmail, e.UpdatedAt
	return nil
}

func (f *fakeEventRepo) Rekey(ctx context.Context, oldID string, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.byID[oldID]
	if !ok {
		return domain.ErrNotFound
	}
	if f.inUse[oldID] {
		return domain.ErrEventInUse
	}
	if _, taken := f.byID[e.ID]; taken {
		return domain.ErrEventExists
	}
	moved := copyEvent(cur)
	moved.ID = e.ID
	moved.Title, moved.Date, moved.StartTime, moved.EndTime = e.Title, e.Date, e.StartTime, e.EndTime
	moved.Description, moved.PerformerEmail, moved.UpdatedAt = e.Description, e.PerformerEmail, e.UpdatedAt
	delete(f.byID, oldID)
	f.byID[e.ID] = moved
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) MarkBooked(ctx context.Context, id, performerID string, bookedAt time.Time) error {
	if f.markBookedErr != nil {
		return f.markBookedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = domain.EventBooked
	e.BookedPerformerID = &performerID
	e.BookedAt = &bookedAt
	return nil
}

func (f *fakeEventRepo) SetCalendarEventID(ctx context.Context, id, calendarEventID string) (bool, error) {
	if f.setCalErr != nil {
		return false, f.setCalErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if e.CalendarEventID != nil {
		return false, nil
	}
	e.CalendarEventID = &calendarEventID
	return true, nil
}

func (f *fakeEventRepo) ListCalendarEventIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0)
	for _, e := range f.byID {
		if e.CalendarEventID != nil {
			ids = append(ids, *e.CalendarEventID)
		}
	}
	return ids, nil
}

// fakeBookingRepo is an in-memory BookingRepository that enforces one approved booking per event.
type fakeBookingRepo struct {
	mu         sync.Mutex
	byID       map[string]*domain.Booking
	approveErr error
	listErr    error
	deleteErr  map[string]error
	// afterList runs once, after ListByStatus has read the store.
	afterList func()
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	f := &fakeBookingRepo{byID: make(map[string]*domain.Booking), deleteErr: make(map[string]error)}
	for _, b := range bookings {
		f.byID[b.ID] = copyBooking(b)
	}
	return f
}

func copyBooking(b *domain.Booking) *domain.Booking {
	c := *b
	return &c
}

func (f *fakeBookingRepo) insert(b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[b.ID]; ok {
		return fmt.Errorf("duplicate booking id %s", b.ID)
	}
	f.byID[b.ID] = copyBooking(b)
	return nil
}

func (f *fakeBookingRepo) get(id string) *domain.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.byID[id]; ok {
		return copyBooking(b)
	}
	return nil
}

func (f *fakeBookingRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if b := f.get(id); b != nil {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBookingRepo) filter(keep func(*domain.Booking) bool) []*domain.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Booking, 0)
	for _, b := range f.byID {
		if keep(b) {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeBookingRepo) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	out := f.filter(func(b *domain.Booking) bool { return b.Status == status })
	if hook := f.afterList; hook != nil {
		f.afterList = nil
		hook()
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByEventAndStatus(ctx context.Context, eventID string, status domain.BookingStatus) ([]*domain.Booking, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.filter(func(b *domain.Booking) bool { return b.EventID == eventID && b.Status == status }), nil
}

func (f *fakeBookingRepo) GetApprovedByEventID(ctx context.Context, eventID string) (*domain.Booking, error) {
	approved := f.filter(func(b *domain.Booking) bool { return b.EventID == eventID && b.Status == domain.BookingApproved })
	if len(approved) == 0 {
		return nil, domain.ErrNotFound
	}
	return approved[0], nil
}

func (f *fakeBookingRepo) Approve(ctx context.Context, id string, approvedAt time.Time) (*domain.Booking, error) {
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, other := range f.byID {
		if other.ID != id && other.EventID == b.EventID && other.Status == domain.BookingApproved {
			return nil, domain.ErrSlotTaken
		}
	}
	b.Status = domain.BookingApproved
	if b.ApprovedAt == nil {
		b.ApprovedAt = &approvedAt
	}
	return copyBooking(b), nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id string) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

// fakeInvitationRepo claims and inserts under one lock, mirroring the transactional repository.
type fakeInvitationRepo struct {
	mu        sync.Mutex
	byToken   map[string]*domain.Invitation
	events    *fakeEventRepo
	bookings  *fakeBookingRepo
	createErr error
	redeemErr error
}

func newFakeInvitationRepo(events *fakeEventRepo, bookings *fakeBookingRepo) *fakeInvitationRepo {
	return &fakeInvitationRepo{byToken: make(map[string]*domain.Invitation), events: events, bookings: bookings}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *inv
	f.byToken[inv.Token] = &c
	return nil
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]*domain.Invitation, 0)
	for _, inv := range f.byToken {
		if inv.EventID == eventID {
			c := *inv
			all = append(all, &c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Token < all[j].Token })
	start := min(params.Offset(), len(all))
	end := min(start+params.Limit(), len(all))
	return all[start:end], len(all), nil
}

func (f *fakeInvitationRepo) Redeem(ctx context.Context, token string, now time.Time, build domain.BookingBuilder) (*domain.Booking, error) {
	if f.redeemErr != nil {
		return nil, f.redeemErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byToken[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	if err := inv.RedeemCheck(now); err != nil {
		return nil, err
	}
	event := f.events.get(inv.EventID)
	if event == nil {
		return nil, domain.ErrNotFound
	}
	booking := build(inv, event)
	if err := f.bookings.insert(booking); err != nil {
		return nil, err
	}
	inv.Claimed = true
	return booking, nil
}

// fakeCalendar records calls made to the CalendarBridge.
type fakeCalendar struct {
	mu           sync.Mutex
	unconfigured bool
	createErr    error
	created      []*domain.Booking
	deleted      []string
	entries      []*domain.CalendarEntry
	listErr      error
	listToken    string
}

func (f *fakeCalendar) Configured() bool { return !f.unconfigured }

func (f *fakeCalendar) CreateEvent(ctx context.Context, token string, booking *domain.Booking) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, booking)
	return fmt.Sprintf("gcal-%d", len(f.created)), nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, token, externalID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, externalID)
}

func (f *fakeCalendar) ListEvents(ctx context.Context, token string, timeMin, timeMax time.Time) ([]*domain.CalendarEntry, error) {
	f.listToken = token
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

// fakeEmailService captures outgoing emails.
type fakeEmailService struct {
	invitations []*domain.InvitationEmailData
	approvals   []*domain.BookingApprovedEmailData
	err         error
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.invitations = append(f.invitations, data)
	return nil
}

func (f *fakeEmailService) SendBookingApproved(ctx context.Context, data *domain.BookingApprovedEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.approvals = append(f.approvals, data)
	return nil
}

// fakeCache is an in-memory ViewCache. Fills under a superseded generation are dropped.
type fakeCache struct {
	mu            sync.Mutex
	gen           int64
	bookings      map[domain.BookingStatus][]*domain.Booking
	events        map[domain.EventStatus][]*domain.Event
	invalidations int
	getErr        error
	genErr        error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		bookings: make(map[domain.BookingStatus][]*domain.Booking),
		events:   make(map[domain.EventStatus][]*domain.Event),
	}
}

func (f *fakeCache) Generation(ctx context.Context) (int64, error) {
	if f.genErr != nil {
		return 0, f.genErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen, nil
}

func (f *fakeCache) GetBookings(ctx context.Context, gen int64, status domain.BookingStatus) ([]*domain.Booking, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return nil, false, nil
	}
	b, ok := f.bookings[status]
	return b, ok, nil
}

func (f *fakeCache) SetBookings(ctx context.Context, gen int64, status domain.BookingStatus, bookings []*domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen == f.gen {
		f.bookings[status] = bookings
	}
	return nil
}

func (f *fakeCache) GetEvents(ctx context.Context, gen int64, status domain.EventStatus) ([]*domain.Event, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return nil, false, nil
	}
	e, ok := f.events[status]
	return e, ok, nil
}

func (f *fakeCache) SetEvents(ctx context.Context, gen int64, status domain.EventStatus, events []*domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen == f.gen {
		f.events[status] = events
	}
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations++
	f.gen++
	f.bookings = make(map[domain.BookingStatus][]*domain.Booking)
	f.events = make(map[domain.EventStatus][]*domain.Event)
	return nil
}
