// Package testutil provides in-memory stand-ins for the Mongo repositories
// and the external collaborators, sharing one transactional store.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	bookingserrors "hotelops/internal/bookings/errors"
	checkinserrors "hotelops/internal/checkins/errors"
	guestserrors "hotelops/internal/guests/errors"
	roomserrors "hotelops/internal/rooms/errors"
	"hotelops/pkg/config"
	mongotx "hotelops/pkg/db/mongo"
	"hotelops/pkg/logger"
	"hotelops/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrWriteConflict is what a transaction gets when another one committed a
// write to a document it also wrote. ExecuteTransaction retries on it.
var ErrWriteConflict = errors.New("write conflict")

const maxTxAttempts = 10

type txKey struct{}

// data holds the collections that take part in transactions.
type data struct {
	Bookings  map[string]*model.Booking
	CheckIns  []*model.CheckIn
	CheckOuts []*model.CheckOut
	Invites   []*model.RoomInvite
}

func (d *data) clone() *data {
	cp := &data{Bookings: make(map[string]*model.Booking, len(d.Bookings))}
	for id, b := range d.Bookings {
		cp.Bookings[id] = b
	}
	cp.CheckIns = append([]*model.CheckIn(nil), d.CheckIns...)
	cp.CheckOuts = append([]*model.CheckOut(nil), d.CheckOuts...)
	cp.Invites = append([]*model.RoomInvite(nil), d.Invites...)
	return cp
}

// tx mirrors a snapshot transaction: reads see the view taken at start plus
// the transaction's own writes, and commit fails if any written document was
// changed by a transaction that committed in the meantime.
type tx struct {
	view    *data
	seen    map[string]int64
	written map[string]struct{}
	ops     []func(*data)
}

// Store is the in-memory database. Transactions run concurrently with
// snapshot isolation and first-committer-wins on written documents, so
// write skew shows up here the way it does on a replica set.
// Repositories never modify stored records in place; writes swap in copies.
type Store struct {
	mu sync.Mutex
	data

	versions map[string]int64

	Rooms   map[string]*model.Room
	Guests  map[string]*model.Guest
	Locks   map[string]*model.RoomLock
	LockTTL time.Duration

	// Errors injects a failure into the named repository method.
	Errors map[string]error
	// Hooks run when the named repository method is entered.
	Hooks map[string]func()
}

func NewStore() *Store {
	return &Store{
		data:     data{Bookings: map[string]*model.Booking{}},
		versions: map[string]int64{},
		Rooms:    map[string]*model.Room{},
		Guests:   map[string]*model.Guest{},
		Locks:    map[string]*model.RoomLock{},
		LockTTL:  10 * time.Second,
		Errors:   map[string]error{},
		Hooks:    map[string]func(){},
	}
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// enter runs the method's hook and returns its injected error.
func (s *Store) enter(method string) error {
	s.mu.Lock()
	hook := s.Hooks[method]
	err := s.Errors[method]
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

func (s *Store) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		t := s.begin()
		if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
			return err
		}
		err := s.commit(t)
		if errors.Is(err, ErrWriteConflict) {
			continue
		}
		return err
	}
	return ErrWriteConflict
}

func (s *Store) begin() *tx {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]int64, len(s.versions))
	for k, v := range s.versions {
		seen[k] = v
	}
	return &tx{view: s.data.clone(), seen: seen, written: map[string]struct{}{}}
}

func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range t.written {
		if s.versions[key] != t.seen[key] {
			return ErrWriteConflict
		}
	}
	for _, op := range t.ops {
		op(&s.data)
	}
	for key := range t.written {
		s.versions[key]++
	}
	return nil
}

// read runs fn on the transaction's view, or on committed data outside one.
func (s *Store) read(ctx context.Context, fn func(d *data)) {
	if t := txFrom(ctx); t != nil {
		fn(t.view)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
}

// write applies op at once, inside a transaction to its view and again to
// committed data on commit. keys name the documents op modifies.
func (s *Store) write(ctx context.Context, op func(d *data), keys ...string) {
	if t := txFrom(ctx); t != nil {
		op(t.view)
		t.ops = append(t.ops, op)
		for _, key := range keys {
			t.written[key] = struct{}{}
		}
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	op(&s.data)
	for _, key := range keys {
		s.versions[key]++
	}
}

func bookingKey(id string) string { return "bookings/" + id }

func inviteKey(bookingID, email string) string { return "invites/" + bookingID + "/" + email }

// ─── Seeding ─────────────────────────────────────────────────────────────────

func (s *Store) AddRoom(number string, capacity int, pricePerNight int64) *model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := &model.Room{ID: newID(), Number: number, Capacity: capacity, PricePerNight: pricePerNight, Currency: "usd"}
	s.Rooms[room.ID] = room
	return room
}

func (s *Store) AddGuest(email, role string) *model.Guest {
	s.mu.Lock()
	defer s.mu.Unlock()

	guest := &model.Guest{ID: newID(), Email: email, FirstName: "Test", LastName: "Guest", Role: role}
	s.Guests[guest.ID] = guest
	return guest
}

// AddBooking inserts a booking directly, bypassing the lifecycle rules.
func (s *Store) AddBooking(room *model.Room, owner *model.Guest, start, end time.Time, status string) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &model.Booking{
		ID:            newID(),
		BookingNumber: "BK-TEST-" + newID()[:8],
		RoomID:        room.ID,
		OwnerID:       owner.ID,
		OwnerEmail:    owner.Email,
		StartDate:     start,
		EndDate:       end,
		Status:        status,
		PaymentMethod: model.PaymentMethodOnSite,
		Currency:      "usd",
	}
	s.Bookings[b.ID] = b
	return b
}

func (s *Store) Booking(id string) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.Bookings[id]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

// ─── Booking repository ──────────────────────────────────────────────────────

type BookingRepo struct{ *Store }

func (r BookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if err := r.enter("Bookings.Create"); err != nil {
		return err
	}

	booking.ID = newID()
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	cp := *booking
	r.write(ctx, func(d *data) { d.Bookings[cp.ID] = &cp })
	return nil
}

func (r BookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, bookingserrors.ErrInvalidID
	}

	var found *model.Booking
	r.read(ctx, func(d *data) {
		if b, ok := d.Bookings[id]; ok {
			cp := *b
			found = &cp
		}
	})
	if found == nil {
		return nil, bookingserrors.ErrNotFound
	}
	return found, nil
}

func (r BookingRepo) FindByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	return r.filter(ctx, func(b *model.Booking) bool { return b.OwnerID == ownerID }), nil
}

func (r BookingRepo) Update(ctx context.Context, booking *model.Booking) error {
	if err := r.enter("Bookings.Update"); err != nil {
		return err
	}
	if _, err := r.FindByID(ctx, booking.ID); err != nil {
		return err
	}

	booking.UpdatedAt = time.Now().UTC()
	cp := *booking
	r.write(ctx, func(d *data) {
		if current, ok := d.Bookings[cp.ID]; ok {
			next := cp
			next.PresenceVersion = current.PresenceVersion
			d.Bookings[cp.ID] = &next
		}
	}, bookingKey(booking.ID))
	return nil
}

func (r BookingRepo) TouchPresence(ctx context.Context, bookingID string) error {
	if err := r.enter("Bookings.TouchPresence"); err != nil {
		return err
	}
	if _, err := r.FindByID(ctx, bookingID); err != nil {
		return err
	}

	r.write(ctx, func(d *data) {
		if current, ok := d.Bookings[bookingID]; ok {
			next := *current
			next.PresenceVersion++
			d.Bookings[bookingID] = &next
		}
	}, bookingKey(bookingID))
	return nil
}

func (r BookingRepo) CountBlockingOverlaps(ctx context.Context, roomID string, start, end time.Time) (int64, error) {
	matches := r.filter(ctx, func(b *model.Booking) bool {
		if b.RoomID != roomID || b.Status == model.BookingStatusCancelled {
			return false
		}
		return !b.StartDate.After(end) && !b.EndDate.Before(start)
	})
	return int64(len(matches)), nil
}

func (r BookingRepo) FindCoveringDay(ctx context.Context, roomID string, day time.Time) ([]*model.Booking, error) {
	return r.filter(ctx, func(b *model.Booking) bool { return b.RoomID == roomID && b.Covers(day) }), nil
}

func (r BookingRepo) FindEndingBetween(ctx context.Context, from, to time.Time) ([]*model.Booking, error) {
	if err := r.enter("Bookings.FindEndingBetween"); err != nil {
		return nil, err
	}
	return r.filter(ctx, func(b *model.Booking) bool { return !b.EndDate.Before(from) && !b.EndDate.After(to) }), nil
}

func (r BookingRepo) filter(ctx context.Context, keep func(*model.Booking) bool) []*model.Booking {
	var out []*model.Booking
	r.read(ctx, func(d *data) {
		for _, b := range d.Bookings {
			if keep(b) {
				cp := *b
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

// ─── Room lock repository ────────────────────────────────────────────────────

// RoomLockRepo keeps locks outside transactions, as the Mongo repository does.
type RoomLockRepo struct{ *Store }

func (r RoomLockRepo) Acquire(_ context.Context, roomID string) (*model.RoomLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	id := "room_lock_" + roomID
	if lock, held := r.Locks[id]; held && lock.ExpiresAt.After(now) {
		return nil, bookingserrors.ErrLockHeld
	}
	lock := &model.RoomLock{ID: id, RoomID: roomID, Owner: uuid.NewString(), ExpiresAt: now.Add(r.LockTTL), CreatedAt: now}
	r.Locks[id] = lock
	cp := *lock
	return &cp, nil
}

func (r RoomLockRepo) Release(_ context.Context, lock *model.RoomLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, held := r.Locks[lock.ID]
	if !held || current.Owner != lock.Owner {
		return bookingserrors.ErrLockLost
	}
	delete(r.Locks, lock.ID)
	return nil
}

// ExpireLock backdates a room's lock as if its TTL had run out.
func (s *Store) ExpireLock(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lock, held := s.Locks["room_lock_"+roomID]; held {
		lock.ExpiresAt = time.Now().Add(-time.Second)
	}
}

// ─── Room and guest repositories ─────────────────────────────────────────────

type RoomRepo struct{ *Store }

func (r RoomRepo) FindByID(_ context.Context, id string) (*model.Room, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, roomserrors.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.Rooms[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	cp := *room
	return &cp, nil
}

type GuestRepo struct{ *Store }

func (r GuestRepo) FindByID(_ context.Context, id string) (*model.Guest, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, guestserrors.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	guest, ok := r.Guests[id]
	if !ok {
		return nil, guestserrors.ErrNotFound
	}
	cp := *guest
	return &cp, nil
}

func (r GuestRepo) FindByEmail(_ context.Context, email string) (*model.Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, guest := range r.Guests {
		if guest.Email == email {
			cp := *guest
			return &cp, nil
		}
	}
	return nil, guestserrors.ErrNotFound
}

// ─── Check-in, check-out and invite repositories ─────────────────────────────

type CheckInRepo struct{ *Store }

func (r CheckInRepo) Create(ctx context.Context, checkIn *model.CheckIn) error {
	if err := r.enter("CheckIns.Create"); err != nil {
		return err
	}

	checkIn.ID = newID()
	cp := *checkIn
	r.write(ctx, func(d *data) { d.CheckIns = append(d.CheckIns, &cp) })
	return nil
}

func (r CheckInRepo) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	return int64(len(r.checkIns(ctx, func(c *model.CheckIn) bool { return c.BookingID == bookingID }))), nil
}

func (r CheckInRepo) CountByBookingAndGuest(ctx context.Context, bookingID, guestEmail string) (int64, error) {
	return int64(len(r.checkIns(ctx, func(c *model.CheckIn) bool {
		return c.BookingID == bookingID && c.GuestEmail == guestEmail
	}))), nil
}

func (r CheckInRepo) FindByBooking(ctx context.Context, bookingID string) ([]*model.CheckIn, error) {
	return r.checkIns(ctx, func(c *model.CheckIn) bool { return c.BookingID == bookingID }), nil
}

func (r CheckInRepo) FindByGuestEmail(ctx context.Context, guestEmail string) ([]*model.CheckIn, error) {
	return r.checkIns(ctx, func(c *model.CheckIn) bool { return c.GuestEmail == guestEmail }), nil
}

func (r CheckInRepo) DeleteByBookingAndGuest(ctx context.Context, bookingID, guestEmail string) (int64, error) {
	match := func(c *model.CheckIn) bool { return c.BookingID == bookingID && c.GuestEmail == guestEmail }

	matched := r.checkIns(ctx, match)
	keys := make([]string, 0, len(matched))
	for _, c := range matched {
		keys = append(keys, "check_ins/"+c.ID)
	}

	r.write(ctx, func(d *data) {
		var kept []*model.CheckIn
		for _, c := range d.CheckIns {
			if !match(c) {
				kept = append(kept, c)
			}
		}
		d.CheckIns = kept
	}, keys...)
	return int64(len(matched)), nil
}

func (r CheckInRepo) checkIns(ctx context.Context, keep func(*model.CheckIn) bool) []*model.CheckIn {
	var out []*model.CheckIn
	r.read(ctx, func(d *data) {
		for _, c := range d.CheckIns {
			if keep(c) {
				cp := *c
				cp.Document = nil
				out = append(out, &cp)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CheckedInAt.Before(out[j].CheckedInAt) })
	return out
}

type CheckOutRepo struct{ *Store }

func (r CheckOutRepo) CreateMany(ctx context.Context, checkOuts []*model.CheckOut) error {
	if err := r.enter("CheckOuts.CreateMany"); err != nil {
		return err
	}

	copies := make([]*model.CheckOut, 0, len(checkOuts))
	for _, c := range checkOuts {
		c.ID = newID()
		cp := *c
		copies = append(copies, &cp)
	}
	r.write(ctx, func(d *data) { d.CheckOuts = append(d.CheckOuts, copies...) })
	return nil
}

func (r CheckOutRepo) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	return int64(len(r.checkOuts(ctx, func(c *model.CheckOut) bool { return c.BookingID == bookingID }))), nil
}

func (r CheckOutRepo) FindByBooking(ctx context.Context, bookingID string) ([]*model.CheckOut, error) {
	return r.checkOuts(ctx, func(c *model.CheckOut) bool { return c.BookingID == bookingID }), nil
}

func (r CheckOutRepo) FindByGuestEmail(ctx context.Context, guestEmail string) ([]*model.CheckOut, error) {
	return r.checkOuts(ctx, func(c *model.CheckOut) bool { return c.GuestEmail == guestEmail }), nil
}

func (r CheckOutRepo) DeleteByBookingAndGuest(ctx context.Context, bookingID, guestEmail string) (int64, error) {
	match := func(c *model.CheckOut) bool { return c.BookingID == bookingID && c.GuestEmail == guestEmail }

	matched := r.checkOuts(ctx, match)
	keys := make([]string, 0, len(matched))
	for _, c := range matched {
		keys = append(keys, "check_outs/"+c.ID)
	}

	r.write(ctx, func(d *data) {
		var kept []*model.CheckOut
		for _, c := range d.CheckOuts {
			if !match(c) {
				kept = append(kept, c)
			}
		}
		d.CheckOuts = kept
	}, keys...)
	return int64(len(matched)), nil
}

func (r CheckOutRepo) checkOuts(ctx context.Context, keep func(*model.CheckOut) bool) []*model.CheckOut {
	var out []*model.CheckOut
	r.read(ctx, func(d *data) {
		for _, c := range d.CheckOuts {
			if keep(c) {
				cp := *c
				out = append(out, &cp)
			}
		}
	})
	return out
}

type InviteRepo struct{ *Store }

// Create enforces the unique (booking_id, invitee_email) index; the index
// entry counts as a written document for conflict detection.
func (r InviteRepo) Create(ctx context.Context, invite *model.RoomInvite) error {
	if _, err := r.Find(ctx, invite.BookingID, invite.InviteeEmail); err == nil {
		return checkinserrors.ErrAlreadyInvited
	}

	invite.ID = newID()
	invite.CreatedAt = time.Now().UTC()
	cp := *invite
	r.write(ctx, func(d *data) { d.Invites = append(d.Invites, &cp) }, inviteKey(invite.BookingID, invite.InviteeEmail))
	return nil
}

func (r InviteRepo) Find(ctx context.Context, bookingID, inviteeEmail string) (*model.RoomInvite, error) {
	var found *model.RoomInvite
	r.read(ctx, func(d *data) {
		for _, invite := range d.Invites {
			if invite.BookingID == bookingID && invite.InviteeEmail == inviteeEmail {
				cp := *invite
				found = &cp
				return
			}
		}
	})
	if found == nil {
		return nil, checkinserrors.ErrInviteNotFound
	}
	return found, nil
}

func (r InviteRepo) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	var n int64
	r.read(ctx, func(d *data) {
		for _, invite := range d.Invites {
			if invite.BookingID == bookingID {
				n++
			}
		}
	})
	return n, nil
}

func (r InviteRepo) Delete(ctx context.Context, bookingID, inviteeEmail string) error {
	if _, err := r.Find(ctx, bookingID, inviteeEmail); err != nil {
		return err
	}

	r.write(ctx, func(d *data) {
		for i, invite := range d.Invites {
			if invite.BookingID == bookingID && invite.InviteeEmail == inviteeEmail {
				d.Invites = append(d.Invites[:i:i], d.Invites[i+1:]...)
				return
			}
		}
	}, inviteKey(bookingID, inviteeEmail))
	return nil
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config returns the settings services read in tests, logging discarded.
func Config() *config.Config {
	return &config.Config{
		ReadTimeout:              time.Second,
		WriteTimeout:             time.Second,
		Location:                 time.UTC,
		DefaultCurrency:          "usd",
		RoomLockTTL:              10 * time.Second,
		MaxDocumentSize:          1024,
		AutoCheckoutWindow:       config.AutoCheckoutWindowToday,
		AutoCheckoutLookbackDays: 1,
		Log:                      logger.Discard(),
	}
}
