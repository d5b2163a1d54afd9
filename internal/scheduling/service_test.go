package scheduling

import (
	"context"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"AutoShed/internal/auth"
)

// mockStore is an in-memory Store for the service tests.
type mockStore struct {
	bookings      map[primitive.ObjectID]*Booking
	presentations map[primitive.ObjectID]*Presentation
}

func newMockStore() *mockStore {
	return &mockStore{
		bookings:      make(map[primitive.ObjectID]*Booking),
		presentations: make(map[primitive.ObjectID]*Presentation),
	}
}

func (m *mockStore) CreateBooking(_ context.Context, b *Booking) error {
	for _, other := range m.bookings {
		if other.ExaminerID == b.ExaminerID && other.Date == b.Date && other.Time == b.Time {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	copied := *b
	m.bookings[b.ID] = &copied
	return nil
}

func (m *mockStore) FindBookingByID(_ context.Context, id primitive.ObjectID) (*Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (m *mockStore) FindAllBookings(_ context.Context) ([]*Booking, error) {
	var out []*Booking
	for _, b := range m.bookings {
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockStore) FindBookingBySlot(_ context.Context, examinerID, date, timeOfDay string) (*Booking, error) {
	for _, b := range m.bookings {
		if b.ExaminerID == examinerID && b.Date == date && b.Time == timeOfDay {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockStore) UpdateBooking(_ context.Context, b *Booking) error {
	if _, ok := m.bookings[b.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *b
	m.bookings[b.ID] = &copied
	return nil
}

func (m *mockStore) DeleteBooking(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.bookings[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.bookings, id)
	return nil
}

func (m *mockStore) CreatePresentation(_ context.Context, p *Presentation) error {
	for _, other := range m.presentations {
		if other.ExaminerID == p.ExaminerID && other.Date == p.Date && other.Time == p.Time {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	copied := *p
	m.presentations[p.ID] = &copied
	return nil
}

func (m *mockStore) FindPresentationByID(_ context.Context, id primitive.ObjectID) (*Presentation, error) {
	p, ok := m.presentations[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (m *mockStore) FindAllPresentations(_ context.Context) ([]*Presentation, error) {
	var out []*Presentation
	for _, p := range m.presentations {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockStore) FindPresentationBySlot(_ context.Context, examinerID, date, timeOfDay string) (*Presentation, error) {
	for _, p := range m.presentations {
		if p.ExaminerID == examinerID && p.Date == date && p.Time == timeOfDay {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockStore) UpdatePresentation(_ context.Context, p *Presentation) error {
	if _, ok := m.presentations[p.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *p
	m.presentations[p.ID] = &copied
	return nil
}

func (m *mockStore) DeletePresentation(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.presentations[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.presentations, id)
	return nil
}

type recordingSink struct {
	events   []string
	payloads []interface{}
}

func (r *recordingSink) Publish(event string, payload interface{}) {
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
}

func setupTestService() (*SchedulingService, *mockStore, *recordingSink) {
	store := newMockStore()
	sink := &recordingSink{}
	return NewSchedulingService(store, sink), store, sink
}

var examinerActor = Actor{Email: "examiner1@uni.edu", Role: auth.RoleExaminer}

func TestCreateBooking_ConflictOnSameSlot(t *testing.T) {
	svc, store, _ := setupTestService()

	req := BookingRequest{ExaminerID: "EX1", Date: "2025-06-01", Time: "10:00"}
	if _, err := svc.CreateBooking(context.Background(), req, examinerActor); err != nil {
		t.Fatalf("first booking should succeed: %v", err)
	}

	_, err := svc.CreateBooking(context.Background(), req, examinerActor)
	conflict, ok := err.(*ConflictError)
	if !ok {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	msg := conflict.Error()
	if !strings.Contains(msg, "EX1") || !strings.Contains(msg, "10:00") {
		t.Errorf("conflict message must name examiner and time: %q", msg)
	}
	if len(store.bookings) != 1 {
		t.Errorf("%d bookings stored, want 1", len(store.bookings))
	}
}

func TestSlotConflict_MapsDuplicateKeyToConflict(t *testing.T) {
	// A writer that loses the index race gets a duplicate-key error from the
	// store; it must surface as the same conflict the pre-check produces.
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	err := slotConflict(dup, "EX2", "2025-06-02", "09:00")
	if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	other := context.DeadlineExceeded
	if got := slotConflict(other, "EX2", "2025-06-02", "09:00"); got != other {
		t.Errorf("non-duplicate errors must pass through, got %v", got)
	}
}

func TestUpdateBooking_OwnershipEnforced(t *testing.T) {
	svc, _, _ := setupTestService()

	b, err := svc.CreateBooking(context.Background(), BookingRequest{ExaminerID: "EX1", Date: "2025-06-01", Time: "10:00"}, examinerActor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	other := Actor{Email: "examiner2@uni.edu", Role: auth.RoleExaminer}
	req := BookingRequest{ExaminerID: "EX1", Date: "2025-06-01", Time: "11:00"}
	if _, err := svc.UpdateBooking(context.Background(), b.ID, req, other); err != ErrForbidden {
		t.Errorf("foreign examiner update: got %v, want ErrForbidden", err)
	}
	if err := svc.DeleteBooking(context.Background(), b.ID, other); err != ErrForbidden {
		t.Errorf("foreign examiner delete: got %v, want ErrForbidden", err)
	}

	admin := Actor{Email: "admin@uni.edu", Role: auth.RoleAdmin}
	if _, err := svc.UpdateBooking(context.Background(), b.ID, req, admin); err != nil {
		t.Errorf("admin update should succeed: %v", err)
	}
	if err := svc.DeleteBooking(context.Background(), b.ID, examinerActor); err != nil {
		t.Errorf("owner delete should succeed: %v", err)
	}
}

func TestCreatePresentation_DefaultsAndConflict(t *testing.T) {
	svc, _, _ := setupTestService()

	req := PresentationRequest{GroupID: "G7", ExaminerID: "EX1", Date: "2025-06-01", Time: "10:00"}
	p, err := svc.CreatePresentation(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Duration != 30 {
		t.Errorf("default duration = %d, want 30", p.Duration)
	}
	if p.Status != PresentationScheduled {
		t.Errorf("status = %q, want scheduled", p.Status)
	}

	req.GroupID = "G8"
	if _, err := svc.CreatePresentation(context.Background(), req); err == nil {
		t.Fatal("second presentation on the same slot must be rejected")
	}
}

func TestReschedule_ConflictLeavesPresentationUnchanged(t *testing.T) {
	svc, store, _ := setupTestService()

	first, _ := svc.CreatePresentation(context.Background(), PresentationRequest{GroupID: "G1", ExaminerID: "EX1", Date: "2025-06-01", Time: "10:00"})
	second, _ := svc.CreatePresentation(context.Background(), PresentationRequest{GroupID: "G2", ExaminerID: "EX1", Date: "2025-06-01", Time: "11:00"})

	_, err := svc.Reschedule(context.Background(), second.ID, RescheduleRequest{Date: "2025-06-01", Time: "10:00"})
	if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	stored, _ := store.FindPresentationByID(context.Background(), second.ID)
	if stored.Time != "11:00" {
		t.Errorf("presentation moved despite rejection: %q", stored.Time)
	}

	// moving to a free slot works, including back onto its own slot
	if _, err := svc.Reschedule(context.Background(), second.ID, RescheduleRequest{Date: "2025-06-02", Time: "10:00"}); err != nil {
		t.Errorf("reschedule to free slot: %v", err)
	}
	if _, err := svc.Reschedule(context.Background(), first.ID, RescheduleRequest{Date: "2025-06-01", Time: "10:00"}); err != nil {
		t.Errorf("reschedule onto own slot: %v", err)
	}
}

func TestScheduleMutationsBroadcast(t *testing.T) {
	svc, _, sink := setupTestService()

	b, _ := svc.CreateBooking(context.Background(), BookingRequest{ExaminerID: "EX1", Date: "2025-06-01", Time: "10:00"}, examinerActor)
	svc.DeleteBooking(context.Background(), b.ID, examinerActor)
	p, _ := svc.CreatePresentation(context.Background(), PresentationRequest{GroupID: "G1", ExaminerID: "EX1", Date: "2025-06-01", Time: "10:00"})
	svc.Reschedule(context.Background(), p.ID, RescheduleRequest{Date: "2025-06-01", Time: "11:00"})

	if len(sink.events) != 4 {
		t.Fatalf("events = %v, want 4 scheduleUpdate broadcasts", sink.events)
	}
	for _, e := range sink.events {
		if e != "scheduleUpdate" {
			t.Errorf("unexpected event %q", e)
		}
	}
	payload, ok := sink.payloads[3].(map[string]string)
	if !ok || payload["action"] != "presentationRescheduled" || payload["id"] != p.ID.Hex() {
		t.Errorf("unexpected payload %v", sink.payloads[3])
	}
}
