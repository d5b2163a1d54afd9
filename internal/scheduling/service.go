package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"AutoShed/internal/auth"
	"AutoShed/internal/realtime"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("you may only modify your own booking")
)

// ConflictError reports an occupied examiner slot.
type ConflictError struct {
	ExaminerID string
	Date       string
	Time       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("examiner %s is already booked at %s %s", e.ExaminerID, e.Date, e.Time)
}

// Actor identifies the authenticated caller for ownership checks.
type Actor struct {
	Email string
	Role  string
}

// Store is the repository surface the service depends on.
type Store interface {
	CreateBooking(ctx context.Context, b *Booking) error
	FindBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	FindAllBookings(ctx context.Context) ([]*Booking, error)
	FindBookingBySlot(ctx context.Context, examinerID, date, timeOfDay string) (*Booking, error)
	UpdateBooking(ctx context.Context, b *Booking) error
	DeleteBooking(ctx context.Context, id primitive.ObjectID) error

	CreatePresentation(ctx context.Context, p *Presentation) error
	FindPresentationByID(ctx context.Context, id primitive.ObjectID) (*Presentation, error)
	FindAllPresentations(ctx context.Context) ([]*Presentation, error)
	FindPresentationBySlot(ctx context.Context, examinerID, date, timeOfDay string) (*Presentation, error)
	UpdatePresentation(ctx context.Context, p *Presentation) error
	DeletePresentation(ctx context.Context, id primitive.ObjectID) error
}

// SchedulingService coordinates booking and presentation CRUD with the
// one-per-slot invariant and ownership rules.
type SchedulingService struct {
	repo Store
	sink realtime.EventSink
}

func NewSchedulingService(repo Store, sink realtime.EventSink) *SchedulingService {
	return &SchedulingService{repo: repo, sink: sink}
}

func (s *SchedulingService) publishScheduleUpdate(action string, id primitive.ObjectID) {
	s.sink.Publish(realtime.EventScheduleUpdate, map[string]string{
		"action": action,
		"id":     id.Hex(),
	})
}

// checkBookingSlot rejects a slot already held by a different booking. The
// unique index on (examiner_id, date, time) backs this check up when two
// requests race past it.
func (s *SchedulingService) checkBookingSlot(ctx context.Context, examinerID, date, timeOfDay string, exclude primitive.ObjectID) error {
	existing, err := s.repo.FindBookingBySlot(ctx, examinerID, date, timeOfDay)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != exclude {
		return &ConflictError{ExaminerID: examinerID, Date: date, Time: timeOfDay}
	}
	return nil
}

func (s *SchedulingService) checkPresentationSlot(ctx context.Context, examinerID, date, timeOfDay string, exclude primitive.ObjectID) error {
	existing, err := s.repo.FindPresentationBySlot(ctx, examinerID, date, timeOfDay)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != exclude {
		return &ConflictError{ExaminerID: examinerID, Date: date, Time: timeOfDay}
	}
	return nil
}

// slotConflict converts a lost index race into the same conflict error the
// pre-check produces.
func slotConflict(err error, examinerID, date, timeOfDay string) error {
	if mongo.IsDuplicateKeyError(err) {
		return &ConflictError{ExaminerID: examinerID, Date: date, Time: timeOfDay}
	}
	return err
}

// Booking operations

func (s *SchedulingService) CreateBooking(ctx context.Context, req BookingRequest, actor Actor) (*Booking, error) {
	if err := s.checkBookingSlot(ctx, req.ExaminerID, req.Date, req.Time, primitive.NilObjectID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = BookingAvailable
	}
	now := time.Now()
	b := &Booking{
		ID:           primitive.NewObjectID(),
		ExaminerID:   req.ExaminerID,
		Date:         req.Date,
		Time:         req.Time,
		StudentGroup: req.StudentGroup,
		Status:       status,
		CreatedBy:    actor.Email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return nil, slotConflict(err, req.ExaminerID, req.Date, req.Time)
	}
	s.publishScheduleUpdate("bookingCreated", b.ID)
	return b, nil
}

func (s *SchedulingService) GetBooking(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	b, err := s.repo.FindBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *SchedulingService) ListBookings(ctx context.Context) ([]*Booking, error) {
	return s.repo.FindAllBookings(ctx)
}

// canModify lets admins touch any booking; examiners only their own.
func canModify(b *Booking, actor Actor) bool {
	if actor.Role == auth.RoleAdmin {
		return true
	}
	return b.CreatedBy != "" && b.CreatedBy == actor.Email
}

func (s *SchedulingService) UpdateBooking(ctx context.Context, id primitive.ObjectID, req BookingRequest, actor Actor) (*Booking, error) {
	existing, err := s.repo.FindBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if !canModify(existing, actor) {
		return nil, ErrForbidden
	}
	if err := s.checkBookingSlot(ctx, req.ExaminerID, req.Date, req.Time, id); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = existing.Status
	}
	b := &Booking{
		ID:           existing.ID,
		ExaminerID:   req.ExaminerID,
		Date:         req.Date,
		Time:         req.Time,
		StudentGroup: req.StudentGroup,
		Status:       status,
		CreatedBy:    existing.CreatedBy,
		CreatedAt:    existing.CreatedAt,
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, slotConflict(err, req.ExaminerID, req.Date, req.Time)
	}
	s.publishScheduleUpdate("bookingUpdated", b.ID)
	return b, nil
}

func (s *SchedulingService) DeleteBooking(ctx context.Context, id primitive.ObjectID, actor Actor) error {
	existing, err := s.repo.FindBookingByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if !canModify(existing, actor) {
		return ErrForbidden
	}
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}
	s.publishScheduleUpdate("bookingDeleted", id)
	return nil
}

// Presentation operations

func (s *SchedulingService) CreatePresentation(ctx context.Context, req PresentationRequest) (*Presentation, error) {
	if err := s.checkPresentationSlot(ctx, req.ExaminerID, req.Date, req.Time, primitive.NilObjectID); err != nil {
		return nil, err
	}

	duration := req.Duration
	if duration == 0 {
		duration = 30
	}
	now := time.Now()
	p := &Presentation{
		ID:         primitive.NewObjectID(),
		GroupID:    req.GroupID,
		ExaminerID: req.ExaminerID,
		Date:       req.Date,
		Time:       req.Time,
		Duration:   duration,
		Status:     PresentationScheduled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreatePresentation(ctx, p); err != nil {
		return nil, slotConflict(err, req.ExaminerID, req.Date, req.Time)
	}
	s.publishScheduleUpdate("presentationCreated", p.ID)
	return p, nil
}

func (s *SchedulingService) GetPresentation(ctx context.Context, id primitive.ObjectID) (*Presentation, error) {
	p, err := s.repo.FindPresentationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *SchedulingService) ListPresentations(ctx context.Context) ([]*Presentation, error) {
	return s.repo.FindAllPresentations(ctx)
}

// Reschedule moves a presentation to a new slot after re-running the
// conflict check; on rejection the stored presentation is untouched.
func (s *SchedulingService) Reschedule(ctx context.Context, id primitive.ObjectID, req RescheduleRequest) (*Presentation, error) {
	existing, err := s.repo.FindPresentationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if err := s.checkPresentationSlot(ctx, existing.ExaminerID, req.Date, req.Time, id); err != nil {
		return nil, err
	}

	existing.Date = req.Date
	existing.Time = req.Time
	existing.UpdatedAt = time.Now()
	if err := s.repo.UpdatePresentation(ctx, existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, slotConflict(err, existing.ExaminerID, req.Date, req.Time)
	}
	s.publishScheduleUpdate("presentationRescheduled", id)
	return existing, nil
}

func (s *SchedulingService) DeletePresentation(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.DeletePresentation(ctx, id); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}
	s.publishScheduleUpdate("presentationDeleted", id)
	return nil
}
