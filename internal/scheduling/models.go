package scheduling

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking status values.
const (
	BookingAvailable = "available"
	BookingBooked    = "booked"
	BookingCancelled = "cancelled"
)

// Presentation status values.
const (
	PresentationScheduled = "scheduled"
	PresentationCompleted = "completed"
	PresentationCancelled = "cancelled"
)

// Booking is an examiner's slot on the calendar. At most one booking may
// exist per (examiner_id, date, time); the store holds a unique index on the
// triple.
type Booking struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExaminerID   string             `bson:"examiner_id" json:"examinerId"`
	Date         string             `bson:"date" json:"date"` // YYYY-MM-DD
	Time         string             `bson:"time" json:"time"` // HH:MM
	StudentGroup string             `bson:"student_group,omitempty" json:"studentGroup,omitempty"`
	Status       string             `bson:"status" json:"status"`
	CreatedBy    string             `bson:"created_by,omitempty" json:"createdBy,omitempty"` // owner email
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Presentation is a student group's assessment slot with an examiner,
// subject to the same one-per-slot invariant as bookings.
type Presentation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID    string             `bson:"group_id" json:"groupId"`
	ExaminerID string             `bson:"examiner_id" json:"examinerId"`
	Date       string             `bson:"date" json:"date"`
	Time       string             `bson:"time" json:"time"`
	Duration   int                `bson:"duration" json:"duration"` // minutes
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

type BookingRequest struct {
	ExaminerID   string `json:"examinerId" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required,datetime=15:04"`
	StudentGroup string `json:"studentGroup"`
	Status       string `json:"status" validate:"omitempty,oneof=available booked cancelled"`
}

type PresentationRequest struct {
	GroupID    string `json:"groupId" validate:"required"`
	ExaminerID string `json:"examinerId" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,datetime=15:04"`
	Duration   int    `json:"duration" validate:"omitempty,min=5,max=480"`
}

type RescheduleRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,datetime=15:04"`
}
