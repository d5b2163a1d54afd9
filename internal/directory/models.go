package directory

import "go.mongodb.org/mongo-driver/bson/primitive"

// Examiner is a flat staff record.
type Examiner struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Department string             `bson:"department" json:"department"`
	Position   string             `bson:"position,omitempty" json:"position,omitempty"`
}

// Student is a flat student record.
type Student struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID string             `bson:"student_id" json:"studentId"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Program   string             `bson:"program" json:"program"`
	Year      int                `bson:"year,omitempty" json:"year,omitempty"`
}

type ExaminerRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required"`
	Position   string `json:"position"`
}

type StudentRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Program   string `json:"program" validate:"required"`
	Year      int    `json:"year" validate:"omitempty,min=1,max=8"`
}
