package directory

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("record not found")

type Store interface {
	CreateExaminer(ctx context.Context, e *Examiner) error
	FindExaminerByID(ctx context.Context, id primitive.ObjectID) (*Examiner, error)
	FindAllExaminers(ctx context.Context) ([]*Examiner, error)
	UpdateExaminer(ctx context.Context, e *Examiner) error
	DeleteExaminer(ctx context.Context, id primitive.ObjectID) error

	CreateStudent(ctx context.Context, s *Student) error
	FindStudentByID(ctx context.Context, id primitive.ObjectID) (*Student, error)
	FindAllStudents(ctx context.Context) ([]*Student, error)
	UpdateStudent(ctx context.Context, s *Student) error
	DeleteStudent(ctx context.Context, id primitive.ObjectID) error
}

// DirectoryService is plain CRUD over the two flat record types; the only
// validation is the required-field checks on the request structs.
type DirectoryService struct {
	repo Store
}

func NewDirectoryService(repo Store) *DirectoryService {
	return &DirectoryService{repo: repo}
}

func (s *DirectoryService) CreateExaminer(ctx context.Context, req ExaminerRequest) (*Examiner, error) {
	e := &Examiner{
		ID:         primitive.NewObjectID(),
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Position:   req.Position,
	}
	if err := s.repo.CreateExaminer(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *DirectoryService) GetExaminer(ctx context.Context, id primitive.ObjectID) (*Examiner, error) {
	e, err := s.repo.FindExaminerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *DirectoryService) ListExaminers(ctx context.Context) ([]*Examiner, error) {
	return s.repo.FindAllExaminers(ctx)
}

func (s *DirectoryService) UpdateExaminer(ctx context.Context, id primitive.ObjectID, req ExaminerRequest) (*Examiner, error) {
	existing, err := s.repo.FindExaminerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	e := &Examiner{
		ID:         existing.ID,
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Position:   req.Position,
	}
	if err := s.repo.UpdateExaminer(ctx, e); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *DirectoryService) DeleteExaminer(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.DeleteExaminer(ctx, id)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

func (s *DirectoryService) CreateStudent(ctx context.Context, req StudentRequest) (*Student, error) {
	st := &Student{
		ID:        primitive.NewObjectID(),
		StudentID: req.StudentID,
		Name:      req.Name,
		Email:     req.Email,
		Program:   req.Program,
		Year:      req.Year,
	}
	if err := s.repo.CreateStudent(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *DirectoryService) GetStudent(ctx context.Context, id primitive.ObjectID) (*Student, error) {
	st, err := s.repo.FindStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNotFound
	}
	return st, nil
}

func (s *DirectoryService) ListStudents(ctx context.Context) ([]*Student, error) {
	return s.repo.FindAllStudents(ctx)
}

func (s *DirectoryService) UpdateStudent(ctx context.Context, id primitive.ObjectID, req StudentRequest) (*Student, error) {
	existing, err := s.repo.FindStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	st := &Student{
		ID:        existing.ID,
		StudentID: req.StudentID,
		Name:      req.Name,
		Email:     req.Email,
		Program:   req.Program,
		Year:      req.Year,
	}
	if err := s.repo.UpdateStudent(ctx, st); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return st, nil
}

func (s *DirectoryService) DeleteStudent(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.DeleteStudent(ctx, id)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}
