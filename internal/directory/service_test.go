package directory

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mockStore struct {
	examiners map[primitive.ObjectID]*Examiner
	students  map[primitive.ObjectID]*Student
}

func newMockStore() *mockStore {
	return &mockStore{
		examiners: make(map[primitive.ObjectID]*Examiner),
		students:  make(map[primitive.ObjectID]*Student),
	}
}

func (m *mockStore) CreateExaminer(_ context.Context, e *Examiner) error {
	copied := *e
	m.examiners[e.ID] = &copied
	return nil
}

func (m *mockStore) FindExaminerByID(_ context.Context, id primitive.ObjectID) (*Examiner, error) {
	e, ok := m.examiners[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (m *mockStore) FindAllExaminers(_ context.Context) ([]*Examiner, error) {
	var out []*Examiner
	for _, e := range m.examiners {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockStore) UpdateExaminer(_ context.Context, e *Examiner) error {
	if _, ok := m.examiners[e.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *e
	m.examiners[e.ID] = &copied
	return nil
}

func (m *mockStore) DeleteExaminer(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.examiners[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.examiners, id)
	return nil
}

func (m *mockStore) CreateStudent(_ context.Context, s *Student) error {
	copied := *s
	m.students[s.ID] = &copied
	return nil
}

func (m *mockStore) FindStudentByID(_ context.Context, id primitive.ObjectID) (*Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (m *mockStore) FindAllStudents(_ context.Context) ([]*Student, error) {
	var out []*Student
	for _, s := range m.students {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockStore) UpdateStudent(_ context.Context, s *Student) error {
	if _, ok := m.students[s.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *s
	m.students[s.ID] = &copied
	return nil
}

func (m *mockStore) DeleteStudent(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.students[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.students, id)
	return nil
}

func TestExaminerCRUD(t *testing.T) {
	svc := NewDirectoryService(newMockStore())

	e, err := svc.CreateExaminer(context.Background(), ExaminerRequest{
		Name:       "Dr. Silva",
		Email:      "silva@uni.edu",
		Department: "Computer Science",
		Position:   "Senior Lecturer",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateExaminer(context.Background(), e.ID, ExaminerRequest{
		Name:       "Dr. Silva",
		Email:      "silva@uni.edu",
		Department: "Software Engineering",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Department != "Software Engineering" {
		t.Errorf("department = %q", updated.Department)
	}
	if updated.ID != e.ID {
		t.Error("id must not change on update")
	}

	if err := svc.DeleteExaminer(context.Background(), e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetExaminer(context.Background(), e.ID); err != ErrNotFound {
		t.Errorf("get after delete: got %v, want ErrNotFound", err)
	}
}

func TestStudentCRUD(t *testing.T) {
	svc := NewDirectoryService(newMockStore())

	s, err := svc.CreateStudent(context.Background(), StudentRequest{
		StudentID: "IT21001",
		Name:      "Nimal Perera",
		Email:     "it21001@uni.edu",
		Program:   "BSc IT",
		Year:      3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.GetStudent(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StudentID != "IT21001" {
		t.Errorf("studentId = %q", got.StudentID)
	}

	if _, err := svc.UpdateStudent(context.Background(), primitive.NewObjectID(), StudentRequest{
		StudentID: "X", Name: "X", Email: "x@uni.edu", Program: "X",
	}); err != ErrNotFound {
		t.Errorf("update missing: got %v, want ErrNotFound", err)
	}

	if err := svc.DeleteStudent(context.Background(), primitive.NewObjectID()); err != ErrNotFound {
		t.Errorf("delete missing: got %v, want ErrNotFound", err)
	}
}
