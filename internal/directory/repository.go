package directory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DirectoryRepository handles DB operations for examiners and students.
type DirectoryRepository struct {
	examiners *mongo.Collection
	students  *mongo.Collection
}

func NewDirectoryRepository(db *mongo.Database) *DirectoryRepository {
	return &DirectoryRepository{
		examiners: db.Collection("examiners"),
		students:  db.Collection("students"),
	}
}

func (r *DirectoryRepository) CreateExaminer(ctx context.Context, e *Examiner) error {
	_, err := r.examiners.InsertOne(ctx, e)
	return err
}

func (r *DirectoryRepository) FindExaminerByID(ctx context.Context, id primitive.ObjectID) (*Examiner, error) {
	var e Examiner
	err := r.examiners.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *DirectoryRepository) FindAllExaminers(ctx context.Context) ([]*Examiner, error) {
	cursor, err := r.examiners.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var examiners []*Examiner
	if err := cursor.All(ctx, &examiners); err != nil {
		return nil, err
	}
	return examiners, nil
}

func (r *DirectoryRepository) UpdateExaminer(ctx context.Context, e *Examiner) error {
	res, err := r.examiners.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *DirectoryRepository) DeleteExaminer(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.examiners.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *DirectoryRepository) CreateStudent(ctx context.Context, s *Student) error {
	_, err := r.students.InsertOne(ctx, s)
	return err
}

func (r *DirectoryRepository) FindStudentByID(ctx context.Context, id primitive.ObjectID) (*Student, error) {
	var s Student
	err := r.students.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *DirectoryRepository) FindAllStudents(ctx context.Context) ([]*Student, error) {
	cursor, err := r.students.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var students []*Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *DirectoryRepository) UpdateStudent(ctx context.Context, s *Student) error {
	res, err := r.students.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *DirectoryRepository) DeleteStudent(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.students.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
