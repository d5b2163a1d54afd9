package scheduling

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SchedulingRepository handles DB operations for bookings and presentations.
type SchedulingRepository struct {
	bookings      *mongo.Collection
	presentations *mongo.Collection
}

func NewSchedulingRepository(db *mongo.Database) *SchedulingRepository {
	return &SchedulingRepository{
		bookings:      db.Collection("bookings"),
		presentations: db.Collection("presentations"),
	}
}

// Booking operations

func (r *SchedulingRepository) CreateBooking(ctx context.Context, b *Booking) error {
	_, err := r.bookings.InsertOne(ctx, b)
	return err
}

func (r *SchedulingRepository) FindBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	var b Booking
	err := r.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *SchedulingRepository) FindAllBookings(ctx context.Context) ([]*Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cursor, err := r.bookings.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var bookings []*Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindBookingBySlot looks up the booking occupying one examiner slot.
func (r *SchedulingRepository) FindBookingBySlot(ctx context.Context, examinerID, date, timeOfDay string) (*Booking, error) {
	var b Booking
	filter := bson.M{"examiner_id": examinerID, "date": date, "time": timeOfDay}
	err := r.bookings.FindOne(ctx, filter).Decode(&b)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *SchedulingRepository) UpdateBooking(ctx context.Context, b *Booking) error {
	res, err := r.bookings.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *SchedulingRepository) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.bookings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Presentation operations

func (r *SchedulingRepository) CreatePresentation(ctx context.Context, p *Presentation) error {
	_, err := r.presentations.InsertOne(ctx, p)
	return err
}

func (r *SchedulingRepository) FindPresentationByID(ctx context.Context, id primitive.ObjectID) (*Presentation, error) {
	var p Presentation
	err := r.presentations.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *SchedulingRepository) FindAllPresentations(ctx context.Context) ([]*Presentation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cursor, err := r.presentations.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var presentations []*Presentation
	if err := cursor.All(ctx, &presentations); err != nil {
		return nil, err
	}
	return presentations, nil
}

func (r *SchedulingRepository) FindPresentationBySlot(ctx context.Context, examinerID, date, timeOfDay string) (*Presentation, error) {
	var p Presentation
	filter := bson.M{"examiner_id": examinerID, "date": date, "time": timeOfDay}
	err := r.presentations.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *SchedulingRepository) UpdatePresentation(ctx context.Context, p *Presentation) error {
	res, err := r.presentations.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *SchedulingRepository) DeletePresentation(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.presentations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
