package notification

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository handles DB operations for notifications and notices.
type NotificationRepository struct {
	notifications *mongo.Collection
	notices       *mongo.Collection
}

// NewNotificationRepository creates a new repository for notifications.
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		notifications: db.Collection("notifications"),
		notices:       db.Collection("notices"),
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *Notification) error {
	_, err := r.notifications.InsertOne(ctx, n)
	return err
}

func (r *NotificationRepository) FindAll(ctx context.Context) ([]*Notification, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.notifications.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var notifications []*Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Notification, error) {
	var n Notification
	err := r.notifications.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// FindByIDAndCountView fetches one notification and bumps its view counter in
// the same atomic operation, so concurrent reads never lose increments.
func (r *NotificationRepository) FindByIDAndCountView(ctx context.Context, id primitive.ObjectID) (*Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n Notification
	err := r.notifications.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"view_count": 1}},
		opts,
	).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) Update(ctx context.Context, n *Notification) error {
	res, err := r.notifications.ReplaceOne(ctx, bson.M{"_id": n.ID}, n)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.notifications.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteMany removes every notification whose id is in the list and returns
// the number actually deleted. Unknown ids are skipped silently.
func (r *NotificationRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	res, err := r.notifications.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// FindActive returns all notifications visible at the given instant, for the
// given audience when one is supplied. The whole matching set is returned,
// ordered by priority then recency; the result sets are small enough that
// pagination was never part of the contract.
func (r *NotificationRepository) FindActive(ctx context.Context, audience string, now time.Time) ([]*Notification, error) {
	filter := bson.M{
		"status":          StatusPublished,
		"effective_date":  bson.M{"$lte": now},
		"expiration_date": bson.M{"$gt": now},
	}
	if audience != "" {
		filter["target_audience"] = audience
	}
	cursor, err := r.notifications.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var notifications []*Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	SortActive(notifications)
	return notifications, nil
}

// SortActive orders notifications by priority descending, then effective
// date descending.
func SortActive(notifications []*Notification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		ri, rj := PriorityRank(notifications[i].Priority), PriorityRank(notifications[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return notifications[i].EffectiveDate.After(notifications[j].EffectiveDate)
	})
}

// FindEmailPending fetches published notifications still waiting for their
// email fan-out.
func (r *NotificationRepository) FindEmailPending(ctx context.Context) ([]*Notification, error) {
	filter := bson.M{"email_pending": true, "status": StatusPublished}
	cursor, err := r.notifications.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var notifications []*Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkEmailSent clears the pending flag and records the recipients for audit.
func (r *NotificationRepository) MarkEmailSent(ctx context.Context, id primitive.ObjectID, sentTo []string) error {
	update := bson.M{"$set": bson.M{"email_pending": false, "sent_to": sentTo}}
	res, err := r.notifications.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

type statsFacet struct {
	Totals []struct {
		Count      int64 `bson:"count"`
		TotalViews int64 `bson:"total_views"`
	} `bson:"totals"`
	ByStatus []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	} `bson:"by_status"`
	ByType []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	} `bson:"by_type"`
	ByPriority []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	} `bson:"by_priority"`
	Active []struct {
		Count int64 `bson:"count"`
	} `bson:"active"`
}

// CollectStats aggregates the overview counters in a single round trip.
func (r *NotificationRepository) CollectStats(ctx context.Context, now time.Time) (*Stats, error) {
	groupCount := func(field string) bson.A {
		return bson.A{bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}}
	}
	pipeline := bson.A{
		bson.M{"$facet": bson.M{
			"totals": bson.A{
				bson.M{"$group": bson.M{
					"_id":         nil,
					"count":       bson.M{"$sum": 1},
					"total_views": bson.M{"$sum": "$view_count"},
				}},
			},
			"by_status":   groupCount("status"),
			"by_type":     groupCount("type"),
			"by_priority": groupCount("priority"),
			"active": bson.A{
				bson.M{"$match": bson.M{
					"status":          StatusPublished,
					"effective_date":  bson.M{"$lte": now},
					"expiration_date": bson.M{"$gt": now},
				}},
				bson.M{"$count": "count"},
			},
		}},
	}

	cursor, err := r.notifications.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var facets []statsFacet
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, err
	}

	stats := &Stats{
		ByStatus:   make(map[string]int64),
		ByType:     make(map[string]int64),
		ByPriority: make(map[string]int64),
	}
	if len(facets) == 0 {
		return stats, nil
	}
	f := facets[0]
	if len(f.Totals) > 0 {
		stats.Total = f.Totals[0].Count
		stats.TotalViews = f.Totals[0].TotalViews
	}
	for _, g := range f.ByStatus {
		stats.ByStatus[g.ID] = g.Count
	}
	for _, g := range f.ByType {
		stats.ByType[g.ID] = g.Count
	}
	for _, g := range f.ByPriority {
		stats.ByPriority[g.ID] = g.Count
	}
	if len(f.Active) > 0 {
		stats.Active = f.Active[0].Count
	}
	return stats, nil
}

// Notice operations

func (r *NotificationRepository) CreateNotice(ctx context.Context, n *Notice) error {
	_, err := r.notices.InsertOne(ctx, n)
	return err
}

func (r *NotificationRepository) FindAllNotices(ctx context.Context) ([]*Notice, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.notices.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var notices []*Notice
	if err := cursor.All(ctx, &notices); err != nil {
		return nil, err
	}
	return notices, nil
}

// FindNoticesForAudience filters on the audience booleans; audience is
// "students" or "examiners".
func (r *NotificationRepository) FindNoticesForAudience(ctx context.Context, audience string) ([]*Notice, error) {
	field := "publish_to_students"
	if audience == AudienceExaminers {
		field = "publish_to_examiners"
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.notices.Find(ctx, bson.M{field: true}, opts)
	if err != nil {
		return nil, err
	}
	var notices []*Notice
	if err := cursor.All(ctx, &notices); err != nil {
		return nil, err
	}
	return notices, nil
}

func (r *NotificationRepository) FindNoticeByID(ctx context.Context, id primitive.ObjectID) (*Notice, error) {
	var n Notice
	err := r.notices.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) UpdateNotice(ctx context.Context, n *Notice) error {
	res, err := r.notices.ReplaceOne(ctx, bson.M{"_id": n.ID}, n)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *NotificationRepository) DeleteNotice(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.notices.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
