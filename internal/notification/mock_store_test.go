package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"AutoShed/internal/auth"
)

// mockStore is an in-memory Store used by the service tests.
type mockStore struct {
	notifications map[primitive.ObjectID]*Notification
	notices       map[primitive.ObjectID]*Notice
	creates       int
	updates       int
}

func newMockStore() *mockStore {
	return &mockStore{
		notifications: make(map[primitive.ObjectID]*Notification),
		notices:       make(map[primitive.ObjectID]*Notice),
	}
}

func (m *mockStore) Create(_ context.Context, n *Notification) error {
	m.creates++
	copied := *n
	m.notifications[n.ID] = &copied
	return nil
}

func (m *mockStore) FindAll(_ context.Context) ([]*Notification, error) {
	var out []*Notification
	for _, n := range m.notifications {
		copied := *n
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockStore) FindByID(_ context.Context, id primitive.ObjectID) (*Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, nil
	}
	copied := *n
	return &copied, nil
}

func (m *mockStore) FindByIDAndCountView(_ context.Context, id primitive.ObjectID) (*Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, nil
	}
	n.ViewCount++
	copied := *n
	return &copied, nil
}

func (m *mockStore) Update(_ context.Context, n *Notification) error {
	if _, ok := m.notifications[n.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	m.updates++
	copied := *n
	m.notifications[n.ID] = &copied
	return nil
}

func (m *mockStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.notifications[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.notifications, id)
	return nil
}

func (m *mockStore) DeleteMany(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if _, ok := m.notifications[id]; ok {
			delete(m.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockStore) FindActive(_ context.Context, audience string, now time.Time) ([]*Notification, error) {
	var out []*Notification
	for _, n := range m.notifications {
		if n.ActiveAt(now) && n.VisibleTo(audience) {
			copied := *n
			out = append(out, &copied)
		}
	}
	SortActive(out)
	return out, nil
}

func (m *mockStore) FindEmailPending(_ context.Context) ([]*Notification, error) {
	var out []*Notification
	for _, n := range m.notifications {
		if n.EmailPending && n.Status == StatusPublished {
			copied := *n
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockStore) MarkEmailSent(_ context.Context, id primitive.ObjectID, sentTo []string) error {
	n, ok := m.notifications[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	n.EmailPending = false
	n.SentTo = sentTo
	return nil
}

func (m *mockStore) CollectStats(_ context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{
		ByStatus:   make(map[string]int64),
		ByType:     make(map[string]int64),
		ByPriority: make(map[string]int64),
	}
	for _, n := range m.notifications {
		stats.Total++
		stats.TotalViews += n.ViewCount
		stats.ByStatus[n.Status]++
		stats.ByType[n.Type]++
		stats.ByPriority[n.Priority]++
		if n.ActiveAt(now) {
			stats.Active++
		}
	}
	return stats, nil
}

func (m *mockStore) CreateNotice(_ context.Context, n *Notice) error {
	copied := *n
	m.notices[n.ID] = &copied
	return nil
}

func (m *mockStore) FindAllNotices(_ context.Context) ([]*Notice, error) {
	var out []*Notice
	for _, n := range m.notices {
		copied := *n
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockStore) FindNoticesForAudience(_ context.Context, audience string) ([]*Notice, error) {
	var out []*Notice
	for _, n := range m.notices {
		if (audience == AudienceStudents && n.PublishToStudents) ||
			(audience == AudienceExaminers && n.PublishToExaminers) {
			copied := *n
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockStore) FindNoticeByID(_ context.Context, id primitive.ObjectID) (*Notice, error) {
	n, ok := m.notices[id]
	if !ok {
		return nil, nil
	}
	copied := *n
	return &copied, nil
}

func (m *mockStore) UpdateNotice(_ context.Context, n *Notice) error {
	if _, ok := m.notices[n.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *n
	m.notices[n.ID] = &copied
	return nil
}

func (m *mockStore) DeleteNotice(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.notices[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.notices, id)
	return nil
}

// mockUserStore backs actor resolution and email recipient lookup.
type mockUserStore struct {
	users []*auth.User
}

func (m *mockUserStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) CreateUser(_ context.Context, user *auth.User) error {
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserStore) FindByRoles(_ context.Context, roles []string) ([]*auth.User, error) {
	var out []*auth.User
	for _, u := range m.users {
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (m *mockUserStore) FindAll(_ context.Context) ([]*auth.User, error) {
	return m.users, nil
}

func (m *mockUserStore) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

// mockMailer records deliveries; failTo simulates a bouncing address.
type mockMailer struct {
	sent   []string
	failTo string
}

func (m *mockMailer) SendEmail(to, subject, body string) error {
	if to == m.failTo {
		return context.DeadlineExceeded
	}
	m.sent = append(m.sent, to)
	return nil
}

// recordingSink captures published events in order.
type recordingSink struct {
	events   []string
	payloads []interface{}
}

func (r *recordingSink) Publish(event string, payload interface{}) {
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
}
