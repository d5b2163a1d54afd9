package notification

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"AutoShed/internal/auth"
	"AutoShed/internal/realtime"
)

var ErrNotFound = errors.New("notification not found")

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// Store is the repository surface the service depends on; the mongo
// repository satisfies it and tests substitute an in-memory implementation.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	FindAll(ctx context.Context) ([]*Notification, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Notification, error)
	FindByIDAndCountView(ctx context.Context, id primitive.ObjectID) (*Notification, error)
	Update(ctx context.Context, n *Notification) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	FindActive(ctx context.Context, audience string, now time.Time) ([]*Notification, error)
	FindEmailPending(ctx context.Context) ([]*Notification, error)
	MarkEmailSent(ctx context.Context, id primitive.ObjectID, sentTo []string) error
	CollectStats(ctx context.Context, now time.Time) (*Stats, error)

	CreateNotice(ctx context.Context, n *Notice) error
	FindAllNotices(ctx context.Context) ([]*Notice, error)
	FindNoticesForAudience(ctx context.Context, audience string) ([]*Notice, error)
	FindNoticeByID(ctx context.Context, id primitive.ObjectID) (*Notice, error)
	UpdateNotice(ctx context.Context, n *Notice) error
	DeleteNotice(ctx context.Context, id primitive.ObjectID) error
}

// Mailer sends one email; satisfied by config.EmailService.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Clock returns the current time; swapped in tests to pin the active window.
type Clock func() time.Time

// NotificationService coordinates notification lifecycle, notice CRUD,
// realtime fan-out and the email side channel.
type NotificationService struct {
	repo   Store
	users  auth.UserStore
	mailer Mailer
	sink   realtime.EventSink
	now    Clock
}

func NewNotificationService(repo Store, users auth.UserStore, mailer Mailer, sink realtime.EventSink) *NotificationService {
	return &NotificationService{repo: repo, users: users, mailer: mailer, sink: sink, now: time.Now}
}

// CreateNotificationRequest carries the writable notification fields.
type CreateNotificationRequest struct {
	Title           string       `json:"title" validate:"required,min=5,max=100"`
	Body            string       `json:"body" validate:"required,min=10"`
	Type            string       `json:"type" validate:"required,oneof=Academic Administrative Event"`
	Priority        string       `json:"priority" validate:"omitempty,oneof=High Medium Low"`
	Status          string       `json:"status" validate:"omitempty,oneof=Draft Published Archived"`
	TargetAudience  []string     `json:"targetAudience" validate:"required,min=1,dive,oneof=students examiners common"`
	EffectiveDate   *time.Time   `json:"effectiveDate"`
	ExpirationDate  time.Time    `json:"expirationDate" validate:"required"`
	Tags            []string     `json:"tags"`
	Attachments     []Attachment `json:"attachments"`
	HighlightNotice bool         `json:"highlightNotice"`
	NotifyViaEmail  bool         `json:"notifyViaEmail"`
}

// checkInvariants re-validates what the schema tags cannot express: the date
// ordering and the non-empty audience. Violations never reach the store.
func checkInvariants(effective, expiration time.Time, audience []string) error {
	fields := make(map[string]string)
	if len(audience) == 0 {
		fields["targetAudience"] = "must contain at least one audience"
	}
	if !expiration.After(effective) {
		fields["expirationDate"] = "must be after effectiveDate"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *NotificationService) CreateNotification(ctx context.Context, req CreateNotificationRequest, actorEmail string) (*Notification, error) {
	now := s.now()
	effective := now
	if req.EffectiveDate != nil {
		effective = *req.EffectiveDate
	}
	if err := checkInvariants(effective, req.ExpirationDate, req.TargetAudience); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	status := req.Status
	if status == "" {
		status = StatusDraft
	}

	n := &Notification{
		ID:              primitive.NewObjectID(),
		Title:           req.Title,
		Body:            req.Body,
		Type:            req.Type,
		Priority:        priority,
		Status:          status,
		TargetAudience:  req.TargetAudience,
		EffectiveDate:   effective,
		ExpirationDate:  req.ExpirationDate,
		Tags:            req.Tags,
		Attachments:     req.Attachments,
		HighlightNotice: req.HighlightNotice,
		NotifyViaEmail:  req.NotifyViaEmail,
		EmailPending:    req.NotifyViaEmail && status == StatusPublished,
		CreatedBy:       s.resolveActor(ctx, actorEmail),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateNotification re-checks every invariant and keeps the identifier,
// creator and view counter immutable.
func (s *NotificationService) UpdateNotification(ctx context.Context, id primitive.ObjectID, req CreateNotificationRequest, actorEmail string) (*Notification, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	effective := existing.EffectiveDate
	if req.EffectiveDate != nil {
		effective = *req.EffectiveDate
	}
	if err := checkInvariants(effective, req.ExpirationDate, req.TargetAudience); err != nil {
		return nil, err
	}

	// Omitted enum fields keep the stored value instead of snapping back
	// to the create-time defaults.
	priority := req.Priority
	if priority == "" {
		priority = existing.Priority
	}
	status := req.Status
	if status == "" {
		status = existing.Status
	}

	n := &Notification{
		ID:              existing.ID,
		Title:           req.Title,
		Body:            req.Body,
		Type:            req.Type,
		Priority:        priority,
		Status:          status,
		TargetAudience:  req.TargetAudience,
		EffectiveDate:   effective,
		ExpirationDate:  req.ExpirationDate,
		Tags:            req.Tags,
		Attachments:     req.Attachments,
		ViewCount:       existing.ViewCount,
		HighlightNotice: req.HighlightNotice,
		NotifyViaEmail:  req.NotifyViaEmail,
		SentTo:          existing.SentTo,
		CreatedBy:       existing.CreatedBy,
		LastModifiedBy:  s.resolveActor(ctx, actorEmail),
		CreatedAt:       existing.CreatedAt,
		UpdatedAt:       s.now(),
	}
	// Queue the email fan-out once: publishing with notifyViaEmail set
	// queues it unless a previous fan-out already went out.
	n.EmailPending = req.NotifyViaEmail && status == StatusPublished && len(existing.SentTo) == 0

	if err := s.repo.Update(ctx, n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// GetNotification fetches one notification and counts the read.
func (s *NotificationService) GetNotification(ctx context.Context, id primitive.ObjectID) (*Notification, error) {
	n, err := s.repo.FindByIDAndCountView(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	return n, nil
}

func (s *NotificationService) ListNotifications(ctx context.Context) ([]*Notification, error) {
	return s.repo.FindAll(ctx)
}

// ActiveNotifications returns the active set per the read-time predicate.
// An empty audience means no audience filter.
func (s *NotificationService) ActiveNotifications(ctx context.Context, audience string) ([]*Notification, error) {
	if audience != "" && audience != AudienceStudents && audience != AudienceExaminers && audience != AudienceCommon {
		return nil, &ValidationError{Fields: map[string]string{"audience": "must be one of: students examiners common"}}
	}
	return s.repo.FindActive(ctx, audience, s.now())
}

func (s *NotificationService) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.Delete(ctx, id)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

// BulkDelete removes every notification in the id list. Malformed and
// unknown ids are skipped, not reported as failures.
func (s *NotificationService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	var objectIDs []primitive.ObjectID
	for _, raw := range ids {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, id)
	}
	if len(objectIDs) == 0 {
		return 0, nil
	}
	return s.repo.DeleteMany(ctx, objectIDs)
}

func (s *NotificationService) Overview(ctx context.Context) (*Stats, error) {
	return s.repo.CollectStats(ctx, s.now())
}

// SendPendingEmails delivers the queued email fan-out for published
// notifications. Called periodically by the dispatcher.
func (s *NotificationService) SendPendingEmails(ctx context.Context) {
	pending, err := s.repo.FindEmailPending(ctx)
	if err != nil {
		log.Println("Failed to fetch pending notification emails:", err)
		return
	}
	for _, n := range pending {
		sentTo := s.deliverEmail(ctx, n)
		if err := s.repo.MarkEmailSent(ctx, n.ID, sentTo); err != nil {
			log.Printf("Failed to mark notification %s email as sent: %v", n.ID.Hex(), err)
		}
	}
}

func (s *NotificationService) deliverEmail(ctx context.Context, n *Notification) []string {
	users, err := s.users.FindByRoles(ctx, audienceRoles(n.TargetAudience))
	if err != nil {
		log.Println("Failed to resolve notification recipients:", err)
		return nil
	}
	var sentTo []string
	for _, user := range users {
		if err := s.mailer.SendEmail(user.Email, n.Title, n.Body); err != nil {
			log.Printf("Failed to email %s: %v", user.Email, err)
			continue
		}
		sentTo = append(sentTo, user.Email)
	}
	return sentTo
}

// audienceRoles maps the audience set to user roles; common goes to everyone.
func audienceRoles(audience []string) []string {
	roles := make(map[string]struct{})
	for _, a := range audience {
		switch a {
		case AudienceStudents:
			roles[auth.RoleStudent] = struct{}{}
		case AudienceExaminers:
			roles[auth.RoleExaminer] = struct{}{}
		case AudienceCommon:
			roles[auth.RoleStudent] = struct{}{}
			roles[auth.RoleExaminer] = struct{}{}
			roles[auth.RoleAdmin] = struct{}{}
		}
	}
	out := make([]string, 0, len(roles))
	for r := range roles {
		out = append(out, r)
	}
	return out
}

func (s *NotificationService) resolveActor(ctx context.Context, email string) *primitive.ObjectID {
	if email == "" {
		return nil
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return nil
	}
	id := user.ID
	return &id
}

// Notice operations. Mutations broadcast to all realtime subscribers,
// fire-and-forget.

type NoticeRequest struct {
	Title              string `json:"title" validate:"required,min=5,max=100"`
	Body               string `json:"body" validate:"required,min=10"`
	PublishToStudents  bool   `json:"publishToStudents"`
	PublishToExaminers bool   `json:"publishToExaminers"`
	Highlight          bool   `json:"highlight"`
}

func (s *NotificationService) CreateNotice(ctx context.Context, req NoticeRequest) (*Notice, error) {
	now := s.now()
	n := &Notice{
		ID:                 primitive.NewObjectID(),
		Title:              req.Title,
		Body:               req.Body,
		PublishToStudents:  req.PublishToStudents,
		PublishToExaminers: req.PublishToExaminers,
		Highlight:          req.Highlight,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.CreateNotice(ctx, n); err != nil {
		return nil, err
	}
	s.sink.Publish(realtime.EventNewNotice, n)
	return n, nil
}

func (s *NotificationService) UpdateNotice(ctx context.Context, id primitive.ObjectID, req NoticeRequest) (*Notice, error) {
	existing, err := s.repo.FindNoticeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	n := &Notice{
		ID:                 existing.ID,
		Title:              req.Title,
		Body:               req.Body,
		PublishToStudents:  req.PublishToStudents,
		PublishToExaminers: req.PublishToExaminers,
		Highlight:          req.Highlight,
		CreatedAt:          existing.CreatedAt,
		UpdatedAt:          s.now(),
	}
	if err := s.repo.UpdateNotice(ctx, n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.sink.Publish(realtime.EventUpdatedNotice, n)
	return n, nil
}

func (s *NotificationService) DeleteNotice(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.DeleteNotice(ctx, id)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.sink.Publish(realtime.EventDeletedNotice, map[string]string{"id": id.Hex()})
	return nil
}

func (s *NotificationService) ListNotices(ctx context.Context) ([]*Notice, error) {
	return s.repo.FindAllNotices(ctx)
}

func (s *NotificationService) NoticesForAudience(ctx context.Context, audience string) ([]*Notice, error) {
	if audience != AudienceStudents && audience != AudienceExaminers {
		return nil, &ValidationError{Fields: map[string]string{"audience": "must be one of: students examiners"}}
	}
	return s.repo.FindNoticesForAudience(ctx, audience)
}

func (s *NotificationService) GetNotice(ctx context.Context, id primitive.ObjectID) (*Notice, error) {
	n, err := s.repo.FindNoticeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	return n, nil
}
