package notification

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification type values.
const (
	TypeAcademic       = "Academic"
	TypeAdministrative = "Administrative"
	TypeEvent          = "Event"
)

// Priority values, ordered High > Medium > Low.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Lifecycle status values. Archived is terminal: an archived notification is
// never active regardless of its date window.
const (
	StatusDraft     = "Draft"
	StatusPublished = "Published"
	StatusArchived  = "Archived"
)

// Audience values. AudienceCommon denotes visibility to everyone.
const (
	AudienceStudents  = "students"
	AudienceExaminers = "examiners"
	AudienceCommon    = "common"
)

// Notification is an announcement with a publication lifecycle and a target
// audience. "Active" is computed at read time from the date window; no
// background job ever flips status on expiry.
type Notification struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title           string              `bson:"title" json:"title"`
	Body            string              `bson:"body" json:"body"`
	Type            string              `bson:"type" json:"type"`
	Priority        string              `bson:"priority" json:"priority"`
	Status          string              `bson:"status" json:"status"`
	TargetAudience  []string            `bson:"target_audience" json:"targetAudience"`
	EffectiveDate   time.Time           `bson:"effective_date" json:"effectiveDate"`
	ExpirationDate  time.Time           `bson:"expiration_date" json:"expirationDate"`
	Tags            []string            `bson:"tags,omitempty" json:"tags,omitempty"`
	Attachments     []Attachment        `bson:"attachments,omitempty" json:"attachments,omitempty"`
	ViewCount       int64               `bson:"view_count" json:"viewCount"`
	HighlightNotice bool                `bson:"highlight_notice" json:"highlightNotice"`
	NotifyViaEmail  bool                `bson:"notify_via_email" json:"notifyViaEmail"`
	EmailPending    bool                `bson:"email_pending" json:"-"`
	SentTo          []string            `bson:"sent_to,omitempty" json:"-"`
	CreatedBy       *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	LastModifiedBy  *primitive.ObjectID `bson:"last_modified_by,omitempty" json:"lastModifiedBy,omitempty"`
	CreatedAt       time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updated_at" json:"updatedAt"`
}

// Attachment is either a bare URL or a URL with file metadata. A plain JSON
// string decodes into the simple form, so both payload shapes the clients
// send are accepted.
type Attachment struct {
	Filename    string `bson:"filename,omitempty" json:"filename,omitempty"`
	URL         string `bson:"url" json:"url"`
	ContentType string `bson:"content_type,omitempty" json:"type,omitempty"`
	Size        int64  `bson:"size,omitempty" json:"size,omitempty"`
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		*a = Attachment{URL: url}
		return nil
	}
	type rich Attachment
	var r rich
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*a = Attachment(r)
	return nil
}

// ActiveAt reports whether the notification is visible at the given instant:
// published, effective, and not yet expired. Expiration is strict, so a
// notification whose expiration equals now is already inactive.
func (n *Notification) ActiveAt(now time.Time) bool {
	return n.Status == StatusPublished &&
		!n.EffectiveDate.After(now) &&
		n.ExpirationDate.After(now)
}

// VisibleTo reports whether the notification targets the given audience.
// An empty audience means no filter.
func (n *Notification) VisibleTo(audience string) bool {
	if audience == "" {
		return true
	}
	for _, a := range n.TargetAudience {
		if a == audience {
			return true
		}
	}
	return false
}

// PriorityRank maps priority to a sortable weight, highest first.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Notice is the older flat announcement kept in its own collection. Audience
// targeting uses two booleans instead of the audience set.
type Notice struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title              string             `bson:"title" json:"title"`
	Body               string             `bson:"body" json:"body"`
	PublishToStudents  bool               `bson:"publish_to_students" json:"publishToStudents"`
	PublishToExaminers bool               `bson:"publish_to_examiners" json:"publishToExaminers"`
	Highlight          bool               `bson:"highlight" json:"highlight"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Stats is the aggregate overview returned by the stats endpoint.
type Stats struct {
	Total      int64            `json:"total"`
	Active     int64            `json:"active"`
	TotalViews int64            `json:"totalViews"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByType     map[string]int64 `json:"byType"`
	ByPriority map[string]int64 `json:"byPriority"`
}
