package studio

import (
	"time"

	"github.com/google/uuid"
)

// Kind names one of the fixed entity collections.
type Kind string

const (
	KindContact    Kind = "contact"
	KindSubscriber Kind = "subscriber"
	KindProject    Kind = "project"
	KindPost       Kind = "post"
	KindTeamMember Kind = "team_member"
)

// Record is implemented by every entity type held in a Store.
type Record interface {
	// RecordID returns the server-assigned identifier.
	RecordID() uuid.UUID
	// CreatedTime is the insertion time; it defines natural order.
	CreatedTime() time.Time
	// ListTime is the timestamp list endpoints sort on.
	ListTime() time.Time
}

// MediaRecord is a Record that may own one media attachment.
type MediaRecord interface {
	Record
	MediaRef() string
}

// Contact is a message submitted through the public contact form.
type Contact struct {
	ID          uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Email       string    `json:"email" gorm:"not null"`
	Company     string    `json:"company,omitempty"`
	Service     string    `json:"service,omitempty"`
	Message     string    `json:"message" gorm:"type:text;not null"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"index"`
}

func (Contact) TableName() string { return "contacts" }

func (c Contact) RecordID() uuid.UUID { return c.ID }
func (c Contact) CreatedTime() time.Time { return c.SubmittedAt }
func (c Contact) ListTime() time.Time { return c.SubmittedAt }

// Subscriber is a newsletter subscription. Email is unique.
type Subscriber struct {
	ID           uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	SubscribedAt time.Time `json:"subscribed_at" gorm:"index"`
}

func (Subscriber) TableName() string { return "newsletter_subscribers" }

func (s Subscriber) RecordID() uuid.UUID { return s.ID }
func (s Subscriber) CreatedTime() time.Time { return s.SubscribedAt }
func (s Subscriber) ListTime() time.Time { return s.SubscribedAt }

// Project is a portfolio entry.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Category    string    `json:"category" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	ImageRef    string    `json:"image_ref,omitempty"`
	Date        time.Time `json:"date" gorm:"index"`
	Featured    bool      `json:"featured" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Project) TableName() string { return "projects" }

func (p Project) RecordID() uuid.UUID { return p.ID }
func (p Project) CreatedTime() time.Time { return p.CreatedAt }
func (p Project) ListTime() time.Time { return p.Date }
func (p Project) MediaRef() string { return p.ImageRef }

// Post is a blog post.
type Post struct {
	ID          uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Category    string    `json:"category" gorm:"not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	ImageRef    string    `json:"image_ref,omitempty"`
	Author      string    `json:"author" gorm:"not null"`
	PublishedAt time.Time `json:"published_at" gorm:"index"`
}

func (Post) TableName() string { return "posts" }

func (p Post) RecordID() uuid.UUID { return p.ID }
func (p Post) CreatedTime() time.Time { return p.PublishedAt }
func (p Post) ListTime() time.Time { return p.PublishedAt }
func (p Post) MediaRef() string { return p.ImageRef }

// Social holds a team member's optional social profile handles.
type Social struct {
	Instagram string `json:"instagram,omitempty" gorm:"column:instagram"`
	LinkedIn  string `json:"linkedin,omitempty" gorm:"column:linkedin"`
	Twitter   string `json:"twitter,omitempty" gorm:"column:twitter"`
}

// TeamMember is a studio team profile.
type TeamMember struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Role      string    `json:"role" gorm:"not null"`
	ImageRef  string    `json:"image_ref,omitempty"`
	Bio       string    `json:"bio" gorm:"type:text;not null"`
	Social    Social    `json:"social" gorm:"embedded;embeddedPrefix:social_"`
	CreatedAt time.Time `json:"created_at"`
}

func (TeamMember) TableName() string { return "team_members" }

func (m TeamMember) RecordID() uuid.UUID { return m.ID }
func (m TeamMember) CreatedTime() time.Time { return m.CreatedAt }
func (m TeamMember) ListTime() time.Time { return m.CreatedAt }
func (m TeamMember) MediaRef() string { return m.ImageRef }

// SearchResult is the merged output of a cross-entity search.
type SearchResult struct {
	Projects []*Project `json:"projects"`
	Posts    []*Post    `json:"posts"`
}

// Stats holds current record counts for the admin dashboard. The five
// numbers are read independently and may not be mutually consistent under
// concurrent writes.
type Stats struct {
	Projects    int `json:"projects"`
	Posts       int `json:"posts"`
	Contacts    int `json:"contacts"`
	Subscribers int `json:"subscribers"`
	Team        int `json:"team"`
}

// ObjectMeta contains metadata about a stored media object.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}
