package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

type Profile struct {
	DisplayName         string    `db:"display_name" json:"displayName"`
	Bio                 string    `db:"bio" json:"bio"`
	Avatar              string    `db:"avatar" json:"avatar"`
	SpiritualBackground string    `db:"spiritual_background" json:"spiritualBackground"`
	DreamingExperience  string    `db:"dreaming_experience" json:"dreamingExperience"`
	Interests           Interests `db:"interests" json:"interests"`
}

// Interests is stored as a JSON array column.
type Interests []string

func (i Interests) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(i))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (i *Interests) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*i = Interests{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("interests: unsupported type %T", src)
	}

	var out []string
	err := json.Unmarshal(raw, &out)
	if err != nil {
		return fmt.Errorf("interests: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*i = out
	return nil
}

type Preferences struct {
	EmailNotifications bool       `db:"email_notifications" json:"emailNotifications"`
	CommunityUpdates   bool       `db:"community_updates" json:"communityUpdates"`
	DreamReminders     bool       `db:"dream_reminders" json:"dreamReminders"`
	ProfileVisibility  Visibility `db:"profile_visibility" json:"profileVisibility"`
	JournalVisibility  Visibility `db:"journal_visibility" json:"journalVisibility"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		CommunityUpdates:   true,
		DreamReminders:     false,
		ProfileVisibility:  VisibilityPublic,
		JournalVisibility:  VisibilityPrivate,
	}
}

type Stats struct {
	TotalDreams   int       `db:"total_dreams" json:"totalDreams"`
	TotalPosts    int       `db:"total_posts" json:"totalPosts"`
	TotalComments int       `db:"total_comments" json:"totalComments"`
	JoinedAt      time.Time `db:"joined_at" json:"joinDate"`
	LastActive    time.Time `db:"last_active" json:"lastActive"`
}

// Stat names a counter in Stats.
type Stat string

const (
	StatDreams   Stat = "total_dreams"
	StatPosts    Stat = "total_posts"
	StatComments Stat = "total_comments"
)

func (s Stat) Valid() bool {
	switch s {
	case StatDreams, StatPosts, StatComments:
		return true
	}
	return false
}
