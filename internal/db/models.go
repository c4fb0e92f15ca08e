package db

import (
	"strings"
	"time"
)

// User is a profile record. Role "admin" and "superadmin" grant the admin surface.
type User struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	FirstName         string    `gorm:"size:100;not null"`
	LastName          string    `gorm:"size:100;not null"`
	Email             string    `gorm:"uniqueIndex;size:191;not null"`
	MobileNumber      string    `gorm:"size:32;not null"`
	Birthdate         time.Time `gorm:"type:date;not null"`
	Gender            string    `gorm:"size:32;not null;index"`
	SexualOrientation string    `gorm:"size:32;not null"`
	GenderInterest    string    `gorm:"size:32;not null"`
	Bio               string    `gorm:"type:text;not null"`
	Country           string    `gorm:"size:100"`
	State             string    `gorm:"size:100"`
	City              string    `gorm:"size:100"`
	School            string    `gorm:"size:191"`
	PasswordHash      string    `gorm:"size:255;not null"`
	Role              string    `gorm:"size:32;not null;default:user"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`

	Photos []Photo `gorm:"foreignKey:UserID"`
}

// IsAdmin reports whether the user may use the admin operations.
func (u *User) IsAdmin() bool {
	switch strings.ToLower(u.Role) {
	case "admin", "superadmin":
		return true
	}
	return false
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Photo belongs to a user. Position defines display order starting at 0.
// At most one photo per user has IsPrimary set; SetPrimary keeps that true.
type Photo struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;index:idx_photos_user_position,priority:1"`
	URL       string    `gorm:"size:512;not null"`
	Position  int       `gorm:"not null;default:0;index:idx_photos_user_position,priority:2"`
	IsPrimary bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Like represents a liker's like/pass decision on another user.
//
// Composite PK: (LikerID, LikedID)
//   - Ensures a single row per ordered pair; a repeat swipe updates it.
//
// Indexes:
//   - idx_likes_liked_updated(liked_id, is_like, updated_at DESC, liker_id)
//     Optimizes "who liked me" lists with pagination.
type Like struct {
	LikerID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	LikedID   uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_likes_liked_updated,priority:1"`
	IsLike    bool      `gorm:"not null;index:idx_likes_liked_updated,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_likes_liked_updated,priority:3,sort:desc"`
}

// Match is the cached, undirected result of two reciprocal likes.
// UserOneID < UserTwoID always; the unique pair index is what keeps
// concurrent reconciles from inserting twice.
type Match struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserOneID uint64    `gorm:"not null;uniqueIndex:idx_matches_pair,priority:1"`
	UserTwoID uint64    `gorm:"not null;uniqueIndex:idx_matches_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Pair returns the canonical participants of the match.
func (m *Match) Pair() Pair { return Pair{Lo: m.UserOneID, Hi: m.UserTwoID} }

// Conversation is keyed on the same canonical pair as Match and outlives it.
// UpdatedAt tracks the last activity.
type Conversation struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserAID   uint64    `gorm:"column:user_a_id;not null;uniqueIndex:idx_conversations_pair,priority:1"`
	UserBID   uint64    `gorm:"column:user_b_id;not null;uniqueIndex:idx_conversations_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`
}

func (c *Conversation) Pair() Pair { return Pair{Lo: c.UserAID, Hi: c.UserBID} }

// Message is immutable except for Read.
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	ConversationID uint64    `gorm:"not null;index:idx_messages_conversation_created,priority:1"`
	SenderID       uint64    `gorm:"not null;index"`
	Content        string    `gorm:"type:text;not null"`
	Read           bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index:idx_messages_conversation_created,priority:2"`
}

// All lists every model for AutoMigrate, parents first.
func All() []any {
	return []any{&User{}, &Photo{}, &Like{}, &Match{}, &Conversation{}, &Message{}}
}
