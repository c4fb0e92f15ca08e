package api

import (
	"context"
	"time"

	"github.com/oggyb/swipematch/internal/db"
	"github.com/oggyb/swipematch/internal/service/admin"
	"github.com/oggyb/swipematch/internal/service/messaging"
	"github.com/oggyb/swipematch/internal/service/profile"
)

// PhotoView is the wire shape of a photo.
type PhotoView struct {
	ID        uint64 `json:"id"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
	IsPrimary bool   `json:"isPrimary"`
}

// UserView is the wire shape of a profile. Email and mobile number are only
// shown to the user themselves and to admins.
type UserView struct {
	ID                uint64      `json:"id"`
	FirstName         string      `json:"firstName"`
	LastName          string      `json:"lastName"`
	FullName          string      `json:"fullName"`
	Email             string      `json:"email,omitempty"`
	MobileNumber      string      `json:"mobileNumber,omitempty"`
	Birthdate         string      `json:"birthdate"`
	Age               *int        `json:"age"`
	Gender            string      `json:"gender"`
	SexualOrientation string      `json:"sexualOrientation"`
	GenderInterest    string      `json:"genderInterest"`
	Bio               string      `json:"bio"`
	Country           string      `json:"country"`
	State             string      `json:"state"`
	City              string      `json:"city"`
	School            string      `json:"school"`
	Role              string      `json:"role"`
	PrimaryPhotoURL   *string     `json:"primaryPhotoUrl"`
	Photos            []PhotoView `json:"photos"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// MatchView embeds both participants. OtherUser is the participant that is
// not the viewer, set only when the viewer takes part.
type MatchView struct {
	ID        uint64    `json:"id"`
	UserOne   *UserView `json:"userOne"`
	UserTwo   *UserView `json:"userTwo"`
	OtherUser *UserView `json:"otherUser,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MessageView struct {
	ID             uint64    `json:"id"`
	ConversationID uint64    `json:"conversationId"`
	SenderID       uint64    `json:"senderId"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ConversationView struct {
	ID          uint64       `json:"id"`
	UserA       *UserView    `json:"userA"`
	UserB       *UserView    `json:"userB"`
	OtherUser   *UserView    `json:"otherUser,omitempty"`
	LastMessage *MessageView `json:"lastMessage"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type LikerView struct {
	UserID        uint64 `json:"userId"`
	UnixTimestamp int64  `json:"unixTimestamp"`
}

type DashboardView struct {
	TotalUsers              int64   `json:"totalUsers"`
	TotalMatches            int64   `json:"totalMatches"`
	TotalMessages           int64   `json:"totalMessages"`
	UsersToday              int64   `json:"usersToday"`
	MatchesToday            int64   `json:"matchesToday"`
	MessagesToday           int64   `json:"messagesToday"`
	UsersThisWeek           int64   `json:"usersThisWeek"`
	MatchesThisWeek         int64   `json:"matchesThisWeek"`
	MessagesThisWeek        int64   `json:"messagesThisWeek"`
	AverageMatchesPerUser   float64 `json:"averageMatchesPerUser"`
	AverageMessagesPerMatch float64 `json:"averageMessagesPerMatch"`
}

type UserStatsView struct {
	ID              uint64    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	PrimaryPhotoURL *string   `json:"primaryPhotoUrl"`
	MatchCount      int64     `json:"matchCount"`
	CreatedAt       time.Time `json:"createdAt"`
	Gender          string    `json:"gender"`
	Age             *int      `json:"age"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	Country         string    `json:"country"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func photoView(p db.Photo) PhotoView {
	return PhotoView{ID: p.ID, URL: p.URL, Position: p.Position, IsPrimary: p.IsPrimary}
}

func userView(u *db.User, viewer *db.User, now time.Time) *UserView {
	if u == nil {
		return nil
	}
	v := &UserView{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		FullName:          u.FullName(),
		Birthdate:         u.Birthdate.Format(dateLayout),
		Age:               profile.Age(u.Birthdate, now),
		Gender:            u.Gender,
		SexualOrientation: u.SexualOrientation,
		GenderInterest:    u.GenderInterest,
		Bio:               u.Bio,
		Country:           u.Country,
		State:             u.State,
		City:              u.City,
		School:            u.School,
		Role:              u.Role,
		PrimaryPhotoURL:   optional(profile.PrimaryPhotoURL(u)),
		Photos:            make([]PhotoView, 0, len(u.Photos)),
		CreatedAt:         u.CreatedAt,
	}
	if viewer != nil && (viewer.ID == u.ID || viewer.IsAdmin()) {
		v.Email = u.Email
		v.MobileNumber = u.MobileNumber
	}
	for _, p := range u.Photos {
		v.Photos = append(v.Photos, photoView(p))
	}
	return v
}

func messageView(m *db.Message) *MessageView {
	if m == nil {
		return nil
	}
	return &MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt,
	}
}

func dashboardView(s *admin.DashboardStats) DashboardView {
	return DashboardView{
		TotalUsers:              s.TotalUsers,
		TotalMatches:            s.TotalMatches,
		TotalMessages:           s.TotalMessages,
		UsersToday:              s.UsersToday,
		MatchesToday:            s.MatchesToday,
		MessagesToday:           s.MessagesToday,
		UsersThisWeek:           s.UsersThisWeek,
		MatchesThisWeek:         s.MatchesThisWeek,
		MessagesThisWeek:        s.MessagesThisWeek,
		AverageMatchesPerUser:   s.AverageMatchesPerUser,
		AverageMessagesPerMatch: s.AverageMessagesPerMatch,
	}
}

func userStatsView(s admin.UserStats) UserStatsView {
	return UserStatsView{
		ID:              s.ID,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		Email:           s.Email,
		PrimaryPhotoURL: optional(s.PrimaryPhotoURL),
		MatchCount:      s.MatchCount,
		CreatedAt:       s.CreatedAt,
		Gender:          s.Gender,
		Age:             s.Age,
		City:            s.City,
		State:           s.State,
		Country:         s.Country,
	}
}

// viewBuilder renders views for one request, loading each referenced user once.
type viewBuilder struct {
	profile *profile.Service
	viewer  *db.User
	now     time.Time
	users   map[uint64]*UserView
}

func (d *Dispatcher) views(viewer *db.User) *viewBuilder {
	return &viewBuilder{profile: d.profile, viewer: viewer, now: time.Now(), users: map[uint64]*UserView{}}
}

func (b *viewBuilder) user(u *db.User) *UserView {
	return userView(u, b.viewer, b.now)
}

// userByID returns nil for users that no longer exist.
func (b *viewBuilder) userByID(ctx context.Context, id uint64) (*UserView, error) {
	if v, ok := b.users[id]; ok {
		return v, nil
	}
	u, err := b.profile.Get(ctx, id)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	v := userView(u, b.viewer, b.now)
	b.users[id] = v
	return v, nil
}

func (b *viewBuilder) match(ctx context.Context, m *db.Match) (*MatchView, error) {
	if m == nil {
		return nil, nil
	}
	one, err := b.userByID(ctx, m.UserOneID)
	if err != nil {
		return nil, err
	}
	two, err := b.userByID(ctx, m.UserTwoID)
	if err != nil {
		return nil, err
	}
	return &MatchView{
		ID:        m.ID,
		UserOne:   one,
		UserTwo:   two,
		OtherUser: b.other(m.Pair(), one, two),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// other picks the view of the participant facing the viewer.
func (b *viewBuilder) other(p db.Pair, lo, hi *UserView) *UserView {
	if b.viewer == nil || !p.Contains(b.viewer.ID) {
		return nil
	}
	if p.Other(b.viewer.ID) == p.Lo {
		return lo
	}
	return hi
}

func (b *viewBuilder) conversation(ctx context.Context, s messaging.ConversationSummary) (*ConversationView, error) {
	a, err := b.userByID(ctx, s.Conversation.UserAID)
	if err != nil {
		return nil, err
	}
	bb, err := b.userByID(ctx, s.Conversation.UserBID)
	if err != nil {
		return nil, err
	}
	return &ConversationView{
		ID:          s.Conversation.ID,
		UserA:       a,
		UserB:       bb,
		OtherUser:   b.other(s.Conversation.Pair(), a, bb),
		LastMessage: messageView(s.LastMessage),
		UpdatedAt:   s.Conversation.UpdatedAt,
	}, nil
}
