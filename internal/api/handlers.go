package api

import (
	"context"

	"github.com/oggyb/swipematch/internal/service/admin"
	"github.com/oggyb/swipematch/internal/service/auth"
	"github.com/oggyb/swipematch/internal/service/matching"
	"github.com/oggyb/swipematch/internal/service/profile"
)

type payload = map[string]any

func success() payload { return payload{"success": true} }

// userInput reads account fields. Missing ones stay empty so the auth
// service can report them all at once.
func userInput(a Args) (auth.UserInput, error) {
	var in auth.UserInput
	for key, dst := range map[string]*string{
		"firstName":         &in.FirstName,
		"lastName":          &in.LastName,
		"email":             &in.Email,
		"mobileNumber":      &in.MobileNumber,
		"password":          &in.Password,
		"gender":            &in.Gender,
		"sexualOrientation": &in.SexualOrientation,
		"genderInterest":    &in.GenderInterest,
		"bio":               &in.Bio,
		"country":           &in.Country,
		"state":             &in.State,
		"city":              &in.City,
		"school":            &in.School,
		"role":              &in.Role,
	} {
		s, err := a.OptionalString(key)
		if err != nil {
			return in, err
		}
		if s != nil {
			*dst = *s
		}
	}
	birthdate, err := a.OptionalDate("birthdate")
	if err != nil {
		return in, err
	}
	if birthdate != nil {
		in.Birthdate = *birthdate
	}
	return in, nil
}

// --- auth ---

func (d *Dispatcher) registerUser(ctx context.Context, req Request) (any, error) {
	in, err := userInput(req.Args)
	if err != nil {
		return nil, err
	}
	u, err := d.auth.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return payload{"user": d.views(u).user(u)}, nil
}

func (d *Dispatcher) loginUser(ctx context.Context, req Request) (any, error) {
	email, err := req.Args.String("email")
	if err != nil {
		return nil, err
	}
	password, err := req.Args.String("password")
	if err != nil {
		return nil, err
	}
	sess, err := d.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	u, err := d.profile.Get(ctx, sess.User.ID)
	if err != nil {
		return nil, err
	}
	return payload{"user": d.views(u).user(u), "token": sess.Token}, nil
}

// currentUser is null for anonymous callers rather than an error.
func (d *Dispatcher) currentUser(ctx context.Context, req Request) (any, error) {
	if req.Actor == nil {
		return nil, nil
	}
	u, err := d.profile.Get(ctx, req.Actor.ID)
	if err != nil {
		return nil, err
	}
	return d.views(req.Actor).user(u), nil
}

// --- profile ---

func (d *Dispatcher) user(ctx context.Context, req Request) (any, error) {
	id, err := req.Args.ID("id")
	if err != nil {
		return nil, err
	}
	u, err := d.profile.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.views(req.Actor).user(u), nil
}

func (d *Dispatcher) updateProfile(ctx context.Context, req Request) (any, error) {
	var upd profile.Update
	for key, dst := range map[string]**string{
		"firstName":      &upd.FirstName,
		"lastName":       &upd.LastName,
		"genderInterest": &upd.GenderInterest,
		"bio":            &upd.Bio,
		"school":         &upd.School,
		"country":        &upd.Country,
		"state":          &upd.State,
		"city":           &upd.City,
	} {
		s, err := req.Args.OptionalString(key)
		if err != nil {
			return nil, err
		}
		*dst = s
	}
	u, err := d.profile.UpdateProfile(ctx, req.Actor.ID, upd)
	if err != nil {
		return nil, err
	}
	return payload{"user": d.views(req.Actor).user(u)}, nil
}

func (d *Dispatcher) uploadPhoto(ctx context.Context, req Request) (any, error) {
	url, err := req.Args.String("url")
	if err != nil {
		return nil, err
	}
	p, err := d.profile.UploadPhoto(ctx, req.Actor.ID, url)
	if err != nil {
		return nil, err
	}
	return payload{"photo": photoView(*p)}, nil
}

func (d *Dispatcher) deletePhoto(ctx context.Context, req Request) (any, error) {
	id, err := req.Args.ID("photoId")
	if err != nil {
		return nil, err
	}
	if err := d.profile.DeletePhoto(ctx, req.Actor.ID, id); err != nil {
		return nil, err
	}
	return success(), nil
}

func (d *Dispatcher) setPrimaryPhoto(ctx context.Context, req Request) (any, error) {
	id, err := req.Args.ID("photoId")
	if err != nil {
		return nil, err
	}
	p, err := d.profile.SetPrimaryPhoto(ctx, req.Actor.ID, id)
	if err != nil {
		return nil, err
	}
	return payload{"photo": photoView(*p)}, nil
}

// --- swiping and matches ---

func (d *Dispatcher) potentialUsers(ctx context.Context, req Request) (any, error) {
	limit, err := req.Args.Int("limit", d.appCtx.Config.Limits.Candidates)
	if err != nil {
		return nil, err
	}
	users, err := d.candidates.Next(ctx, req.Actor.ID, limit)
	if err != nil {
		return nil, err
	}
	vb := d.views(req.Actor)
	out := make([]*UserView, 0, len(users))
	for i := range users {
		out = append(out, vb.user(&users[i]))
	}
	return out, nil
}

func (d *Dispatcher) swipe(ctx context.Context, req Request, interested bool) (*matching.LikeResult, error) {
	target, err := req.Args.ID("targetUserId")
	if err != nil {
		return nil, err
	}
	return d.matching.RecordInterest(ctx, req.Actor.ID, target, interested)
}

func (d *Dispatcher) likeUser(ctx context.Context, req Request) (any, error) {
	res, err := d.swipe(ctx, req, true)
	if err != nil {
		return nil, err
	}
	m, err := d.views(req.Actor).match(ctx, res.Match)
	if err != nil {
		return nil, err
	}
	return payload{"match": m, "matched": res.Match != nil, "matchCreated": res.MatchCreated}, nil
}

func (d *Dispatcher) dislikeUser(ctx context.Context, req Request) (any, error) {
	if _, err := d.swipe(ctx, req, false); err != nil {
		return nil, err
	}
	return success(), nil
}

// matches lists the actor's matches; admins may pass userId to list anyone's.
func (d *Dispatcher) matches(ctx context.Context, req Request) (any, error) {
	userID, err := req.Args.OptionalID("userId")
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		userID = req.Actor.ID
	} else if userID != req.Actor.ID {
		if err := admin.RequireAdmin(req.Actor); err != nil {
			return nil, err
		}
	}
	limit, err := req.Args.Int("limit", d.appCtx.Config.Limits.Matches)
	if err != nil {
		return nil, err
	}
	offset, err := req.Args.Int("offset", 0)
	if err != nil {
		return nil, err
	}

	list, err := d.matching.ListMatches(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	vb := d.views(req.Actor)
	out := make([]*MatchView, 0, len(list))
	for i := range list {
		v, err := vb.match(ctx, &list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *Dispatcher) unmatchUser(ctx context.Context, req Request) (any, error) {
	matchID, err := req.Args.OptionalID("matchId")
	if err != nil {
		return nil, err
	}
	userID, err := req.Args.OptionalID("userId")
	if err != nil {
		return nil, err
	}
	target := matching.UnmatchTarget{MatchID: matchID, UserID: userID}
	if err := d.matching.Unmatch(ctx, req.Actor.ID, target); err != nil {
		return nil, err
	}
	return success(), nil
}

func (d *Dispatcher) likedYou(ctx context.Context, req Request) (any, error) {
	token, err := req.Args.OptionalString("paginationToken")
	if err != nil {
		return nil, err
	}
	page, err := d.matching.ListLikedYou(ctx, req.Actor.ID, token)
	if err != nil {
		return nil, err
	}
	likers := make([]LikerView, 0, len(page.Likes))
	for _, l := range page.Likes {
		likers = append(likers, LikerView{UserID: l.LikerID, UnixTimestamp: l.UpdatedAt.UnixMilli()})
	}
	return payload{"likers": likers, "nextPaginationToken": page.NextToken}, nil
}

func (d *Dispatcher) countLikedYou(ctx context.Context, req Request) (any, error) {
	n, err := d.matching.CountLikedYou(ctx, req.Actor.ID)
	if err != nil {
		return nil, err
	}
	return payload{"count": n}, nil
}

// --- messaging ---

func (d *Dispatcher) sendMessage(ctx context.Context, req Request) (any, error) {
	matchID, err := req.Args.ID("matchId")
	if err != nil {
		return nil, err
	}
	content, err := req.Args.String("content")
	if err != nil {
		return nil, err
	}
	msg, _, err := d.messaging.SendToMatch(ctx, req.Actor.ID, matchID, content)
	if err != nil {
		return nil, err
	}
	return payload{"message": messageView(msg)}, nil
}

func (d *Dispatcher) conversations(ctx context.Context, req Request) (any, error) {
	list, err := d.messaging.ListConversations(ctx, req.Actor.ID)
	if err != nil {
		return nil, err
	}
	vb := d.views(req.Actor)
	out := make([]*ConversationView, 0, len(list))
	for _, s := range list {
		v, err := vb.conversation(ctx, s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *Dispatcher) messages(ctx context.Context, req Request) (any, error) {
	convID, err := req.Args.ID("conversationId")
	if err != nil {
		return nil, err
	}
	msgs, err := d.messaging.ListMessages(ctx, req.Actor.ID, convID)
	if err != nil {
		return nil, err
	}
	out := make([]*MessageView, 0, len(msgs))
	for i := range msgs {
		out = append(out, messageView(&msgs[i]))
	}
	return out, nil
}

// --- admin ---

func (d *Dispatcher) adminDashboard(ctx context.Context, req Request) (any, error) {
	stats, err := d.admin.Dashboard(ctx, req.Actor)
	if err != nil {
		return nil, err
	}
	return dashboardView(stats), nil
}

func (d *Dispatcher) adminUsers(ctx context.Context, req Request) (any, error) {
	limit, err := req.Args.Int("limit", d.appCtx.Config.Limits.Matches)
	if err != nil {
		return nil, err
	}
	offset, err := req.Args.Int("offset", 0)
	if err != nil {
		return nil, err
	}
	rows, err := d.admin.UserStats(ctx, req.Actor, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]UserStatsView, 0, len(rows))
	for _, r := range rows {
		out = append(out, userStatsView(r))
	}
	return out, nil
}

func (d *Dispatcher) adminCreateUser(ctx context.Context, req Request) (any, error) {
	if err := admin.RequireAdmin(req.Actor); err != nil {
		return nil, err
	}
	in, err := userInput(req.Args)
	if err != nil {
		return nil, err
	}
	u, err := d.admin.CreateUser(ctx, req.Actor, in)
	if err != nil {
		return nil, err
	}
	return payload{"user": d.views(req.Actor).user(u)}, nil
}

func (d *Dispatcher) adminUpdateUser(ctx context.Context, req Request) (any, error) {
	if err := admin.RequireAdmin(req.Actor); err != nil {
		return nil, err
	}
	id, err := req.Args.ID("id")
	if err != nil {
		return nil, err
	}
	var upd admin.UserUpdate
	for key, dst := range map[string]**string{
		"firstName":         &upd.FirstName,
		"lastName":          &upd.LastName,
		"email":             &upd.Email,
		"mobileNumber":      &upd.MobileNumber,
		"gender":            &upd.Gender,
		"sexualOrientation": &upd.SexualOrientation,
		"genderInterest":    &upd.GenderInterest,
		"bio":               &upd.Bio,
		"country":           &upd.Country,
		"state":             &upd.State,
		"city":              &upd.City,
		"school":            &upd.School,
		"role":              &upd.Role,
	} {
		s, err := req.Args.OptionalString(key)
		if err != nil {
			return nil, err
		}
		*dst = s
	}
	if upd.Birthdate, err = req.Args.OptionalDate("birthdate"); err != nil {
		return nil, err
	}

	u, err := d.admin.UpdateUser(ctx, req.Actor, id, upd)
	if err != nil {
		return nil, err
	}
	return payload{"user": d.views(req.Actor).user(u)}, nil
}

func (d *Dispatcher) adminDeleteUser(ctx context.Context, req Request) (any, error) {
	if err := admin.RequireAdmin(req.Actor); err != nil {
		return nil, err
	}
	id, err := req.Args.ID("id")
	if err != nil {
		return nil, err
	}
	if err := d.admin.DeleteUser(ctx, req.Actor, id); err != nil {
		return nil, err
	}
	return success(), nil
}

func (d *Dispatcher) adminDeleteMatch(ctx context.Context, req Request) (any, error) {
	if err := admin.RequireAdmin(req.Actor); err != nil {
		return nil, err
	}
	id, err := req.Args.ID("id")
	if err != nil {
		return nil, err
	}
	if err := d.admin.DeleteMatch(ctx, req.Actor, id); err != nil {
		return nil, err
	}
	return success(), nil
}
