package api_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/swipematch/internal/api"
	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/db"
	svcErr "github.com/oggyb/swipematch/internal/errors"
	"github.com/oggyb/swipematch/internal/testutil"
)

func setup(t *testing.T) (*api.Dispatcher, *app.AppContext) {
	t.Helper()
	appCtx := testutil.NewAppContext(t)
	return api.NewDispatcher(appCtx), appCtx
}

func exec(t *testing.T, d *api.Dispatcher, actor *db.User, op string, args api.Args) api.Response {
	t.Helper()
	return d.Execute(context.Background(), api.Request{Operation: op, Args: args, Actor: actor})
}

func ok(t *testing.T, resp api.Response) map[string]any {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	m, isMap := resp.Data.(map[string]any)
	require.True(t, isMap, "data is %T", resp.Data)
	return m
}

func failed(t *testing.T, resp api.Response, kind svcErr.Kind) {
	t.Helper()
	require.NotNil(t, resp.Error)
	assert.Equal(t, kind, resp.Error.Kind, resp.Error.Message)
}

func register(t *testing.T, d *api.Dispatcher, email, gender, interest string) *db.User {
	t.Helper()
	ctx := context.Background()
	data := ok(t, exec(t, d, nil, "registerUser", api.Args{
		"firstName":         "Test",
		"lastName":          gender,
		"email":             email,
		"mobileNumber":      "09170000000",
		"password":          "password1",
		"birthdate":         "1995-06-15",
		"gender":            gender,
		"sexualOrientation": "straight",
		"genderInterest":    interest,
		"bio":               "hi there",
	}))
	view := data["user"].(*api.UserView)
	assert.Equal(t, email, view.Email)

	login := ok(t, exec(t, d, nil, "loginUser", api.Args{"email": email, "password": "password1"}))
	token := login["token"].(string)
	require.NotEmpty(t, token)

	actor, err := d.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, view.ID, actor.ID)
	return actor
}

func TestExecute_Boundary(t *testing.T) {
	d, _ := setup(t)

	failed(t, exec(t, d, nil, "nope", nil), svcErr.KindInvalidOperation)
	failed(t, exec(t, d, nil, "matches", nil), svcErr.KindUnauthorized)
	failed(t, exec(t, d, nil, "loginUser", api.Args{"email": "x@y.z", "password": "bad"}), svcErr.KindUnauthorized)

	resp := exec(t, d, nil, "currentUser", nil)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Data)

	assert.Len(t, d.Operations(), 24)
}

func TestSwipeMatchMessageFlow(t *testing.T) {
	d, _ := setup(t)
	ana := register(t, d, "ana@example.com", "female", "male")
	ben := register(t, d, "ben@example.com", "male", "female")

	// candidate filter follows gender interest
	resp := exec(t, d, ana, "potentialUsers", nil)
	require.Nil(t, resp.Error)
	cands := resp.Data.([]*api.UserView)
	require.Len(t, cands, 1)
	assert.Equal(t, ben.ID, cands[0].ID)
	assert.Empty(t, cands[0].Email, "other users' emails are hidden")
	require.NotNil(t, cands[0].Age)

	failed(t, exec(t, d, ana, "likeUser", api.Args{"targetUserId": float64(ana.ID)}), svcErr.KindInvalidOperation)
	failed(t, exec(t, d, ana, "likeUser", api.Args{"targetUserId": "999"}), svcErr.KindNotFound)
	failed(t, exec(t, d, ana, "likeUser", nil), svcErr.KindInvalidOperation)

	first := ok(t, exec(t, d, ana, "likeUser", api.Args{"targetUserId": float64(ben.ID)}))
	assert.Equal(t, false, first["matchCreated"])
	assert.Nil(t, first["match"])

	second := ok(t, exec(t, d, ben, "likeUser", api.Args{"targetUserId": ana.ID}))
	assert.Equal(t, true, second["matchCreated"])
	assert.Equal(t, true, second["matched"])
	match := second["match"].(*api.MatchView)
	assert.Equal(t, ana.ID, match.UserOne.ID)
	assert.Equal(t, ben.ID, match.UserTwo.ID)
	require.NotNil(t, match.OtherUser)
	assert.Equal(t, ana.ID, match.OtherUser.ID)

	resp = exec(t, d, ana, "matches", nil)
	require.Nil(t, resp.Error)
	require.Len(t, resp.Data.([]*api.MatchView), 1)

	// oversized limits are accepted and capped
	resp = exec(t, d, ana, "matches", api.Args{"limit": float64(1 << 40)})
	require.Nil(t, resp.Error)
	require.Len(t, resp.Data.([]*api.MatchView), 1)

	sent := ok(t, exec(t, d, ana, "sendMessage", api.Args{"matchId": match.ID, "content": "hello ben"}))
	msg := sent["message"].(*api.MessageView)
	assert.Equal(t, ana.ID, msg.SenderID)
	failed(t, exec(t, d, ana, "sendMessage", api.Args{"matchId": match.ID, "content": "  "}), svcErr.KindInvalidOperation)

	resp = exec(t, d, ben, "conversations", nil)
	require.Nil(t, resp.Error)
	convs := resp.Data.([]*api.ConversationView)
	require.Len(t, convs, 1)
	assert.Equal(t, "hello ben", convs[0].LastMessage.Content)
	require.NotNil(t, convs[0].OtherUser)
	assert.Equal(t, ana.ID, convs[0].OtherUser.ID)

	ok(t, exec(t, d, ben, "unmatchUser", api.Args{"matchId": match.ID}))
	resp = exec(t, d, ana, "matches", nil)
	require.Nil(t, resp.Error)
	assert.Empty(t, resp.Data.([]*api.MatchView))

	resp = exec(t, d, ana, "messages", api.Args{"conversationId": msg.ConversationID})
	require.Nil(t, resp.Error)
	assert.Len(t, resp.Data.([]*api.MessageView), 1)
}

func TestLikedYouOperations(t *testing.T) {
	d, appCtx := setup(t)
	me := testutil.CreateUser(t, appCtx.DB, db.User{})
	fan := testutil.CreateUser(t, appCtx.DB, db.User{})

	ok(t, exec(t, d, fan, "likeUser", api.Args{"targetUserId": me.ID}))

	count := ok(t, exec(t, d, me, "countLikedYou", nil))
	assert.Equal(t, int64(1), count["count"])

	liked := ok(t, exec(t, d, me, "likedYou", nil))
	likers := liked["likers"].([]api.LikerView)
	require.Len(t, likers, 1)
	assert.Equal(t, fan.ID, likers[0].UserID)

	ok(t, exec(t, d, me, "dislikeUser", api.Args{"targetUserId": fan.ID}))
	count = ok(t, exec(t, d, me, "countLikedYou", nil))
	assert.Equal(t, int64(0), count["count"])
}

func TestProfileOperations(t *testing.T) {
	d, appCtx := setup(t)
	me := testutil.CreateUser(t, appCtx.DB, db.User{FirstName: "Old"})

	upd := ok(t, exec(t, d, me, "updateProfile", api.Args{"firstName": "New", "city": "Manila"}))
	view := upd["user"].(*api.UserView)
	assert.Equal(t, "New", view.FirstName)
	assert.Equal(t, "Manila", view.City)
	assert.Equal(t, me.Email, view.Email)

	a := ok(t, exec(t, d, me, "uploadPhoto", api.Args{"url": "https://img/a.jpg"}))["photo"].(api.PhotoView)
	b := ok(t, exec(t, d, me, "uploadPhoto", api.Args{"url": "https://img/b.jpg"}))["photo"].(api.PhotoView)
	assert.Equal(t, 1, b.Position)

	primary := ok(t, exec(t, d, me, "setPrimaryPhoto", api.Args{"photoId": b.ID}))["photo"].(api.PhotoView)
	assert.True(t, primary.IsPrimary)

	ok(t, exec(t, d, me, "deletePhoto", api.Args{"photoId": a.ID}))
	failed(t, exec(t, d, me, "deletePhoto", api.Args{"photoId": a.ID}), svcErr.KindNotFound)

	resp := exec(t, d, me, "user", api.Args{"id": me.ID})
	require.Nil(t, resp.Error)
	got := resp.Data.(*api.UserView)
	require.NotNil(t, got.PrimaryPhotoURL)
	assert.Equal(t, "https://img/b.jpg", *got.PrimaryPhotoURL)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, 0, got.Photos[0].Position)

	failed(t, exec(t, d, me, "user", api.Args{"id": "12345"}), svcErr.KindNotFound)
}

func TestAdminOperations(t *testing.T) {
	d, appCtx := setup(t)
	boss := testutil.CreateUser(t, appCtx.DB, db.User{Role: "admin"})
	plain := testutil.CreateUser(t, appCtx.DB, db.User{})

	for _, op := range []string{"adminDashboard", "adminUsers", "adminCreateUser", "adminUpdateUser", "adminDeleteUser", "adminDeleteMatch"} {
		failed(t, exec(t, d, plain, op, api.Args{"id": plain.ID}), svcErr.KindUnauthorized)
	}
	failed(t, exec(t, d, plain, "matches", api.Args{"userId": boss.ID}), svcErr.KindUnauthorized)

	resp := exec(t, d, boss, "adminDashboard", nil)
	require.Nil(t, resp.Error)
	assert.Equal(t, int64(2), resp.Data.(api.DashboardView).TotalUsers)

	created := ok(t, exec(t, d, boss, "adminCreateUser", api.Args{
		"firstName": "Made", "lastName": "ByAdmin", "email": "made@example.com", "mobileNumber": "0917",
		"password": "pw", "birthdate": "2000-02-29", "gender": "male", "sexualOrientation": "gay",
		"genderInterest": "male", "bio": "hello", "role": "admin",
	}))["user"].(*api.UserView)
	assert.Equal(t, "admin", created.Role)

	updated := ok(t, exec(t, d, boss, "adminUpdateUser", api.Args{"id": created.ID, "role": "user", "birthdate": "2000-03-01"}))["user"].(*api.UserView)
	assert.Equal(t, "user", updated.Role)
	assert.Equal(t, "2000-03-01", updated.Birthdate)

	resp = exec(t, d, boss, "adminUsers", api.Args{"limit": float64(10)})
	require.Nil(t, resp.Error)
	assert.Len(t, resp.Data.([]api.UserStatsView), 3)

	ok(t, exec(t, d, boss, "adminDeleteUser", api.Args{"id": created.ID}))
	failed(t, exec(t, d, boss, "adminDeleteUser", api.Args{"id": created.ID}), svcErr.KindNotFound)
	failed(t, exec(t, d, boss, "adminDeleteMatch", api.Args{"id": float64(77)}), svcErr.KindNotFound)
}
