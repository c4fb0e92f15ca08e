package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/swipematch/internal/db"
	"github.com/oggyb/swipematch/internal/repository"
	"github.com/oggyb/swipematch/internal/testutil"
)

func TestConversationCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewConversationRepository(testutil.NewDB(t))

	a, err := repo.CreateIfAbsent(ctx, db.NewPair(9, 3))
	require.NoError(t, err)
	b, err := repo.CreateIfAbsent(ctx, db.NewPair(3, 9))
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, uint64(3), a.UserAID)
	assert.Equal(t, uint64(9), a.UserBID)
}

func TestConversationListForUser_ByActivity(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewConversationRepository(testutil.NewDB(t))

	older, err := repo.CreateIfAbsent(ctx, db.NewPair(1, 2))
	require.NoError(t, err)
	newer, err := repo.CreateIfAbsent(ctx, db.NewPair(1, 3))
	require.NoError(t, err)
	_, err = repo.CreateIfAbsent(ctx, db.NewPair(2, 3))
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Touch(ctx, older.ID, base.Add(2*time.Hour)))
	require.NoError(t, repo.Touch(ctx, newer.ID, base.Add(time.Hour)))

	convs, err := repo.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, older.ID, convs[0].ID)
	assert.Equal(t, newer.ID, convs[1].ID)
}

func TestMessagesOrderAndDeleteInvolving(t *testing.T) {
	ctx := context.Background()
	dbase := testutil.NewDB(t)
	convs := repository.NewConversationRepository(dbase)
	msgs := repository.NewMessageRepository(dbase)

	c, err := convs.CreateIfAbsent(ctx, db.NewPair(1, 2))
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, msgs.Create(ctx, &db.Message{ConversationID: c.ID, SenderID: 2, Content: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, msgs.Create(ctx, &db.Message{ConversationID: c.ID, SenderID: 1, Content: "first", CreatedAt: base}))

	list, err := msgs.ListByConversation(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "second", list[1].Content)

	last, err := msgs.Last(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", last.Content)

	require.NoError(t, convs.DeleteInvolving(ctx, 2))
	left, err := msgs.ListByConversation(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	gone, err := convs.FindByPair(ctx, db.NewPair(1, 2))
	require.NoError(t, err)
	assert.Nil(t, gone)
}
