package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveroom/internal/models"
)

func TestResultService_WaitsForEveryone(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	a := f.user(t, "A")
	roomID := f.room(t, a)
	b := f.user(t, "B")
	_, err := f.svc.Membership.Join(ctx, roomID, models.DifficultyEasy, b)
	require.NoError(t, err)
	require.NoError(t, f.svc.Session.Start(ctx, roomID, a))

	require.NoError(t, f.svc.Session.End(ctx, roomID, b, 800, []int{10, 5, 2, 1, 0}))
	results, err := f.svc.Result.Result(ctx, roomID)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	require.NoError(t, f.svc.Session.End(ctx, roomID, a, 1000, []int{18, 0, 0, 0, 0}))
	results, err = f.svc.Result.Result(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, []ResultEntry{
		{UserID: a, JudgeCounts: models.JudgeCounts{18, 0, 0, 0, 0}, Score: 1000},
		{UserID: b, JudgeCounts: models.JudgeCounts{10, 5, 2, 1, 0}, Score: 800},
	}, results)

	again, err := f.svc.Result.Result(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

func TestResultService_EndDoesNotOverwrite(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	a := f.user(t, "A")
	roomID := f.room(t, a)

	require.NoError(t, f.svc.Session.End(ctx, roomID, a, 500, []int{1, 1, 1, 1, 1}))
	require.NoError(t, f.svc.Session.End(ctx, roomID, a, 9999, []int{9, 9, 9, 9, 9}))

	results, err := f.svc.Result.Result(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 500, results[0].Score)
	assert.Equal(t, models.JudgeCounts{1, 1, 1, 1, 1}, results[0].JudgeCounts)
}

func TestResultService_IgnoresMembersWhoLeft(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	a := f.user(t, "A")
	roomID := f.room(t, a)
	b, c := f.user(t, "B"), f.user(t, "C")
	for _, u := range []uint{b, c} {
		_, err := f.svc.Membership.Join(ctx, roomID, models.DifficultyEasy, u)
		require.NoError(t, err)
	}
	require.NoError(t, f.svc.Session.Start(ctx, roomID, a))
	require.NoError(t, f.svc.Membership.Leave(ctx, roomID, c))

	require.NoError(t, f.svc.Session.End(ctx, roomID, a, 1, []int{0, 0, 0, 0, 0}))
	require.NoError(t, f.svc.Session.End(ctx, roomID, b, 2, []int{0, 0, 0, 0, 0}))

	results, err := f.svc.Result.Result(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, a, results[0].UserID)
	assert.Equal(t, b, results[1].UserID)
}

func TestResultService_MissingRoom(t *testing.T) {
	f := newFixture(t, 2)
	_, err := f.svc.Result.Result(context.Background(), 999)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestResultService_StableAfterFinishedMemberLeaves(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	a := f.user(t, "A")
	roomID := f.room(t, a)
	b := f.user(t, "B")
	_, err := f.svc.Membership.Join(ctx, roomID, models.DifficultyEasy, b)
	require.NoError(t, err)
	require.NoError(t, f.svc.Session.Start(ctx, roomID, a))

	require.NoError(t, f.svc.Session.End(ctx, roomID, a, 900, []int{9, 1, 0, 0, 0}))
	require.NoError(t, f.svc.Session.End(ctx, roomID, b, 600, []int{4, 4, 2, 0, 0}))

	before, err := f.svc.Result.Result(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, before, 2)

	require.NoError(t, f.svc.Membership.Leave(ctx, roomID, b))

	after, err := f.svc.Result.Result(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, b, after[1].UserID)
	assert.Equal(t, 600, after[1].Score)
}
