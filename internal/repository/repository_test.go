package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveroom/internal/models"
	"liveroom/internal/storage"
	"liveroom/pkg/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := storage.Open(config.DBConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Room{}, &models.Membership{}))
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func createRoom(t *testing.T, s *Store, capacity, count int) *models.Room {
	t.Helper()
	room := &models.Room{
		ActivityID:  7,
		Difficulty:  models.DifficultyNormal,
		OwnerToken:  "token",
		Capacity:    capacity,
		MemberCount: count,
		Status:      models.RoomStatusWaiting,
	}
	require.NoError(t, s.Room.Create(context.Background(), room))
	return room
}

func TestRoomRepository_CreateAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room := createRoom(t, s, 4, 1)

	got, err := s.Room.FindByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ActivityID)
	assert.Equal(t, models.RoomStatusWaiting, got.Status)

	got, err = s.Room.FindByIDForUpdate(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)

	_, err = s.Room.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoomRepository_ReserveSlot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room := createRoom(t, s, 2, 1)

	ok, err := s.Room.ReserveSlot(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Room.ReserveSlot(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, ok, "room is full")

	got, _ := s.Room.FindByID(ctx, room.ID)
	assert.Equal(t, 2, got.MemberCount)
}

func TestRoomRepository_ReserveSlotDissolved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room := createRoom(t, s, 4, 1)

	require.NoError(t, s.Room.Dissolve(ctx, room.ID))

	ok, err := s.Room.ReserveSlot(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoomRepository_ReleaseSlotFloorsAtZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room := createRoom(t, s, 4, 1)

	count, err := s.Room.ReleaseSlot(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = s.Room.ReleaseSlot(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRoomRepository_MarkStarted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room := createRoom(t, s, 4, 1)

	ok, err := s.Room.MarkStarted(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Room.MarkStarted(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, ok, "only a waiting room can start")

	require.NoError(t, s.Room.Dissolve(ctx, room.ID))
	got, _ := s.Room.FindByID(ctx, room.ID)
	assert.Equal(t, models.RoomStatusDissolved, got.Status)
}

func TestRoomRepository_ListOpen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	open := createRoom(t, s, 4, 1)
	createRoom(t, s, 2, 2)
	dissolved := createRoom(t, s, 4, 0)
	require.NoError(t, s.Room.Dissolve(ctx, dissolved.ID))
	other := &models.Room{ActivityID: 8, Difficulty: models.DifficultyHard, OwnerToken: "t", Capacity: 4, MemberCount: 1, Status: models.RoomStatusWaiting}
	require.NoError(t, s.Room.Create(ctx, other))

	rooms, err := s.Room.ListOpen(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, open.ID, rooms[0].ID)

	rooms, err = s.Room.ListOpen(ctx, 12345)
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
}

func TestMembershipRepository_CreateDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room := createRoom(t, s, 4, 1)

	require.NoError(t, s.Membership.Create(ctx, &models.Membership{RoomID: room.ID, UserID: 1, IsHost: true}))
	err := s.Membership.Create(ctx, &models.Membership{RoomID: room.ID, UserID: 1})
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	_, err = s.Membership.Find(ctx, room.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMembershipRepository_ListPresent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room := createRoom(t, s, 4, 1)

	alice := &models.User{Name: "alice", LeaderCardID: 11}
	bob := &models.User{Name: "bob", LeaderCardID: 22}
	require.NoError(t, s.User.Create(ctx, alice))
	require.NoError(t, s.User.Create(ctx, bob))

	require.NoError(t, s.Membership.Create(ctx, &models.Membership{RoomID: room.ID, UserID: alice.ID, IsHost: true}))
	require.NoError(t, s.Membership.Create(ctx, &models.Membership{RoomID: room.ID, UserID: bob.ID}))

	bobMembership, err := s.Membership.Find(ctx, room.ID, bob.ID)
	require.NoError(t, err)
	left, err := s.Membership.MarkLeft(ctx, bobMembership.ID)
	require.NoError(t, err)
	assert.True(t, left)

	left, err = s.Membership.MarkLeft(ctx, bobMembership.ID)
	require.NoError(t, err)
	assert.False(t, left, "second leave is a no-op")

	members, err := s.Membership.ListPresent(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].User.Name)
	assert.Equal(t, int64(11), members[0].User.LeaderCardID)
}

func TestMembershipRepository_MarkFinishedIsWriteOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room := createRoom(t, s, 4, 1)
	m := &models.Membership{RoomID: room.ID, UserID: 1, IsHost: true}
	require.NoError(t, s.Membership.Create(ctx, m))

	ok, err := s.Membership.MarkFinished(ctx, m.ID, 900, models.JudgeCounts{5, 4, 3, 2, 1})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Membership.MarkFinished(ctx, m.ID, 1, models.JudgeCounts{})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Membership.Find(ctx, room.ID, 1)
	require.NoError(t, err)
	assert.True(t, got.Finished)
	assert.Equal(t, 900, got.Score)
	assert.Equal(t, models.JudgeCounts{5, 4, 3, 2, 1}, got.JudgeCounts())
}

func TestUserRepository_Update(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := &models.User{Name: "carol", LeaderCardID: 1}
	require.NoError(t, s.User.Create(ctx, user))

	user.Name = "carol2"
	user.LeaderCardID = 0
	require.NoError(t, s.User.Update(ctx, user))

	got, err := s.User.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol2", got.Name)
	assert.Equal(t, int64(0), got.LeaderCardID)

	_, err = s.User.FindByID(ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_WithTransactionRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room := createRoom(t, s, 4, 1)

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(repos *Repositories) error {
		if _, err := repos.Room.ReserveSlot(ctx, room.ID); err != nil {
			return err
		}
		if err := repos.Membership.Create(ctx, &models.Membership{RoomID: room.ID, UserID: 2}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.Room.FindByID(ctx, room.ID)
	assert.Equal(t, 1, got.MemberCount)
	_, err = s.Membership.Find(ctx, room.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMembershipRepository_ListScored(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	room := createRoom(t, s, 4, 3)

	host := &models.Membership{RoomID: room.ID, UserID: 1, IsHost: true}
	finishedThenLeft := &models.Membership{RoomID: room.ID, UserID: 2}
	leftEarly := &models.Membership{RoomID: room.ID, UserID: 3}
	for _, m := range []*models.Membership{host, finishedThenLeft, leftEarly} {
		require.NoError(t, s.Membership.Create(ctx, m))
	}

	_, err := s.Membership.MarkFinished(ctx, finishedThenLeft.ID, 700, models.JudgeCounts{1, 2, 3, 4, 5})
	require.NoError(t, err)
	_, err = s.Membership.MarkLeft(ctx, finishedThenLeft.ID)
	require.NoError(t, err)
	_, err = s.Membership.MarkLeft(ctx, leftEarly.ID)
	require.NoError(t, err)

	members, err := s.Membership.ListScored(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, uint(1), members[0].UserID)
	assert.Equal(t, uint(2), members[1].UserID)
	assert.Equal(t, 700, members[1].Score)
}
