package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"liveroom/internal/models"
	"liveroom/internal/repository"
	"liveroom/internal/storage"
	"liveroom/internal/utils"
	"liveroom/pkg/config"
)

type fixture struct {
	db    *storage.Database
	store *repository.Store
	svc   *Services
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	db, err := storage.Open(config.DBConfig{Driver: "sqlite", Path: ":memory:", MaxRetries: 3})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Room{}, &models.Membership{}))
	t.Cleanup(func() { db.Close() })

	store := repository.NewStore(db)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	return &fixture{
		db:    db,
		store: store,
		svc:   NewServices(store, tokens, config.RoomConfig{Capacity: capacity}),
	}
}

func (f *fixture) user(t *testing.T, name string) uint {
	t.Helper()
	u := &models.User{Name: name, LeaderCardID: int64(len(name))}
	require.NoError(t, f.store.User.Create(context.Background(), u))
	return u.ID
}

func (f *fixture) room(t *testing.T, owner uint) uint {
	t.Helper()
	id, err := f.svc.Room.CreateRoom(context.Background(), 100, models.DifficultyHard, fmt.Sprintf("token-%d", owner), owner)
	require.NoError(t, err)
	return id
}

func (f *fixture) load(t *testing.T, roomID uint) *models.Room {
	t.Helper()
	room, err := f.store.Room.FindByID(context.Background(), roomID)
	require.NoError(t, err)
	return room
}

// requireConsistent 檢查 member_count 與實際佔用名額的成員數一致，且恰有一位房主
func (f *fixture) requireConsistent(t *testing.T, roomID uint) {
	t.Helper()
	room := f.load(t, roomID)

	var active, hosts int64
	require.NoError(t, f.db.Model(&models.Membership{}).
		Where("room_id = ? AND has_left = ? AND finished = ?", roomID, false, false).
		Count(&active).Error)
	require.NoError(t, f.db.Model(&models.Membership{}).
		Where("room_id = ? AND is_host = ?", roomID, true).
		Count(&hosts).Error)

	require.Equal(t, int(active), room.MemberCount, "member_count must match active memberships")
	require.GreaterOrEqual(t, room.MemberCount, 0)
	require.LessOrEqual(t, room.MemberCount, room.Capacity)
	require.Equal(t, int64(1), hosts, "exactly one host")
}
