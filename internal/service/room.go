package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"liveroom/internal/models"
	"liveroom/internal/repository"
)

const defaultCapacity = 4

// RoomSummary 是房間列表中的一筆資料
type RoomSummary struct {
	RoomID      uint  `json:"room_id"`
	ActivityID  int64 `json:"activity_id"`
	MemberCount int   `json:"member_count"`
	Capacity    int   `json:"capacity"`
}

// RoomService 負責建立與查詢房間
type RoomService struct {
	store    *repository.Store
	capacity int
}

func NewRoomService(store *repository.Store, capacity int) *RoomService {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &RoomService{store: store, capacity: capacity}
}

// CreateRoom 在同一交易中建立房間與房主的成員資料，回傳房間 ID
func (s *RoomService) CreateRoom(ctx context.Context, activityID int64, difficulty models.Difficulty, ownerToken string, ownerID uint) (uint, error) {
	if !difficulty.Valid() {
		return 0, validationError("difficulty %d out of range", difficulty)
	}
	if ownerID == 0 {
		return 0, validationError("owner is required")
	}
	logCtx := logrus.WithFields(logrus.Fields{"activity_id": activityID, "owner_id": ownerID})

	room := &models.Room{
		ActivityID:  activityID,
		Difficulty:  difficulty,
		OwnerToken:  ownerToken,
		Capacity:    s.capacity,
		MemberCount: 1,
		Status:      models.RoomStatusWaiting,
	}
	err := s.store.WithTransaction(ctx, func(repos *repository.Repositories) error {
		// 重試時須重新產生 ID
		room.ID = 0
		if err := repos.Room.Create(ctx, room); err != nil {
			return err
		}
		return repos.Membership.Create(ctx, &models.Membership{
			RoomID:     room.ID,
			UserID:     ownerID,
			Difficulty: difficulty,
			IsHost:     true,
		})
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to create room")
		return 0, storageError(err)
	}

	logCtx.WithField("room_id", room.ID).Info("Room created")
	return room.ID, nil
}

// ListRooms 列出指定曲目中可加入的房間；沒有符合時回傳空切片
func (s *RoomService) ListRooms(ctx context.Context, activityID int64) ([]RoomSummary, error) {
	rooms, err := s.store.Room.ListOpen(ctx, activityID)
	if err != nil {
		logrus.WithField("activity_id", activityID).WithError(err).Error("Failed to list rooms")
		return nil, storageError(err)
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, RoomSummary{
			RoomID:      r.ID,
			ActivityID:  r.ActivityID,
			MemberCount: r.MemberCount,
			Capacity:    r.Capacity,
		})
	}
	return summaries, nil
}
