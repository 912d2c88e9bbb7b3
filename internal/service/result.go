package service

import (
	"context"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"liveroom/internal/models"
	"liveroom/internal/repository"
)

// ResultEntry 是一位成員的最終成績
type ResultEntry struct {
	UserID      uint               `json:"user_id"`
	JudgeCounts models.JudgeCounts `json:"judge_counts"`
	Score       int                `json:"score"`
}

// ResultService 在所有成員都結束後彙整成績
type ResultService struct {
	store *repository.Store
}

func NewResultService(store *repository.Store) *ResultService {
	return &ResultService{store: store}
}

// Result 在房內仍有成員未結束時回傳空切片，呼叫端應稍後再輪詢。
// 全員結束後每位已回報成績的成員各一筆（之後離開也保留），依 user_id 排序。
func (s *ResultService) Result(ctx context.Context, roomID uint) ([]ResultEntry, error) {
	entries := make([]ResultEntry, 0)
	err := s.store.WithTransaction(ctx, func(repos *repository.Repositories) error {
		entries = entries[:0]
		if _, err := repos.Room.FindByID(ctx, roomID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		memberships, err := repos.Membership.ListScored(ctx, roomID)
		if err != nil {
			return err
		}
		for _, m := range memberships {
			if !m.Finished {
				entries = entries[:0]
				return nil
			}
			entries = append(entries, ResultEntry{
				UserID:      m.UserID,
				JudgeCounts: m.JudgeCounts(),
				Score:       m.Score,
			})
		}
		return nil
	})
	if errors.Is(err, ErrRoomNotFound) {
		return nil, err
	}
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Error("Failed to aggregate results")
		return nil, storageError(err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries, nil
}
