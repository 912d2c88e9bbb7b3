package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"liveroom/internal/models"
	"liveroom/internal/repository"
)

// MemberView 是等待畫面中的一位成員
type MemberView struct {
	UserID       uint              `json:"user_id"`
	Name         string            `json:"name"`
	LeaderCardID int64             `json:"leader_card_id"`
	Difficulty   models.Difficulty `json:"difficulty"`
	IsMe         bool              `json:"is_me"`
	IsHost       bool              `json:"is_host"`
}

// WaitView 是輪詢房間狀態的回應
type WaitView struct {
	Status  models.RoomStatus `json:"status"`
	Members []MemberView      `json:"members"`
}

// SessionService 負責開始、結束與狀態輪詢
type SessionService struct {
	store *repository.Store
}

func NewSessionService(store *repository.Store) *SessionService {
	return &SessionService{store: store}
}

// ParseJudgeCounts 驗證判定結果必須是 5 個非負整數
func ParseJudgeCounts(counts []int) (models.JudgeCounts, error) {
	var jc models.JudgeCounts
	if len(counts) != models.JudgeCountsLen {
		return jc, validationError("judge counts must have %d entries, got %d", models.JudgeCountsLen, len(counts))
	}
	for i, c := range counts {
		if c < 0 {
			return jc, validationError("judge count %d is negative", i)
		}
		jc[i] = c
	}
	return jc, nil
}

// Start 由房主將等待中的房間轉為進行中。
// 非房主或房間不在等待中時靜默忽略，不回傳錯誤。
func (s *SessionService) Start(ctx context.Context, roomID, userID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	started := false
	err := s.store.WithTransaction(ctx, func(repos *repository.Repositories) error {
		started = false
		if _, err := repos.Room.FindByIDForUpdate(ctx, roomID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		membership, err := repos.Membership.Find(ctx, roomID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !membership.IsHost || membership.HasLeft {
			return nil
		}

		started, err = repos.Room.MarkStarted(ctx, roomID)
		return err
	})
	if errors.Is(err, ErrRoomNotFound) {
		return err
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to start room")
		return storageError(err)
	}

	if started {
		logCtx.Info("Room started")
	} else {
		logCtx.Debug("Start ignored")
	}
	return nil
}

// End 記錄成員的成績並視為名額釋放；釋放後計數 <= 1 時房間解散。
// 已結束的成員再次呼叫不會覆寫成績。
func (s *SessionService) End(ctx context.Context, roomID, userID uint, score int, judgeCounts []int) error {
	counts, err := ParseJudgeCounts(judgeCounts)
	if err != nil {
		return err
	}
	if score < 0 {
		return validationError("score %d is negative", score)
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "score": score})

	dissolved := false
	err = s.store.WithTransaction(ctx, func(repos *repository.Repositories) error {
		dissolved = false
		room, err := repos.Room.FindByIDForUpdate(ctx, roomID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		membership, err := repos.Membership.Find(ctx, roomID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotMember
		}
		if err != nil {
			return err
		}
		if membership.HasLeft {
			return ErrNotMember
		}

		finished, err := repos.Membership.MarkFinished(ctx, membership.ID, score, counts)
		if err != nil || !finished {
			return err
		}

		count, err := repos.Room.ReleaseSlot(ctx, roomID)
		if err != nil {
			return err
		}
		if room.Status != models.RoomStatusDissolved && count <= 1 {
			dissolved = true
			return repos.Room.Dissolve(ctx, roomID)
		}
		return nil
	})
	if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrNotMember) {
		return err
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to record result")
		return storageError(err)
	}

	logCtx.WithField("dissolved", dissolved).Info("Result recorded")
	return nil
}

// Wait 回傳房間狀態與目前在房內的成員；純讀取，可任意頻率輪詢
func (s *SessionService) Wait(ctx context.Context, roomID, userID uint) (*WaitView, error) {
	var view *WaitView
	err := s.store.WithTransaction(ctx, func(repos *repository.Repositories) error {
		room, err := repos.Room.FindByID(ctx, roomID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		memberships, err := repos.Membership.ListPresent(ctx, roomID)
		if err != nil {
			return err
		}

		members := make([]MemberView, 0, len(memberships))
		for _, m := range memberships {
			members = append(members, MemberView{
				UserID:       m.UserID,
				Name:         m.User.Name,
				LeaderCardID: m.User.LeaderCardID,
				Difficulty:   m.Difficulty,
				IsMe:         m.UserID == userID,
				IsHost:       m.IsHost,
			})
		}
		view = &WaitView{Status: room.Status, Members: members}
		return nil
	})
	if errors.Is(err, ErrRoomNotFound) {
		return nil, err
	}
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Error("Failed to read room state")
		return nil, storageError(err)
	}
	return view, nil
}
