package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"liveroom/internal/models"
	"liveroom/internal/repository"
)

// JoinOutcome 是加入房間的結果；數值即為對外的結果碼
type JoinOutcome int

const (
	JoinOK        JoinOutcome = 1
	JoinRoomFull  JoinOutcome = 2
	JoinDisbanded JoinOutcome = 3
	// JoinNotFound 對外以通用錯誤碼 4 回報
	JoinNotFound JoinOutcome = 4
)

func (o JoinOutcome) String() string {
	switch o {
	case JoinOK:
		return "ok"
	case JoinRoomFull:
		return "room_full"
	case JoinDisbanded:
		return "disbanded"
	case JoinNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

var errAlreadyJoined = errors.New("membership already exists")

// MembershipService 負責加入與離開房間的准入控制
type MembershipService struct {
	store *repository.Store
}

func NewMembershipService(store *repository.Store) *MembershipService {
	return &MembershipService{store: store}
}

// Join 嘗試讓 userID 加入房間。房間已滿或已解散是正常結果而非錯誤；
// 只有驗證失敗與儲存層失敗會回傳 error。
func (s *MembershipService) Join(ctx context.Context, roomID uint, difficulty models.Difficulty, userID uint) (JoinOutcome, error) {
	if !difficulty.Valid() {
		return 0, validationError("difficulty %d out of range", difficulty)
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	var outcome JoinOutcome
	err := s.store.WithTransaction(ctx, func(repos *repository.Repositories) error {
		room, err := repos.Room.FindByIDForUpdate(ctx, roomID)
		if errors.Is(err, repository.ErrNotFound) {
			outcome = JoinNotFound
			return nil
		}
		if err != nil {
			return err
		}
		if room.Status == models.RoomStatusDissolved {
			outcome = JoinDisbanded
			return nil
		}

		existing, err := repos.Membership.Find(ctx, roomID, userID)
		switch {
		case err == nil && existing.HasLeft:
			return validationError("user %d already left room %d", userID, roomID)
		case err == nil:
			outcome = JoinOK
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		if !room.IsOpen() {
			outcome = JoinRoomFull
			return nil
		}

		reserved, err := repos.Room.ReserveSlot(ctx, roomID)
		if err != nil {
			return err
		}
		if !reserved {
			current, err := repos.Room.FindByID(ctx, roomID)
			if err != nil {
				return err
			}
			outcome = JoinRoomFull
			if current.Status == models.RoomStatusDissolved {
				outcome = JoinDisbanded
			}
			return nil
		}

		err = repos.Membership.Create(ctx, &models.Membership{
			RoomID:     roomID,
			UserID:     userID,
			Difficulty: difficulty,
		})
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return errAlreadyJoined
		}
		if err != nil {
			return err
		}
		outcome = JoinOK
		return nil
	})
	switch {
	case errors.Is(err, errAlreadyJoined):
		// 同一使用者的併發請求已先完成加入，本次的名額預留已回滾
		outcome = JoinOK
	case errors.Is(err, ErrValidation):
		logCtx.WithError(err).Warn("Join rejected")
		return 0, err
	case err != nil:
		logCtx.WithError(err).Error("Failed to join room")
		return 0, storageError(err)
	}

	logCtx.WithField("outcome", outcome.String()).Info("Join handled")
	return outcome, nil
}

// Leave 讓使用者離開房間；重複離開不會有任何效果。
// 計數歸零，或房主在開始前離開時，房間會解散。
func (s *MembershipService) Leave(ctx context.Context, roomID, userID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	dissolved := false
	err := s.store.WithTransaction(ctx, func(repos *repository.Repositories) error {
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
			return nil
		}
		holdsSlot := membership.Active()

		if _, err := repos.Membership.MarkLeft(ctx, membership.ID); err != nil {
			return err
		}

		count := room.MemberCount
		if holdsSlot {
			if count, err = repos.Room.ReleaseSlot(ctx, roomID); err != nil {
				return err
			}
		}

		hostAbandoned := membership.IsHost && room.Status == models.RoomStatusWaiting
		if room.Status != models.RoomStatusDissolved && (count <= 0 || hostAbandoned) {
			dissolved = true
			return repos.Room.Dissolve(ctx, roomID)
		}
		return nil
	})
	if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrNotMember) {
		return err
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to leave room")
		return storageError(err)
	}

	logCtx.WithField("dissolved", dissolved).Info("User left room")
	return nil
}
