package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"liveroom/internal/models"
	"liveroom/internal/storage"
)

type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	Find(ctx context.Context, roomID, userID uint) (*models.Membership, error)
	ListPresent(ctx context.Context, roomID uint) ([]models.Membership, error)
	ListScored(ctx context.Context, roomID uint) ([]models.Membership, error)
	MarkLeft(ctx context.Context, id uint) (bool, error)
	MarkFinished(ctx context.Context, id uint, score int, counts models.JudgeCounts) (bool, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(membership).Error
	if err != nil {
		if storage.IsDuplicate(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create membership (room %d, user %d): %w", membership.RoomID, membership.UserID, err)
	}
	return nil
}

func (r *membershipRepository) Find(ctx context.Context, roomID, userID uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gorm: find membership (room %d, user %d): %w", roomID, userID, err)
	}
	return &membership, nil
}

// ListPresent 依加入順序列出尚未離開的成員，並帶出使用者資料
func (r *membershipRepository) ListPresent(ctx context.Context, roomID uint) ([]models.Membership, error) {
	memberships := make([]models.Membership, 0)
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("room_id = ? AND has_left = ?", roomID, false).
		Order("id ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list members of room %d: %w", roomID, err)
	}
	return memberships, nil
}

// ListScored 列出仍在房內或已回報成績的成員；未結束就離開的成員不在其中
func (r *membershipRepository) ListScored(ctx context.Context, roomID uint) ([]models.Membership, error) {
	memberships := make([]models.Membership, 0)
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND (has_left = ? OR finished = ?)", roomID, false, true).
		Order("id ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list scored members of room %d: %w", roomID, err)
	}
	return memberships, nil
}

// MarkLeft 標記離開；已離開的成員回傳 false
func (r *membershipRepository) MarkLeft(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("id = ? AND has_left = ?", id, false).
		Update("has_left", true)
	if res.Error != nil {
		return false, fmt.Errorf("gorm: mark membership %d left: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkFinished 寫入成績；finished 只能由 false 變為 true，重複呼叫回傳 false
func (r *membershipRepository) MarkFinished(ctx context.Context, id uint, score int, counts models.JudgeCounts) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("id = ? AND finished = ? AND has_left = ?", id, false, false).
		Updates(map[string]interface{}{
			"finished": true,
			"score":    score,
			"perfect":  counts[0],
			"great":    counts[1],
			"good":     counts[2],
			"bad":      counts[3],
			"miss":     counts[4],
		})
	if res.Error != nil {
		return false, fmt.Errorf("gorm: mark membership %d finished: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
