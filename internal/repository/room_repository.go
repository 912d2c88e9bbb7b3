package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"liveroom/internal/models"
)

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Room, error)
	ListOpen(ctx context.Context, activityID int64) ([]models.Room, error)
	ReserveSlot(ctx context.Context, id uint) (bool, error)
	ReleaseSlot(ctx context.Context, id uint) (int, error)
	MarkStarted(ctx context.Context, id uint) (bool, error)
	Dissolve(ctx context.Context, id uint) error
}

type roomRepository struct {
	db       *gorm.DB
	lockRows bool
}

func NewRoomRepository(db *gorm.DB, lockRows bool) RoomRepository {
	return &roomRepository{db: db, lockRows: lockRows}
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		return fmt.Errorf("gorm: create room: %w", err)
	}
	return nil
}

func (r *roomRepository) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate 讀取房間並在支援的方言上鎖定該列直到交易結束
func (r *roomRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Room, error) {
	q := r.db.WithContext(ctx)
	if r.lockRows {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.find(q, id)
}

func (r *roomRepository) find(q *gorm.DB, id uint) (*models.Room, error) {
	var room models.Room
	err := q.First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gorm: find room by id %d: %w", id, err)
	}
	return &room, nil
}

// ListOpen 查詢指定曲目中尚未解散且仍有空位的房間
func (r *roomRepository) ListOpen(ctx context.Context, activityID int64) ([]models.Room, error) {
	rooms := make([]models.Room, 0)
	err := r.db.WithContext(ctx).
		Where("activity_id = ? AND status <> ? AND member_count < capacity", activityID, models.RoomStatusDissolved).
		Order("id ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list open rooms for activity %d: %w", activityID, err)
	}
	return rooms, nil
}

// ReserveSlot 是加入房間的容量檢查與遞增：一條條件式 UPDATE（compare-and-swap），
// 只有在房間未解散且 member_count < capacity 時才會成功。
// 檢查與寫入在同一語句內完成，兩個併發的加入不可能同時拿到最後一個名額；
// 搭配呼叫端的 SERIALIZABLE 交易與行鎖，也不會與離開或結束交錯。
func (r *roomRepository) ReserveSlot(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND status <> ? AND member_count < capacity", id, models.RoomStatusDissolved).
		Update("member_count", gorm.Expr("member_count + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("gorm: reserve slot in room %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSlot 釋放一個名額並回傳釋放後的 member_count，不會低於 0
func (r *roomRepository) ReleaseSlot(ctx context.Context, id uint) (int, error) {
	q := r.db.WithContext(ctx)
	err := q.Model(&models.Room{}).
		Where("id = ? AND member_count > 0", id).
		Update("member_count", gorm.Expr("member_count - 1")).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: release slot in room %d: %w", id, err)
	}

	var count int
	err = q.Model(&models.Room{}).Where("id = ?", id).Select("member_count").Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: read member count of room %d: %w", id, err)
	}
	return count, nil
}

// MarkStarted 僅在房間仍為等待中時將其轉為進行中
func (r *roomRepository) MarkStarted(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND status = ?", id, models.RoomStatusWaiting).
		Update("status", models.RoomStatusInProgress)
	if res.Error != nil {
		return false, fmt.Errorf("gorm: start room %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Dissolve 將房間設為解散；已解散的房間不受影響
func (r *roomRepository) Dissolve(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND status <> ?", id, models.RoomStatusDissolved).
		Update("status", models.RoomStatusDissolved).Error
	if err != nil {
		return fmt.Errorf("gorm: dissolve room %d: %w", id, err)
	}
	return nil
}
