package repository

import (
	"context"

	"gorm.io/gorm"

	"liveroom/internal/storage"
)

type Repositories struct {
	User       UserRepository
	Room       RoomRepository
	Membership MembershipRepository
}

func NewRepositories(db *storage.Database) *Repositories {
	return newRepositories(db.DB, db.LockRows())
}

func newRepositories(db *gorm.DB, lockRows bool) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Room:       NewRoomRepository(db, lockRows),
		Membership: NewMembershipRepository(db),
	}
}

// Store 是房間與成員資料的交易邊界。
// 內嵌的 Repositories 在交易外執行，只適合單一查詢的讀取。
type Store struct {
	*Repositories
	db *storage.Database
}

func NewStore(db *storage.Database) *Store {
	return &Store{Repositories: NewRepositories(db), db: db}
}

// WithTransaction 以綁定同一交易的 repositories 執行 fn。
// fn 回傳 nil 時提交，否則回滾；遇到序列化衝突時 fn 可能被重複執行，
// 因此 fn 不可有交易外的副作用。
func (s *Store) WithTransaction(ctx context.Context, fn func(repos *Repositories) error) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(newRepositories(tx, s.db.LockRows()))
	})
}
