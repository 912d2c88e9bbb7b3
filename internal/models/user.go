package models

import (
	"gorm.io/gorm"
)

// User 表示系統中的玩家
type User struct {
	gorm.Model          // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Name         string `gorm:"size:64;not null" json:"name"`
	LeaderCardID int64  `gorm:"not null;default:0" json:"leader_card_id"`
}
