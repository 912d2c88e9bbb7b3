package models

import (
	"gorm.io/gorm"
)

// Room 表示一個多人遊玩房間
type Room struct {
	gorm.Model
	ActivityID  int64      `gorm:"not null;index" json:"activity_id"`
	Difficulty  Difficulty `gorm:"not null" json:"difficulty"`
	OwnerToken  string     `gorm:"type:text;not null" json:"-"`
	Capacity    int        `gorm:"not null" json:"capacity"`
	MemberCount int        `gorm:"not null;default:0" json:"member_count"`
	Status      RoomStatus `gorm:"not null;default:1;index" json:"status"`
}

// RoomStatus 定義房間狀態；數值即為對外的狀態碼
type RoomStatus int

const (
	RoomStatusWaiting    RoomStatus = 1
	RoomStatusInProgress RoomStatus = 2
	RoomStatusDissolved  RoomStatus = 3
)

func (s RoomStatus) String() string {
	switch s {
	case RoomStatusWaiting:
		return "waiting"
	case RoomStatusInProgress:
		return "in_progress"
	case RoomStatusDissolved:
		return "dissolved"
	default:
		return "unknown"
	}
}

// IsOpen 回報房間是否仍可接受加入
func (r *Room) IsOpen() bool {
	return r.Status != RoomStatusDissolved && r.MemberCount < r.Capacity
}

// Difficulty 是曲目難度的序數
type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyNormal Difficulty = 2
	DifficultyHard   Difficulty = 3
	DifficultyExpert Difficulty = 4
	DifficultyMaster Difficulty = 5
)

func (d Difficulty) Valid() bool {
	return d >= DifficultyEasy && d <= DifficultyMaster
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyNormal:
		return "normal"
	case DifficultyHard:
		return "hard"
	case DifficultyExpert:
		return "expert"
	case DifficultyMaster:
		return "master"
	default:
		return "unknown"
	}
}
