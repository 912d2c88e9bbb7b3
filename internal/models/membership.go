package models

import "time"

// JudgeCountsLen 是判定種類的數量：perfect、great、good、bad、miss
const JudgeCountsLen = 5

// JudgeCounts 依 perfect、great、good、bad、miss 的順序排列
type JudgeCounts [JudgeCountsLen]int

// Membership 表示使用者在某房間中的參與狀態
type Membership struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	RoomID     uint       `gorm:"not null;uniqueIndex:idx_membership_room_user" json:"room_id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_membership_room_user" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"-"`
	Difficulty Difficulty `gorm:"not null" json:"difficulty"`
	IsHost     bool       `gorm:"not null;default:false" json:"is_host"`
	Finished   bool       `gorm:"not null;default:false" json:"finished"`
	HasLeft    bool       `gorm:"not null;default:false" json:"has_left"`
	Score      int        `gorm:"not null;default:0" json:"score"`
	Perfect    int        `gorm:"not null;default:0" json:"perfect"`
	Great      int        `gorm:"not null;default:0" json:"great"`
	Good       int        `gorm:"not null;default:0" json:"good"`
	Bad        int        `gorm:"not null;default:0" json:"bad"`
	Miss       int        `gorm:"not null;default:0" json:"miss"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Active 表示仍佔用房間名額：尚未離開也尚未結束
func (m *Membership) Active() bool {
	return !m.HasLeft && !m.Finished
}

// JudgeCounts 回傳固定長度的判定結果
func (m *Membership) JudgeCounts() JudgeCounts {
	return JudgeCounts{m.Perfect, m.Great, m.Good, m.Bad, m.Miss}
}
