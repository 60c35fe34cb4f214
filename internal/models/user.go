// internal/models/user.go
package models

import "time"

// UserProfile 表示玩家的个人档案
// 独立于任何一局游戏，跨回合持久化
type UserProfile struct {
	Nickname  string `json:"nickname"`
	Birthdate string `json:"birthdate,omitempty"`
	Gender    string `json:"gender"`
	Interests string `json:"interests"`
}

// IsComplete 检查档案必填字段是否齐全
func (p *UserProfile) IsComplete() bool {
	return p != nil && p.Nickname != "" && p.Interests != ""
}

// Account 表示凭证存储中的一个账号
type Account struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	LastLogin    time.Time    `json:"last_login"`
	GameProgress GameProgress `json:"game_progress"`
}

// GameProgress 账号上的长期游戏进度字段
type GameProgress struct {
	AffectionLevel    int       `json:"affection_level"`
	LastChatTimestamp time.Time `json:"last_chat_timestamp,omitempty"`
	UnlockedGifts     []string  `json:"unlocked_gifts,omitempty"`
}
