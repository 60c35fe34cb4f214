// internal/models/session.go
package models

import "time"

// 对局结果
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// GameSession 表示一局已结束游戏的不可变快照
// 在对局终止时创建一次，之后永不修改
type GameSession struct {
	ID         string      `json:"id"`
	StartTime  time.Time   `json:"start_time"`
	User       UserProfile `json:"user"`
	Character  Character   `json:"character"`
	Messages   []Message   `json:"messages"`
	Affection  int         `json:"affection"`
	IsFinished bool        `json:"is_finished"`
	Result     string      `json:"result,omitempty"`
}

// Clone 返回会话记录的深拷贝
func (s GameSession) Clone() GameSession {
	clone := s
	clone.Messages = CloneMessages(s.Messages)
	return clone
}
