// internal/models/message.go
package models

import "time"

// 消息发送者角色
const (
	SenderUser   = "user"
	SenderAI     = "ai"
	SenderSystem = "system"
)

// Message 表示聊天记录中的一条消息
// 消息序列只追加，插入顺序即时间顺序
// AffectionChange 和 Reason 仅在AI消息改变好感度时出现
type Message struct {
	ID              string    `json:"id"`
	Sender          string    `json:"sender"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	AffectionChange *int      `json:"affection_change,omitempty"`
	Reason          string    `json:"reason,omitempty"`
}

// Clone 返回消息的副本
func (m Message) Clone() Message {
	clone := m
	if m.AffectionChange != nil {
		v := *m.AffectionChange
		clone.AffectionChange = &v
	}
	return clone
}

// CloneMessages 深拷贝一组消息
func CloneMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	for i, m := range messages {
		out[i] = m.Clone()
	}
	return out
}

// IntPtr 返回整数指针，便于构造带好感度变化的消息
func IntPtr(v int) *int {
	return &v
}
