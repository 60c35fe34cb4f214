// internal/models/character.go
package models

import "time"

// CharacterAttributes 表示玩家在角色设定页选择的属性
type CharacterAttributes struct {
	Gender       string `json:"gender"`
	AgeRange     string `json:"age_range"`
	Personality  string `json:"personality"`
	Interests    string `json:"interests"`
	Occupation   string `json:"occupation"`
	CustomPrompt string `json:"custom_prompt,omitempty"`
}

// Character 表示一局游戏中生成的AI角色
// 角色在创建后不可变；SystemInstruction 是传给内容生成器的
// 不透明人设指令，每次评判调用都原样携带
type Character struct {
	CharacterAttributes

	Name              string    `json:"name"`
	AvatarURL         string    `json:"avatar_url"`
	SystemInstruction string    `json:"system_instruction"`
	CreatedAt         time.Time `json:"created_at"`
}
