// internal/models/gift.go
package models

// GiftOption 表示告白事件中的一个礼物选项
// IsLiked 由内容生成器给出，绝不能下发给玩家
type GiftOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsLiked     bool   `json:"is_liked"`
	ImageURL    string `json:"image_url"`
}

// GiftOptionView 是下发给客户端的礼物选项视图，隐藏正确性标记
type GiftOptionView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// View 返回隐藏 IsLiked 的客户端视图
func (g GiftOption) View() GiftOptionView {
	return GiftOptionView{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		ImageURL:    g.ImageURL,
	}
}

// MaskGiftOptions 批量转换礼物选项为客户端视图
func MaskGiftOptions(options []GiftOption) []GiftOptionView {
	views := make([]GiftOptionView, 0, len(options))
	for _, opt := range options {
		views = append(views, opt.View())
	}
	return views
}
