// internal/game/options.go
package game

import (
	"math/rand"

	"github.com/lovesim/lovesim/internal/models"
)

// 图像生成失败时的占位图
const (
	PlaceholderAvatarURL = "https://picsum.photos/id/64/400/400"
	PlaceholderOutfitURL = "https://picsum.photos/400/600"
	PlaceholderGiftURL   = "https://picsum.photos/200"
)

// TagOption 角色设定页的一个选项分组
type TagOption struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// DateOption 约会行程的一个候选项
type DateOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// OutfitItem 穿搭槽位的一个候选项
type OutfitItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TagOptions 角色属性选项目录
var TagOptions = []TagOption{
	{Key: "gender", Values: []string{"女性", "男性", "其他"}},
	{Key: "age", Values: []string{"18-24 歲", "25-30 歲", "31-35 歲", "36 歲以上"}},
	{Key: "personality", Values: []string{"開朗", "文靜", "傲嬌", "成熟", "充滿活力", "神秘", "高冷"}},
	{Key: "interests", Values: []string{"看電影", "閱讀", "旅遊", "打遊戲", "烹飪", "運動", "時尚", "音樂"}},
	{Key: "occupation", Values: []string{"上班族", "學生", "藝術家", "醫生", "工程師", "自由接案者", "模特兒"}},
}

// DateOptions 约会三个时段的候选项
var DateOptions = map[string][]DateOption{
	"morning": {
		{ID: "brunch", Label: "網美早午餐", Type: "美食/拍照"},
		{ID: "park", Label: "遊樂園排隊", Type: "戶外/熱鬧"},
		{ID: "library", Label: "市立圖書館展覽", Type: "室內/知性"},
		{ID: "gym", Label: "高強度健身房", Type: "運動/流汗"},
		{ID: "sleep", Label: "放鳥讓他在家等", Type: "作死/惡搞"},
	},
	"afternoon": {
		{ID: "bike", Label: "河濱公園騎腳踏車", Type: "運動/自然"},
		{ID: "mall", Label: "百貨公司逛街看電影", Type: "室內/娛樂"},
		{ID: "museum", Label: "歷史博物館", Type: "文化/嚴肅"},
		{ID: "netcafe", Label: "充滿煙味的網咖", Type: "室內/吵雜"},
		{ID: "cemetery", Label: "公墓試膽大會", Type: "恐怖/特殊"},
	},
	"evening": {
		{ID: "dinner", Label: "浪漫景觀餐廳晚餐", Type: "浪漫/昂貴"},
		{ID: "nightmarket", Label: "熱鬧的夜市掃街", Type: "親民/美食"},
		{ID: "home", Label: "回家打電動 / Netflix", Type: "宅家/放鬆"},
		{ID: "street", Label: "路邊蹲著吃便利商店", Type: "隨便/窮酸"},
		{ID: "club", Label: "夜店狂歡", Type: "吵雜/酒精"},
	},
}

// OutfitOptions 五个穿搭槽位的候选项
var OutfitOptions = map[string][]OutfitItem{
	"tops": {
		{ID: "01", Name: "休閒 T-Shirt"},
		{ID: "02", Name: "正式襯衫"},
		{ID: "03", Name: "連帽衫"},
		{ID: "04", Name: "背心"},
		{ID: "05", Name: "吊嘎"},
		{ID: "06", Name: "充滿亮片的舞衣"},
	},
	"bottoms": {
		{ID: "01", Name: "牛仔褲"},
		{ID: "02", Name: "西裝褲"},
		{ID: "03", Name: "短褲"},
		{ID: "04", Name: "優雅長裙"},
		{ID: "05", Name: "海灘泳褲/比基尼"},
		{ID: "06", Name: "睡褲"},
		{ID: "07", Name: "彎刀褲"},
	},
	"head": {
		{ID: "00", Name: "無"},
		{ID: "01", Name: "棒球帽"},
		{ID: "02", Name: "髮夾"},
		{ID: "03", Name: "貝雷帽"},
		{ID: "04", Name: "漁夫帽"},
	},
	"body": {
		{ID: "00", Name: "無"},
		{ID: "01", Name: "圍巾"},
		{ID: "02", Name: "側背包"},
		{ID: "03", Name: "金條項鍊"},
		{ID: "04", Name: "骷髏項鍊"},
	},
	"hand": {
		{ID: "00", Name: "無"},
		{ID: "01", Name: "名牌手錶"},
		{ID: "02", Name: "編織手環"},
		{ID: "03", Name: "戒指"},
	},
}

// 角色随机名字池
var (
	maleNames   = []string{"冠宇", "承恩", "柏翰", "子軒", "宇翔"}
	femaleNames = []string{"雅婷", "怡君", "雅雯", "心怡", "詩涵", "佳穎", "芷萱", "品妤", "思妤"}
	otherNames  = []string{"小安", "小樂", "天天", "阿凱", "小魚"}
)

// RandomName 按性别从名字池中随机取名
func RandomName(gender string) string {
	names := otherNames
	switch gender {
	case "男性":
		names = maleNames
	case "女性":
		names = femaleNames
	}
	return names[rand.Intn(len(names))]
}

// FallbackGiftOptions 礼物生成失败时的备用清单
func FallbackGiftOptions() []models.GiftOption {
	return []models.GiftOption{
		{
			ID:          "g1",
			Name:        "神秘禮物",
			Description: "AI 似乎累了，這是一個神秘禮物。",
			IsLiked:     true,
			ImageURL:    "https://picsum.photos/200",
		},
		{
			ID:          "g2",
			Name:        "鮮花",
			Description: "經典的選擇。",
			IsLiked:     true,
			ImageURL:    "https://picsum.photos/201",
		},
		{
			ID:          "g3",
			Name:        "石頭",
			Description: "就是一顆石頭。",
			IsLiked:     false,
			ImageURL:    "https://picsum.photos/202",
		},
	}
}
