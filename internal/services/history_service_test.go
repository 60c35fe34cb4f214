// internal/services/history_service_test.go
package services

import (
	"testing"
	"time"

	apperrors "github.com/lovesim/lovesim/internal/errors"
	"github.com/lovesim/lovesim/internal/models"
)

func finishedRecord(id string, start time.Time) models.GameSession {
	return models.GameSession{
		ID:        id,
		StartTime: start,
		User:      models.UserProfile{Nickname: "小明", Interests: "看電影"},
		Character: models.Character{Name: "雅婷"},
		Messages: []models.Message{
			{ID: "m1", Sender: models.SenderAI, Text: "嗨！", Timestamp: start},
		},
		Affection:  42,
		IsFinished: true,
		Result:     models.ResultLoss,
	}
}

func TestHistoryArchiveNewestFirst(t *testing.T) {
	svc := NewHistoryService(newTestStorage(t))
	base := time.Now()

	if err := svc.Archive("acc-1", finishedRecord("s1", base)); err != nil {
		t.Fatalf("归档失败: %v", err)
	}
	if err := svc.Archive("acc-1", finishedRecord("s2", base.Add(time.Hour))); err != nil {
		t.Fatalf("归档失败: %v", err)
	}

	sessions := svc.List("acc-1")
	if len(sessions) != 2 {
		t.Fatalf("期望2条归档, got %d", len(sessions))
	}
	if sessions[0].ID != "s2" || sessions[1].ID != "s1" {
		t.Errorf("归档应最新在前: got [%s, %s]", sessions[0].ID, sessions[1].ID)
	}
}

func TestHistoryArchiveIsImmutable(t *testing.T) {
	svc := NewHistoryService(newTestStorage(t))
	base := time.Now()

	record := finishedRecord("s1", base)
	if err := svc.Archive("acc-1", record); err != nil {
		t.Fatalf("归档失败: %v", err)
	}

	// 归档后继续改动原纪录，再归档第二局
	record.Messages[0].Text = "被改掉了"
	record.Messages = append(record.Messages, models.Message{
		ID: "m2", Sender: models.SenderUser, Text: "後補的訊息", Timestamp: base,
	})
	record.Affection = 0
	if err := svc.Archive("acc-1", finishedRecord("s2", base.Add(time.Hour))); err != nil {
		t.Fatalf("归档失败: %v", err)
	}

	stored, err := svc.Get("acc-1", "s1")
	if err != nil {
		t.Fatalf("读取归档失败: %v", err)
	}
	if len(stored.Messages) != 1 || stored.Messages[0].Text != "嗨！" {
		t.Errorf("已归档消息不应随原纪录改动: %+v", stored.Messages)
	}
	if stored.Affection != 42 {
		t.Errorf("好感度 = %d, 期望保持 42", stored.Affection)
	}

	sessions := svc.List("acc-1")
	if len(sessions) != 2 || sessions[1].Messages[0].Text != "嗨！" {
		t.Errorf("列表中的早期归档被污染: %+v", sessions)
	}
}

func TestHistoryRejectsUnfinished(t *testing.T) {
	svc := NewHistoryService(newTestStorage(t))

	record := finishedRecord("s1", time.Now())
	record.IsFinished = false

	if err := svc.Archive("acc-1", record); !apperrors.IsValidationError(err) {
		t.Errorf("未结束的对局不应归档, got %v", err)
	}
}

func TestHistoryGet(t *testing.T) {
	svc := NewHistoryService(newTestStorage(t))
	if err := svc.Archive("acc-1", finishedRecord("s1", time.Now())); err != nil {
		t.Fatalf("归档失败: %v", err)
	}

	got, err := svc.Get("acc-1", "s1")
	if err != nil {
		t.Fatalf("查找归档失败: %v", err)
	}
	if got.ID != "s1" || got.Result != models.ResultLoss {
		t.Errorf("归档内容不符: %+v", got)
	}

	if _, err := svc.Get("acc-1", "missing"); !apperrors.IsNotFoundError(err) {
		t.Errorf("不存在的记录应返回未找到, got %v", err)
	}
}

func TestHistoryEmptyForUnknownAccount(t *testing.T) {
	svc := NewHistoryService(newTestStorage(t))

	sessions := svc.List("nobody")
	if sessions == nil || len(sessions) != 0 {
		t.Errorf("未知账号应返回空列表, got %v", sessions)
	}
}
