// internal/services/profile_service_test.go
package services

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/lovesim/lovesim/internal/errors"
	"github.com/lovesim/lovesim/internal/models"
	"github.com/lovesim/lovesim/internal/storage"
)

func newTestStorage(t *testing.T) *storage.FileStorage {
	t.Helper()
	fs, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("创建文件存储失败: %v", err)
	}
	return fs
}

func TestProfileRoundTrip(t *testing.T) {
	svc := NewProfileService(newTestStorage(t))

	profile := models.UserProfile{
		Nickname:  "小華",
		Birthdate: "1998-03-21",
		Gender:    "女性",
		Interests: "爬山、攝影",
	}
	if err := svc.SaveProfile("acc-1", profile); err != nil {
		t.Fatalf("保存档案失败: %v", err)
	}

	got := svc.GetProfile("acc-1")
	if got != profile {
		t.Errorf("读回的档案不一致: got %+v, want %+v", got, profile)
	}
}

func TestProfileMissingIsEmpty(t *testing.T) {
	svc := NewProfileService(newTestStorage(t))

	got := svc.GetProfile("nobody")
	if got.IsComplete() {
		t.Errorf("不存在的账号应返回空档案, got %+v", got)
	}
}

func TestProfileRejectsIncomplete(t *testing.T) {
	svc := NewProfileService(newTestStorage(t))

	err := svc.SaveProfile("acc-1", models.UserProfile{Nickname: "只有暱稱"})
	if !apperrors.IsValidationError(err) {
		t.Errorf("缺少必填字段应返回校验错误, got %v", err)
	}
}

func TestProfileCorruptFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewFileStorage(dir)
	if err != nil {
		t.Fatalf("创建文件存储失败: %v", err)
	}
	svc := NewProfileService(fs)

	userDir := filepath.Join(dir, "users", "acc-1")
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(userDir, profileFilename), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	got := svc.GetProfile("acc-1")
	if got.IsComplete() {
		t.Errorf("损坏的档案文件应视为空档案, got %+v", got)
	}
}
