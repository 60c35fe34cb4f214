// internal/storage/account_store.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lovesim/lovesim/internal/models"
)

// AccountStore 基于SQLite的账号凭证存储
type AccountStore struct {
	db *sql.DB
}

// OpenAccountStore 打开（必要时创建）账号数据库并执行迁移
func OpenAccountStore(path string) (*AccountStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开账号数据库失败: %w", err)
	}

	// 单写者模型，避免SQLITE_BUSY
	db.SetMaxOpenConns(1)

	store := &AccountStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *AccountStore) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	last_login    TIMESTAMP NOT NULL,
	game_progress TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("执行数据库迁移失败: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *AccountStore) Close() error {
	return s.db.Close()
}

// GetByUsername 按用户名查找账号，不存在时返回 (nil, nil)
func (s *AccountStore) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at, last_login, game_progress
		 FROM accounts WHERE username = ?`, username)

	var account models.Account
	var progressJSON string
	err := row.Scan(&account.ID, &account.Username, &account.PasswordHash,
		&account.CreatedAt, &account.LastLogin, &progressJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询账号失败: %w", err)
	}

	if err := json.Unmarshal([]byte(progressJSON), &account.GameProgress); err != nil {
		// 进度字段损坏时重置为零值，不让登录失败
		account.GameProgress = models.GameProgress{}
	}

	return &account, nil
}

// Create 创建新账号
func (s *AccountStore) Create(ctx context.Context, account *models.Account) error {
	progressJSON, err := json.Marshal(account.GameProgress)
	if err != nil {
		return fmt.Errorf("序列化游戏进度失败: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, password_hash, created_at, last_login, game_progress)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID, account.Username, account.PasswordHash,
		account.CreatedAt, account.LastLogin, string(progressJSON))
	if err != nil {
		return fmt.Errorf("创建账号失败: %w", err)
	}

	return nil
}

// UpdateLastLogin 更新最近登录时间
func (s *AccountStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET last_login = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("更新登录时间失败: %w", err)
	}
	return nil
}

// UpdateProgress 更新账号上的长期游戏进度
func (s *AccountStore) UpdateProgress(ctx context.Context, id string, progress models.GameProgress) error {
	progressJSON, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("序列化游戏进度失败: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE accounts SET game_progress = ? WHERE id = ?`, string(progressJSON), id)
	if err != nil {
		return fmt.Errorf("更新游戏进度失败: %w", err)
	}
	return nil
}
