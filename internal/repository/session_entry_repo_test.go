package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("打开 sqlite 失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SessionEntry{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func TestSessionEntryRepo_CRUD(t *testing.T) {
	repo := NewRepository(setupTestDB(t)).SessionEntry
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.Get(ctx, "sid-1", "access_token", now)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("期望 ErrRecordNotFound，实际 %v", err)
	}

	entry := &model.SessionEntry{SessionID: "sid-1", Key: "access_token", Value: "tok-1", ExpiresAt: now.Add(time.Hour), UpdatedAt: now}
	if err := repo.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	entry2 := &model.SessionEntry{SessionID: "sid-1", Key: "access_token", Value: "tok-2", ExpiresAt: now.Add(time.Hour), UpdatedAt: now}
	if err := repo.Upsert(ctx, entry2); err != nil {
		t.Fatalf("重复 Upsert 失败: %v", err)
	}

	got, err := repo.Get(ctx, "sid-1", "access_token", now)
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if got.Value != "tok-2" {
		t.Errorf("期望覆盖为 tok-2，实际 %s", got.Value)
	}

	if err := repo.Delete(ctx, "sid-1", "access_token", "user"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if _, err := repo.Get(ctx, "sid-1", "access_token", now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("删除后应不存在，实际 %v", err)
	}
}

func TestSessionEntryRepo_Expiry(t *testing.T) {
	repo := NewSessionEntryRepo(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	_ = repo.Upsert(ctx, &model.SessionEntry{SessionID: "old", Key: "access_token", Value: "x", ExpiresAt: now.Add(-time.Minute), UpdatedAt: now})
	_ = repo.Upsert(ctx, &model.SessionEntry{SessionID: "new", Key: "access_token", Value: "y", ExpiresAt: now.Add(time.Hour), UpdatedAt: now})

	if _, err := repo.Get(ctx, "old", "access_token", now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("过期键不应被读取，实际 %v", err)
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired 失败: %v", err)
	}
	if n != 1 {
		t.Errorf("期望清理 1 条，实际 %d", n)
	}
}
