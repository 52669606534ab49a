package session

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/repository"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/redis"
)

// exerciseStorage 各实现共用的行为检查
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()

	if _, found, err := s.Get(ctx, "sid", KeyAccessToken); err != nil || found {
		t.Fatalf("空存储应返回 found=false，实际 found=%v err=%v", found, err)
	}
	if err := s.Set(ctx, "sid", KeyAccessToken, "tok-1"); err != nil {
		t.Fatalf("Set 失败: %v", err)
	}
	if err := s.Set(ctx, "sid", KeyAccessToken, "tok-2"); err != nil {
		t.Fatalf("覆盖 Set 失败: %v", err)
	}
	_ = s.Set(ctx, "sid", KeyUser, `{"id":1}`)
	_ = s.Set(ctx, "other", KeyAccessToken, "tok-other")

	if v, found, err := s.Get(ctx, "sid", KeyAccessToken); err != nil || !found || v != "tok-2" {
		t.Fatalf("期望 tok-2，实际 %q found=%v err=%v", v, found, err)
	}

	if err := s.Delete(ctx, "sid", KeyAccessToken, KeyUser); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if err := s.Delete(ctx, "sid", KeyAccessToken); err != nil {
		t.Fatalf("重复 Delete 不应报错: %v", err)
	}
	if _, found, _ := s.Get(ctx, "sid", KeyUser); found {
		t.Error("删除后不应存在")
	}
	if v, found, _ := s.Get(ctx, "other", KeyAccessToken); !found || v != "tok-other" {
		t.Error("不应影响其他会话")
	}
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage(time.Hour))
}

func TestMemoryStorage_TTL(t *testing.T) {
	s := NewMemoryStorage(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	_ = s.Set(ctx, "sid", KeyAccessToken, "tok")
	now = now.Add(2 * time.Minute)
	if _, found, _ := s.Get(ctx, "sid", KeyAccessToken); found {
		t.Error("过期键不应被读取")
	}
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	s := NewRedisStorage(redis.Wrap(rdb, zap.NewNop()), time.Hour)
	exerciseStorage(t, s)

	_ = s.Set(ctx, "sid", KeyAccessToken, "tok")
	mr.FastForward(2 * time.Hour)
	if _, found, _ := s.Get(ctx, "sid", KeyAccessToken); found {
		t.Error("TTL 到期后键应消失")
	}
}

func TestGormStorage(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&model.SessionEntry{}); err != nil {
		t.Fatal(err)
	}

	s := NewGormStorage(repository.NewRepository(db).SessionEntry, time.Hour)
	exerciseStorage(t, s)

	now := time.Now().UTC()
	_ = s.Set(ctx, "sid", KeyAccessToken, "tok")
	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, found, _ := s.Get(ctx, "sid", KeyAccessToken); found {
		t.Error("过期行不应被读取")
	}
	n, err := s.Purge(ctx)
	// sid 与 other 两行均已过期
	if err != nil || n != 2 {
		t.Errorf("期望清理 2 行，实际 n=%d err=%v", n, err)
	}
}
