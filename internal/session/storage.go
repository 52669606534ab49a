package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/repository"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/redis"
)

// 持久化的会话键
const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
)

// Storage 会话持久化键值存储
// 键不存在时 Get 返回 found=false 且 err=nil
type Storage interface {
	Get(ctx context.Context, sid, key string) (value string, found bool, err error)
	Set(ctx context.Context, sid, key, value string) error
	Delete(ctx context.Context, sid string, keys ...string) error
}

// ── 内存实现 ──

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStorage 进程内存储，重启即丢失（开发、测试使用）
type MemoryStorage struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStorage ttl<=0 表示不过期
func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	return &MemoryStorage{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func memoryKey(sid, key string) string { return sid + "\x00" + key }

func (s *MemoryStorage) Get(_ context.Context, sid, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[memoryKey(sid, key)]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, memoryKey(sid, key))
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStorage) Set(_ context.Context, sid, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{value: value}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[memoryKey(sid, key)] = e
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, sid string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, memoryKey(sid, k))
	}
	return nil
}

// ── Redis 实现 ──

// RedisStorage 键格式 gestion:session:<sid>:<key>
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage 创建 RedisStorage
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (s *RedisStorage) Get(ctx context.Context, sid, key string) (string, bool, error) {
	return s.client.SessionGet(ctx, sid, key)
}

func (s *RedisStorage) Set(ctx context.Context, sid, key, value string) error {
	return s.client.SessionSet(ctx, sid, key, value, s.ttl)
}

func (s *RedisStorage) Delete(ctx context.Context, sid string, keys ...string) error {
	return s.client.SessionDelete(ctx, sid, keys...)
}

// ── PostgreSQL 实现 ──

// GormStorage 基于 session_entries 表，时间统一使用 UTC
type GormStorage struct {
	repo repository.SessionEntryRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewGormStorage ttl<=0 时按 100 年处理
func NewGormStorage(repo repository.SessionEntryRepository, ttl time.Duration) *GormStorage {
	if ttl <= 0 {
		ttl = 100 * 365 * 24 * time.Hour
	}
	return &GormStorage{repo: repo, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func (s *GormStorage) Get(ctx context.Context, sid, key string) (string, bool, error) {
	entry, err := s.repo.Get(ctx, sid, key, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *GormStorage) Set(ctx context.Context, sid, key, value string) error {
	now := s.now()
	return s.repo.Upsert(ctx, &model.SessionEntry{
		SessionID: sid,
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(s.ttl),
		UpdatedAt: now,
	})
}

func (s *GormStorage) Delete(ctx context.Context, sid string, keys ...string) error {
	return s.repo.Delete(ctx, sid, keys...)
}

// Purge 清理已过期的行（由定时任务调用）
func (s *GormStorage) Purge(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}
