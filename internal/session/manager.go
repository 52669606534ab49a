package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/events"
)

// Manager 进程内会话注册表 sid → *Session
//
// 内存中的会话被清理后，同一 sid 再次访问会从 Storage 重新恢复。
type Manager struct {
	storage Storage
	client  *apiclient.Client
	bus     *events.Bus
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager 创建 Manager
func NewManager(storage Storage, client *apiclient.Client, bus *events.Bus, logger *zap.Logger) *Manager {
	return &Manager{
		storage:  storage,
		client:   client,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// NewID 生成新的会话标识
func (m *Manager) NewID() string {
	return uuid.NewString()
}

// Acquire 获取或创建会话，并刷新最近访问时间
func (m *Manager) Acquire(sid string) *Session {
	now := m.now()
	m.mu.Lock()
	s, ok := m.sessions[sid]
	if !ok {
		s = newSession(sid, m.storage, m.client, m.bus, m.logger)
		m.sessions[sid] = s
	}
	m.mu.Unlock()
	s.touch(now)
	return s
}

// Forget 从内存移除会话（持久化数据保留）
func (m *Manager) Forget(sid string) {
	m.mu.Lock()
	_, ok := m.sessions[sid]
	delete(m.sessions, sid)
	m.mu.Unlock()

	if ok && m.bus != nil {
		events.Publish(m.bus, events.SessionEnded{SessionID: sid})
	}
}

// Prune 移除空闲超过 maxIdle 的会话，恢复中的会话跳过；返回移除数量
func (m *Manager) Prune(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	now := m.now()

	m.mu.Lock()
	var idle []string
	for sid, s := range m.sessions {
		d, restoring := s.idleSince(now)
		if !restoring && d > maxIdle {
			idle = append(idle, sid)
		}
	}
	m.mu.Unlock()

	for _, sid := range idle {
		m.Forget(sid)
	}
	if len(idle) > 0 {
		m.logger.Debug("清理空闲会话", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Len 内存中的会话数量
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
