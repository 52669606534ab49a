package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/events"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// ErrUnknownRole 当前身份没有对应的仪表盘
var ErrUnknownRole = errors.New("rôle inconnu")

// recentLimit 仪表盘展示的最近申请条数
const recentLimit = 10

// StaffCounts 管理员仪表盘的人员统计
type StaffCounts struct {
	Enseignants    int `json:"enseignants"`
	Fonctionnaires int `json:"fonctionnaires"`
}

// Dashboard 角色仪表盘数据
type Dashboard struct {
	Role     model.Role      `json:"role"`
	User     *model.User     `json:"user"`
	Stats    demande.Stats   `json:"stats"`
	Counts   *StaffCounts    `json:"counts,omitempty"`
	Demandes []model.Demande `json:"demandes"`
	Types    []TypeOption    `json:"types,omitempty"`
}

// TypeOption 申请表单中的类型选项
type TypeOption struct {
	Value model.TypeDemande `json:"value"`
	Label string            `json:"label"`
}

// DashboardService 仪表盘聚合
//
// 结果按会话缓存；任何申请变更（StatsChanged）清空全部缓存，
// 会话结束（SessionEnded）只清除该会话。
type DashboardService interface {
	Get(ctx context.Context, actor demande.Actor, store *demande.Store) (*Dashboard, error)
	Invalidate(sessionID string)
	Close()
}

type cachedDashboard struct {
	data      *Dashboard
	expiresAt time.Time
}

type dashboardService struct {
	client   *apiclient.Client
	demandes *demande.Manager
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	cache  map[string]cachedDashboard
	gen    uint64 // 每次失效加一；构建期间发生失效则结果不入缓存
	unsubs []func()
}

// NewDashboardService 创建 DashboardService 并订阅失效事件
func NewDashboardService(client *apiclient.Client, demandes *demande.Manager, bus *events.Bus, ttl time.Duration, logger *zap.Logger) DashboardService {
	s := &dashboardService{
		client:   client,
		demandes: demandes,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		cache:    make(map[string]cachedDashboard),
	}
	if bus != nil {
		s.unsubs = append(s.unsubs,
			events.Subscribe(bus, func(events.StatsChanged) { s.invalidateAll() }),
			events.Subscribe(bus, func(e events.SessionEnded) { s.Invalidate(e.SessionID) }),
		)
	}
	return s
}

func (s *dashboardService) Get(ctx context.Context, actor demande.Actor, store *demande.Store) (*Dashboard, error) {
	if actor.User == nil || !actor.User.Role.Valid() {
		return nil, ErrUnknownRole
	}
	d, gen, ok := s.cached(actor.SessionID)
	if ok {
		return d, nil
	}

	d, err := s.build(ctx, actor, store)
	if err != nil {
		return nil, err
	}

	if s.ttl > 0 && actor.SessionID != "" {
		s.mu.Lock()
		if s.gen == gen {
			s.cache[actor.SessionID] = cachedDashboard{data: d, expiresAt: s.now().Add(s.ttl)}
		}
		s.mu.Unlock()
	}
	return d, nil
}

func (s *dashboardService) build(ctx context.Context, actor demande.Actor, store *demande.Store) (*Dashboard, error) {
	role := actor.User.Role
	d := &Dashboard{Role: role, User: actor.User}

	list, err := s.demandes.List(ctx, actor, store, demande.DefaultScope(role))
	if err != nil {
		return nil, err
	}
	d.Stats = demande.Count(list)
	d.Demandes = recent(list)

	switch role {
	case model.RoleAdmin:
		c := s.client.WithToken(actor.Token)
		ens, err := c.ListEnseignants(ctx)
		if err != nil {
			return nil, err
		}
		fons, err := c.ListFonctionnaires(ctx)
		if err != nil {
			return nil, err
		}
		d.Counts = &StaffCounts{Enseignants: len(ens), Fonctionnaires: len(fons)}
	case model.RoleEnseignant, model.RoleFonctionnaire:
		d.Types = typeOptions()
	}
	return d, nil
}

// cached 返回缓存结果；未命中时同时返回当前代数，供写回时比对
func (s *dashboardService) cached(sid string) (*Dashboard, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sid == "" {
		return nil, s.gen, false
	}
	c, ok := s.cache[sid]
	if !ok {
		return nil, s.gen, false
	}
	if !s.now().Before(c.expiresAt) {
		delete(s.cache, sid)
		return nil, s.gen, false
	}
	return c.data, s.gen, true
}

func (s *dashboardService) Invalidate(sessionID string) {
	s.mu.Lock()
	delete(s.cache, sessionID)
	s.gen++
	s.mu.Unlock()
}

func (s *dashboardService) invalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]cachedDashboard)
	s.gen++
	s.mu.Unlock()
}

// Close 取消事件订阅
func (s *dashboardService) Close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// ── 辅助函数 ──

func recent(list []model.Demande) []model.Demande {
	if len(list) > recentLimit {
		list = list[:recentLimit]
	}
	out := make([]model.Demande, len(list))
	copy(out, list)
	return out
}

func typeOptions() []TypeOption {
	out := make([]TypeOption, 0, len(model.AllTypesDemande))
	for _, t := range model.AllTypesDemande {
		out = append(out, TypeOption{Value: t, Label: t.Label()})
	}
	return out
}
