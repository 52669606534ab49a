// Package session 浏览器会话：Token 与当前用户的唯一来源
//
// 生命周期：new → restoring（加载中）→ ready。恢复只执行一次，
// 之后状态只由 Login、Logout、Refresh 改变。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/events"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/guard"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/jwt"
)

// ErrNotAuthenticated 会话中没有有效 Token
var ErrNotAuthenticated = errors.New("session non authentifiée")

type phase int

const (
	phaseNew phase = iota
	phaseRestoring
	phaseReady
)

// Session 单个浏览器会话
type Session struct {
	id       string
	storage  Storage
	client   *apiclient.Client
	bus      *events.Bus
	logger   *zap.Logger
	demandes *demande.Store

	mu       sync.RWMutex
	phase    phase
	token    string
	user     *model.User
	lastSeen time.Time
}

func newSession(id string, storage Storage, client *apiclient.Client, bus *events.Bus, logger *zap.Logger) *Session {
	return &Session{
		id:       id,
		storage:  storage,
		client:   client,
		bus:      bus,
		logger:   logger.With(zap.String("session_id", id)),
		demandes: demande.NewStore(),
		lastSeen: time.Now(),
	}
}

// ID 会话标识
func (s *Session) ID() string { return s.id }

// Demandes 当前会话可见申请的本地副本
func (s *Session) Demandes() *demande.Store { return s.demandes }

// Snapshot 会话状态快照
type Snapshot struct {
	SessionID     string
	Loading       bool
	Authenticated bool
	Token         string
	User          *model.User
}

// GuardState 转换为守卫输入
func (sn Snapshot) GuardState() guard.State {
	return guard.State{Loading: sn.Loading, Authenticated: sn.Authenticated, User: sn.User}
}

// Actor 转换为申请操作的发起者
func (sn Snapshot) Actor() demande.Actor {
	return demande.Actor{SessionID: sn.SessionID, Token: sn.Token, User: sn.User}
}

// Snapshot 返回当前状态；User 为副本
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn := Snapshot{
		SessionID:     s.id,
		Loading:       s.phase == phaseRestoring,
		Authenticated: s.token != "" && s.user != nil,
		Token:         s.token,
	}
	if s.user != nil {
		u := *s.user
		sn.User = &u
	}
	return sn
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen), s.phase == phaseRestoring
}

// ────────────────────── Restore ──────────────────────

// Restore 用持久化的 Token 恢复身份，整个生命周期只执行一次
//
// 恢复进行中时其他调用立即返回，调用方通过 Snapshot().Loading 观察状态。
// 身份获取失败（Token 过期、无效或后端不可达）时清除持久化数据，会话保持为空。
func (s *Session) Restore(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != phaseNew {
		s.mu.Unlock()
		return nil
	}
	s.phase = phaseRestoring
	s.mu.Unlock()

	// 请求被取消不应导致 Token 被误删
	bg := context.WithoutCancel(ctx)
	res, err := s.restore(bg)

	// 存储的写入与清除都在锁内完成：恢复期间已登录或登出时以其结果为准，
	// 不能再回写用户副本或删掉新登录的 Token
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != phaseRestoring {
		return err
	}
	s.token, s.user = res.token, res.user
	s.phase = phaseReady
	switch {
	case res.discard:
		s.clearStorage(bg)
	case res.user != nil:
		s.cacheUser(bg, res.user)
	}
	return err
}

// restoreResult 恢复结果；discard 表示持久化数据应被清除
type restoreResult struct {
	token   string
	user    *model.User
	discard bool
}

// restore 只读取存储与后端，不修改存储
func (s *Session) restore(ctx context.Context) (restoreResult, error) {
	token, found, err := s.storage.Get(ctx, s.id, KeyAccessToken)
	if err != nil {
		return restoreResult{}, fmt.Errorf("读取会话 Token 失败: %w", err)
	}
	if !found || token == "" {
		return restoreResult{}, nil
	}

	if exp, ok := jwt.PeekExpiry(token); ok && !exp.After(time.Now()) {
		s.logger.Info("持久化 Token 已过期，直接丢弃", zap.Time("exp", exp))
		return restoreResult{discard: true}, nil
	}

	user, err := s.client.WithToken(token).Me(ctx)
	if err != nil {
		if apiclient.IsNetwork(err) {
			s.logger.Warn("会话恢复失败，后端不可达", zap.Error(err))
		} else {
			s.logger.Info("持久化 Token 无效，已清除", zap.Error(err))
		}
		return restoreResult{discard: true}, nil
	}

	s.logger.Info("会话已恢复",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role.String()),
	)
	return restoreResult{token: token, user: user}, nil
}

// ────────────────────── Login ──────────────────────

// Login 认证后立即拉取最新身份
//
// 认证失败时会话与存储保持不变；身份拉取失败时恢复之前持久化的 Token。
func (s *Session) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	pair, err := s.client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	prev, hadPrev, err := s.storage.Get(ctx, s.id, KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("读取会话 Token 失败: %w", err)
	}
	if err := s.storage.Set(ctx, s.id, KeyAccessToken, pair.AccessToken); err != nil {
		return nil, fmt.Errorf("保存会话 Token 失败: %w", err)
	}

	user, err := s.client.WithToken(pair.AccessToken).Me(ctx)
	if err != nil {
		s.rollbackToken(ctx, prev, hadPrev)
		return nil, err
	}
	s.cacheUser(ctx, user)

	s.mu.Lock()
	prevUser := s.user
	s.token, s.user = pair.AccessToken, user
	s.phase = phaseReady
	s.mu.Unlock()

	if prevUser == nil || prevUser.ID != user.ID {
		s.demandes.Clear()
	}
	if s.bus != nil {
		events.Publish(s.bus, events.StatsChanged{SessionID: s.id, Reason: "login"})
	}

	s.logger.Info("登录成功",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role.String()),
	)
	return user, nil
}

func (s *Session) rollbackToken(ctx context.Context, prev string, hadPrev bool) {
	var err error
	if hadPrev {
		err = s.storage.Set(ctx, s.id, KeyAccessToken, prev)
	} else {
		err = s.storage.Delete(ctx, s.id, KeyAccessToken)
	}
	if err != nil {
		s.logger.Error("回滚会话 Token 失败", zap.Error(err))
	}
}

// ────────────────────── Logout / Refresh ──────────────────────

// Logout 清除存储与内存状态，可重复调用，不请求后端
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	wasAuthenticated := s.token != ""
	s.token, s.user = "", nil
	s.phase = phaseReady
	s.mu.Unlock()

	s.demandes.Clear()
	err := s.storage.Delete(ctx, s.id, KeyAccessToken, KeyUser)

	if wasAuthenticated {
		s.logger.Info("已登出")
		if s.bus != nil {
			events.Publish(s.bus, events.SessionEnded{SessionID: s.id})
		}
	}
	if err != nil {
		return fmt.Errorf("清除会话存储失败: %w", err)
	}
	return nil
}

// Refresh 显式拉取当前身份并更新缓存；Token 已失效时清空会话
func (s *Session) Refresh(ctx context.Context) (*model.User, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	user, err := s.client.WithToken(token).Me(ctx)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			_ = s.Logout(ctx)
		}
		return nil, err
	}

	s.mu.Lock()
	// 期间切换了账号则丢弃本次结果
	stale := s.token != token
	if !stale {
		s.user = user
	}
	s.mu.Unlock()
	if stale {
		return nil, ErrNotAuthenticated
	}

	s.cacheUser(ctx, user)
	return user, nil
}

func (s *Session) cacheUser(ctx context.Context, u *model.User) {
	raw, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := s.storage.Set(ctx, s.id, KeyUser, string(raw)); err != nil {
		s.logger.Warn("缓存用户失败", zap.Error(err))
	}
}

func (s *Session) clearStorage(ctx context.Context) {
	if err := s.storage.Delete(ctx, s.id, KeyAccessToken, KeyUser); err != nil {
		s.logger.Error("清除会话存储失败", zap.Error(err))
	}
}
