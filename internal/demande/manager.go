// Package demande 申请生命周期：创建、附件、审批、删除与列表
//
// 状态只能 EN_ATTENTE → APPROUVEE | REJETEE 单向流转。本地 Store 只在后端确认成功后更新。
package demande

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/events"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/validation"
	apperrors "github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/errors"
)

// DefaultMaxFileSize 单个附件上限 5MB
const DefaultMaxFileSize int64 = 5 << 20

// ── 申请模块业务错误 ──

var (
	ErrForbidden      = errors.New("action non autorisée pour votre rôle")
	ErrAlreadyDecided = errors.New("cette demande a déjà été traitée")
	ErrFileTooLarge   = errors.New("fichier trop volumineux (5 Mo maximum)")
	ErrNoFiles        = errors.New("aucun fichier sélectionné")
	ErrInvalidScope   = errors.New("portée de liste inconnue")
)

// Scope 列表范围
type Scope string

const (
	ScopeMine Scope = "mine"
	ScopeAll  Scope = "all"
)

// Actor 发起操作的会话身份
type Actor struct {
	SessionID string
	Token     string
	User      *model.User
}

func (a Actor) role() model.Role {
	if a.User == nil {
		return model.RoleUnknown
	}
	return a.User.Role
}

// Manager 申请生命周期管理
type Manager struct {
	client      *apiclient.Client
	validator   *validation.Validator
	bus         *events.Bus
	maxFileSize int64
	logger      *zap.Logger
}

// NewManager 创建 Manager；maxFileSize<=0 时使用 5MB
func NewManager(client *apiclient.Client, v *validation.Validator, bus *events.Bus, maxFileSize int64, logger *zap.Logger) *Manager {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Manager{client: client, validator: v, bus: bus, maxFileSize: maxFileSize, logger: logger}
}

// MaxFileSize 附件大小上限
func (m *Manager) MaxFileSize() int64 { return m.maxFileSize }

// ────────────────────── Create ──────────────────────

// Create 提交新申请（仅教师、公务员）；结果状态恒为 EN_ATTENTE
func (m *Manager) Create(ctx context.Context, actor Actor, store *Store, in model.DemandeCreate) (*model.Demande, error) {
	if !actor.role().IsRequester() {
		return nil, ErrForbidden
	}
	if err := m.validateCreate(in); err != nil {
		return nil, err
	}

	d, err := m.client.WithToken(actor.Token).CreateDemande(ctx, in)
	if err != nil {
		return nil, err
	}

	store.Upsert(*d)
	m.publish(actor, d.ID, d.Statut, "create")
	return d, nil
}

func (m *Manager) validateCreate(in model.DemandeCreate) error {
	if err := m.validator.Struct(in); err != nil {
		return err
	}
	// YYYY-MM-DD 可直接按字典序比较
	if in.DateDebut != "" && in.DateFin != "" && in.DateFin < in.DateDebut {
		return apperrors.Invalid("date_fin", "La date de fin doit être postérieure ou égale à la date de début.")
	}
	return nil
}

// CreateWithDocuments 先创建再上传附件
//
// 附件大小在任何网络请求前校验；创建成功后上传失败只返回 warning，不回滚申请。
func (m *Manager) CreateWithDocuments(ctx context.Context, actor Actor, store *Store, in model.DemandeCreate, files []apiclient.File) (*model.Demande, string, error) {
	if err := m.checkFiles(files, true); err != nil {
		return nil, "", err
	}

	d, err := m.Create(ctx, actor, store, in)
	if err != nil {
		return nil, "", err
	}
	if len(files) == 0 {
		return d, "", nil
	}

	if _, err := m.UploadDocuments(ctx, actor, store, d.ID, files); err != nil {
		m.logger.Warn("申请已创建，附件上传失败",
			zap.Int64("demande_id", d.ID),
			zap.Int("files", len(files)),
			zap.Error(err),
		)
		return d, "Demande créée, mais l'envoi des pièces jointes a échoué : " + err.Error(), nil
	}

	if updated, ok := store.Get(d.ID); ok {
		d = &updated
	}
	return d, "", nil
}

// ────────────────────── UploadDocuments ──────────────────────

// UploadDocuments 为已存在的申请追加附件
func (m *Manager) UploadDocuments(ctx context.Context, actor Actor, store *Store, id int64, files []apiclient.File) ([]model.Document, error) {
	if err := m.checkFiles(files, false); err != nil {
		return nil, err
	}

	docs, err := m.client.WithToken(actor.Token).UploadDemandeDocuments(ctx, id, files)
	if err != nil {
		return nil, err
	}

	if d, ok := store.Get(id); ok {
		d.Documents = append(d.Documents, docs...)
		store.Upsert(d)
		m.publish(actor, id, d.Statut, "documents")
	}
	return docs, nil
}

func (m *Manager) checkFiles(files []apiclient.File, allowEmpty bool) error {
	if len(files) == 0 && !allowEmpty {
		return ErrNoFiles
	}
	for _, f := range files {
		if f.Size > m.maxFileSize {
			return fmt.Errorf("%w: %s", ErrFileTooLarge, f.Name)
		}
	}
	return nil
}

// ────────────────────── Approve / Reject ──────────────────────

// Approve 批准（仅秘书、管理员）
func (m *Manager) Approve(ctx context.Context, actor Actor, store *Store, id int64, commentaire string) (*model.Demande, error) {
	return m.decide(ctx, actor, store, id, model.StatutApprouvee, commentaire)
}

// Reject 驳回（仅秘书、管理员）
func (m *Manager) Reject(ctx context.Context, actor Actor, store *Store, id int64, commentaire string) (*model.Demande, error) {
	return m.decide(ctx, actor, store, id, model.StatutRejetee, commentaire)
}

func (m *Manager) decide(ctx context.Context, actor Actor, store *Store, id int64, statut model.Statut, commentaire string) (*model.Demande, error) {
	if !actor.role().IsReviewer() {
		return nil, ErrForbidden
	}
	prev, known := store.Get(id)
	if known && prev.Statut.IsTerminal() {
		return nil, ErrAlreadyDecided
	}

	d, err := m.client.WithToken(actor.Token).DecideDemande(ctx, id, model.DemandeDecision{
		Statut:           statut,
		CommentaireAdmin: commentaire,
	})
	if err != nil {
		return nil, err
	}

	// 后端响应可能不带关联数据，沿用本地副本
	if known {
		if d.User == nil {
			d.User = prev.User
		}
		if len(d.Documents) == 0 {
			d.Documents = prev.Documents
		}
	}

	store.Upsert(*d)
	m.logger.Info("申请已审批",
		zap.Int64("demande_id", id),
		zap.String("statut", string(d.Statut)),
		zap.Int64("reviewer_id", actor.User.ID),
	)
	m.publish(actor, id, d.Statut, "decide")
	return d, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除申请：本人或管理员
// 本地未知的申请交由后端判断
func (m *Manager) Delete(ctx context.Context, actor Actor, store *Store, id int64) error {
	if actor.User == nil {
		return ErrForbidden
	}
	if d, ok := store.Get(id); ok && d.UserID != actor.User.ID && actor.role() != model.RoleAdmin {
		return ErrForbidden
	}

	if err := m.client.WithToken(actor.Token).DeleteDemande(ctx, id); err != nil {
		return err
	}

	store.Remove(id)
	m.publish(actor, id, "", "delete")
	return nil
}

// ────────────────────── List / Get ──────────────────────

// DefaultScope 秘书、管理员默认看全部，其余只看自己的
func DefaultScope(r model.Role) Scope {
	if r.IsReviewer() {
		return ScopeAll
	}
	return ScopeMine
}

// List 拉取列表并整体替换 Store，顺序由后端决定
func (m *Manager) List(ctx context.Context, actor Actor, store *Store, scope Scope) ([]model.Demande, error) {
	if scope == "" {
		scope = DefaultScope(actor.role())
	}

	c := m.client.WithToken(actor.Token)
	var (
		list []model.Demande
		err  error
	)
	switch scope {
	case ScopeMine:
		list, err = c.ListMyDemandes(ctx)
	case ScopeAll:
		if !actor.role().IsReviewer() {
			return nil, ErrForbidden
		}
		list, err = c.ListDemandes(ctx)
	default:
		return nil, ErrInvalidScope
	}
	if err != nil {
		return nil, err
	}

	store.Replace(list)
	return store.List(), nil
}

// Get 读取单条申请并刷新本地副本
func (m *Manager) Get(ctx context.Context, actor Actor, store *Store, id int64) (*model.Demande, error) {
	d, err := m.client.WithToken(actor.Token).GetDemande(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := store.Get(id); ok {
		store.Upsert(*d)
	}
	return d, nil
}

// Download 下载附件，调用方负责关闭 Body
func (m *Manager) Download(ctx context.Context, actor Actor, id, docID int64) (*apiclient.Download, error) {
	return m.client.WithToken(actor.Token).DownloadDocument(ctx, id, docID)
}

func (m *Manager) publish(actor Actor, id int64, statut model.Statut, reason string) {
	if m.bus == nil {
		return
	}
	var userID int64
	if actor.User != nil {
		userID = actor.User.ID
	}
	events.Publish(m.bus, events.DemandeChanged{SessionID: actor.SessionID, UserID: userID, ID: id, Statut: statut, Reason: reason})
	events.Publish(m.bus, events.StatsChanged{SessionID: actor.SessionID, Reason: reason})
}
