package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/events"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/validation"
	apperrors "github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/errors"
)

// ── 人员模块业务错误 ──

var (
	ErrPhotoTooLarge = errors.New("photo trop volumineuse (5 Mo maximum)")
	ErrPhotoType     = errors.New("format de photo non supporté (JPEG, PNG, GIF ou WEBP)")
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// StaffService 教师、公务员与用户目录
//
// 所有调用都以当前会话的 Token 转发给后端；唯一性等约束由后端保证，
// 这里只做提交前的字段校验，并把后端的重复类错误转换成更友好的文案。
// 人员增删与照片上传成功后发布 StatsChanged，管理员仪表盘据此刷新人数统计。
type StaffService interface {
	ListEnseignants(ctx context.Context, token, q string) ([]model.Enseignant, error)
	GetEnseignant(ctx context.Context, token string, id int64) (*model.Enseignant, error)
	CreateEnseignant(ctx context.Context, token string, in model.StaffCreate) (*model.Enseignant, error)
	UpdateEnseignant(ctx context.Context, token string, id int64, in model.StaffUpdate) (*model.Enseignant, error)
	DeleteEnseignant(ctx context.Context, token string, id int64) error

	ListFonctionnaires(ctx context.Context, token, q string) ([]model.Fonctionnaire, error)
	GetFonctionnaire(ctx context.Context, token string, id int64) (*model.Fonctionnaire, error)
	CreateFonctionnaire(ctx context.Context, token string, in model.StaffCreate) (*model.Fonctionnaire, error)
	UpdateFonctionnaire(ctx context.Context, token string, id int64, in model.StaffUpdate) (*model.Fonctionnaire, error)
	DeleteFonctionnaire(ctx context.Context, token string, id int64) error
	UploadPhoto(ctx context.Context, token string, id int64, photo apiclient.File) (*model.Fonctionnaire, error)

	ListUsers(ctx context.Context, token, q string, role model.Role) ([]model.User, error)
	DeleteUser(ctx context.Context, token string, id int64) error
}

type staffService struct {
	client       *apiclient.Client
	validator    *validation.Validator
	bus          *events.Bus
	maxPhotoSize int64
	logger       *zap.Logger
}

// NewStaffService 创建 StaffService 实例；bus 可为 nil
func NewStaffService(client *apiclient.Client, v *validation.Validator, bus *events.Bus, maxPhotoSize int64, logger *zap.Logger) StaffService {
	if maxPhotoSize <= 0 {
		maxPhotoSize = 5 << 20
	}
	return &staffService{client: client, validator: v, bus: bus, maxPhotoSize: maxPhotoSize, logger: logger}
}

// statsChanged 人员变更后通知仪表盘
func (s *staffService) statsChanged(reason string) {
	if s.bus != nil {
		events.Publish(s.bus, events.StatsChanged{Reason: reason})
	}
}

// ────────────────────── 教师 ──────────────────────

func (s *staffService) ListEnseignants(ctx context.Context, token, q string) ([]model.Enseignant, error) {
	list, err := s.client.WithToken(token).ListEnseignants(ctx)
	if err != nil {
		return nil, err
	}
	q = normalize(q)
	if q == "" {
		return list, nil
	}
	out := make([]model.Enseignant, 0, len(list))
	for _, e := range list {
		if userMatches(e.User, q) || containsAny(q, e.Specialite, e.Grade, e.Etablissement) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *staffService) GetEnseignant(ctx context.Context, token string, id int64) (*model.Enseignant, error) {
	e, err := s.client.WithToken(token).GetEnseignant(ctx, id)
	return e, humanize(err)
}

func (s *staffService) CreateEnseignant(ctx context.Context, token string, in model.StaffCreate) (*model.Enseignant, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	e, err := s.client.WithToken(token).CreateEnseignant(ctx, in)
	if err != nil {
		return nil, humanize(err)
	}
	s.logger.Info("教师已创建", zap.Int64("enseignant_id", e.ID), zap.Int64("user_id", e.UserID))
	s.statsChanged("staff")
	return e, nil
}

func (s *staffService) UpdateEnseignant(ctx context.Context, token string, id int64, in model.StaffUpdate) (*model.Enseignant, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	e, err := s.client.WithToken(token).UpdateEnseignant(ctx, id, in)
	return e, humanize(err)
}

func (s *staffService) DeleteEnseignant(ctx context.Context, token string, id int64) error {
	if err := s.client.WithToken(token).DeleteEnseignant(ctx, id); err != nil {
		return humanize(err)
	}
	s.logger.Info("教师已删除", zap.Int64("enseignant_id", id))
	s.statsChanged("staff")
	return nil
}

// ────────────────────── 公务员 ──────────────────────

func (s *staffService) ListFonctionnaires(ctx context.Context, token, q string) ([]model.Fonctionnaire, error) {
	list, err := s.client.WithToken(token).ListFonctionnaires(ctx)
	if err != nil {
		return nil, err
	}
	q = normalize(q)
	if q == "" {
		return list, nil
	}
	out := make([]model.Fonctionnaire, 0, len(list))
	for _, f := range list {
		if userMatches(f.User, q) || containsAny(q, f.Service, f.Poste, f.Grade) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *staffService) GetFonctionnaire(ctx context.Context, token string, id int64) (*model.Fonctionnaire, error) {
	f, err := s.client.WithToken(token).GetFonctionnaire(ctx, id)
	return f, humanize(err)
}

func (s *staffService) CreateFonctionnaire(ctx context.Context, token string, in model.StaffCreate) (*model.Fonctionnaire, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	f, err := s.client.WithToken(token).CreateFonctionnaire(ctx, in)
	if err != nil {
		return nil, humanize(err)
	}
	s.logger.Info("公务员已创建", zap.Int64("fonctionnaire_id", f.ID), zap.Int64("user_id", f.UserID))
	s.statsChanged("staff")
	return f, nil
}

func (s *staffService) UpdateFonctionnaire(ctx context.Context, token string, id int64, in model.StaffUpdate) (*model.Fonctionnaire, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	f, err := s.client.WithToken(token).UpdateFonctionnaire(ctx, id, in)
	return f, humanize(err)
}

func (s *staffService) DeleteFonctionnaire(ctx context.Context, token string, id int64) error {
	if err := s.client.WithToken(token).DeleteFonctionnaire(ctx, id); err != nil {
		return humanize(err)
	}
	s.logger.Info("公务员已删除", zap.Int64("fonctionnaire_id", id))
	s.statsChanged("staff")
	return nil
}

// UploadPhoto 校验大小与实际内容类型后上传
func (s *staffService) UploadPhoto(ctx context.Context, token string, id int64, photo apiclient.File) (*model.Fonctionnaire, error) {
	if photo.Size > s.maxPhotoSize {
		return nil, ErrPhotoTooLarge
	}

	// 按文件头嗅探类型，不信任浏览器声明的 Content-Type
	head := make([]byte, 512)
	n, err := io.ReadFull(photo.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("读取照片失败: %w", err)
	}
	head = head[:n]
	sniffed := http.DetectContentType(head)
	if !allowedPhotoTypes[sniffed] {
		return nil, ErrPhotoType
	}
	photo.ContentType = sniffed
	photo.Content = io.MultiReader(bytes.NewReader(head), photo.Content)

	f, err := s.client.WithToken(token).UploadFonctionnairePhoto(ctx, id, photo)
	if err != nil {
		return nil, humanize(err)
	}
	s.statsChanged("staff_photo")
	return f, nil
}

// ────────────────────── 用户 ──────────────────────

func (s *staffService) ListUsers(ctx context.Context, token, q string, role model.Role) ([]model.User, error) {
	list, err := s.client.WithToken(token).ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	q = normalize(q)
	out := make([]model.User, 0, len(list))
	for i := range list {
		u := &list[i]
		if role.Valid() && u.Role != role {
			continue
		}
		if q != "" && !userMatches(u, q) {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (s *staffService) DeleteUser(ctx context.Context, token string, id int64) error {
	if err := s.client.WithToken(token).DeleteUser(ctx, id); err != nil {
		return humanize(err)
	}
	s.logger.Info("用户已删除", zap.Int64("user_id", id))
	s.statsChanged("staff")
	return nil
}

// ── 辅助函数 ──

// humanize 将后端的重复/不存在类消息替换为友好文案，状态码保持不变
func humanize(err error) error {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := apperrors.Humanize(apiErr.Message)
	if msg == apiErr.Message {
		return err
	}
	return &apiclient.APIError{Status: apiErr.Status, Message: msg}
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func userMatches(u *model.User, q string) bool {
	if u == nil {
		return false
	}
	return containsAny(q, u.FullName(), u.Email, u.CIN, u.Telephone)
}
