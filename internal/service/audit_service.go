package service

import (
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/events"
)

// AuditLog 申请变更审计日志
//
// 订阅 DemandeChanged，每次创建、附件上传、审批或删除成功后记一条结构化日志，
// 审批记录可按 demande_id 与操作者检索。
type AuditLog struct {
	logger *zap.Logger
	unsub  func()
}

// NewAuditLog 创建审计日志并订阅事件；bus 为 nil 时不记录
func NewAuditLog(bus *events.Bus, logger *zap.Logger) *AuditLog {
	a := &AuditLog{logger: logger.Named("audit")}
	if bus != nil {
		a.unsub = events.Subscribe(bus, a.record)
	}
	return a
}

func (a *AuditLog) record(e events.DemandeChanged) {
	fields := []zap.Field{
		zap.String("action", e.Reason),
		zap.Int64("demande_id", e.ID),
		zap.Int64("user_id", e.UserID),
		zap.String("session_id", e.SessionID),
	}
	if e.Statut != "" {
		fields = append(fields, zap.String("statut", string(e.Statut)))
	}
	a.logger.Info("申请已变更", fields...)
}

// Close 取消订阅，可重复调用
func (a *AuditLog) Close() {
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
}
