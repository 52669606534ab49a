package events

import "github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"

// StatsChanged 仪表盘统计需要刷新
type StatsChanged struct {
	SessionID string
	Reason    string
}

// DemandeChanged 某条申请被创建、审批或删除
type DemandeChanged struct {
	SessionID string
	UserID    int64 // 操作者
	ID        int64
	Statut    model.Statut // 删除时为空
	Reason    string
}

// SessionEnded 浏览器会话已登出或被清理
type SessionEnded struct {
	SessionID string
}
