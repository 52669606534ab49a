package model

import "time"

// SessionEntry 会话键值表，对应 session_entries
// 每个浏览器会话（sid）下保存 access_token 与缓存的 user 记录
type SessionEntry struct {
	SessionID string    `gorm:"type:varchar(64);primaryKey"                json:"session_id"`
	Key       string    `gorm:"column:entry_key;type:varchar(64);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null"                         json:"value"`
	ExpiresAt time.Time `gorm:"not null;index"                             json:"expires_at"`
	UpdatedAt time.Time `gorm:"not null"                                   json:"updated_at"`
}

// TableName 指定表名
func (SessionEntry) TableName() string { return "session_entries" }
