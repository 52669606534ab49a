package model

import (
	"encoding/json"
	"strings"
)

// Role 用户角色（封闭枚举）
//
// 后端返回的角色字符串大小写不一，统一在 ParseRole 处规范化，
// 之后所有比较都基于该枚举，不再做大小写处理。
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleSecretaire    Role = "secretaire"
	RoleEnseignant    Role = "enseignant"
	RoleFonctionnaire Role = "fonctionnaire"
	RoleUnknown       Role = ""
)

// AllRoles 全部已知角色
var AllRoles = []Role{RoleAdmin, RoleSecretaire, RoleEnseignant, RoleFonctionnaire}

// ParseRole 将任意角色字符串规范化为 Role，无法识别时返回 RoleUnknown
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "cadmin":
		return RoleAdmin
	case "secretaire", "secrétaire":
		return RoleSecretaire
	case "enseignant":
		return RoleEnseignant
	case "fonctionnaire":
		return RoleFonctionnaire
	default:
		return RoleUnknown
	}
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r != RoleUnknown
}

// In 判断角色是否属于给定集合
func (r Role) In(roles ...Role) bool {
	for _, x := range roles {
		if r == x {
			return true
		}
	}
	return false
}

// IsReviewer 是否可审批申请（秘书、管理员）
func (r Role) IsReviewer() bool {
	return r.In(RoleAdmin, RoleSecretaire)
}

// IsRequester 是否可提交申请（教师、公务员）
func (r Role) IsRequester() bool {
	return r.In(RoleEnseignant, RoleFonctionnaire)
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return string(r)
}

// UnmarshalJSON 反序列化时即完成规范化
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}
