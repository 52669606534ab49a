package errors

import (
	"errors"
	"strings"
)

// ErrValidation 客户端表单校验失败（未发出任何网络请求）
var ErrValidation = errors.New("formulaire invalide")

// ValidationError 字段级校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid 构造字段校验错误
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ── 后端错误文案友好化 ──

var alreadyExistsMarkers = []string{"already exists", "already registered", "existe déjà", "duplicate"}

// IsAlreadyExists 后端消息是否表示唯一性冲突（邮箱、CIN 等）
func IsAlreadyExists(msg string) bool {
	lower := strings.ToLower(msg)
	for _, m := range alreadyExistsMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// IsNotFound 后端消息是否表示资源不存在
func IsNotFound(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "not found") || strings.Contains(lower, "introuvable")
}

// Humanize 将后端原始消息转换为更友好的提示；无法识别时原样返回
func Humanize(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case IsAlreadyExists(msg) && strings.Contains(lower, "email"):
		return "Un compte avec cet email existe déjà."
	case IsAlreadyExists(msg) && strings.Contains(lower, "cin"):
		return "Ce numéro CIN est déjà utilisé."
	case IsAlreadyExists(msg):
		return "Cet enregistrement existe déjà."
	case IsNotFound(msg):
		return "Élément introuvable."
	default:
		return msg
	}
}
