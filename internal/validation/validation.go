// Package validation 表单校验（提交到后端之前执行）
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
	apperrors "github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/errors"
)

// Validator 封装 validator/v10 并注册业务规则
type Validator struct {
	validate *validator.Validate
}

// New 创建 Validator
func New() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
	v.registerRules()
	return v
}

// Struct 校验结构体，返回第一个字段错误（*apperrors.ValidationError）
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("校验失败: %w", err)
	}
	fe := fieldErrs[0]
	return apperrors.Invalid(jsonName(fe), message(fe))
}

func (v *Validator) registerRules() {
	v.validate.RegisterValidation("type_demande", func(fl validator.FieldLevel) bool {
		return model.TypeDemande(fl.Field().String()).Valid()
	})
	// JSON 字段名用于错误提示
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func jsonName(fe validator.FieldError) string {
	if fe.Field() != "" {
		return fe.Field()
	}
	return strings.ToLower(fe.StructField())
}

// message 法语提示文案
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Ce champ est obligatoire."
	case "email":
		return "Adresse email invalide."
	case "min":
		return fmt.Sprintf("Au moins %s caractères.", fe.Param())
	case "max":
		return fmt.Sprintf("Au plus %s caractères.", fe.Param())
	case "datetime":
		return "Date invalide (format AAAA-MM-JJ)."
	case "type_demande":
		return "Type de demande inconnu."
	default:
		return "Valeur invalide."
	}
}
