package demande

import (
	"strings"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// Field 描述中的结构化子字段
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormatDescription 将子字段编码为 "Label: value" 多行文本，空值跳过
func FormatDescription(fields []Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		label := strings.TrimSpace(f.Label)
		value := strings.TrimSpace(f.Value)
		if label == "" || value == "" {
			continue
		}
		value = strings.ReplaceAll(value, "\n", " ")
		lines = append(lines, label+": "+value)
	}
	return strings.Join(lines, "\n")
}

// ParseDescription FormatDescription 的逆操作；无法识别的行归入 Label 为空的字段
func ParseDescription(desc string) []Field {
	var fields []Field
	for _, line := range strings.Split(desc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, value, ok := strings.Cut(line, ": ")
		if !ok || strings.TrimSpace(label) == "" {
			fields = append(fields, Field{Value: line})
			continue
		}
		fields = append(fields, Field{Label: strings.TrimSpace(label), Value: strings.TrimSpace(value)})
	}
	return fields
}

var titlePrefixes = map[model.TypeDemande]string{
	model.TypeAttestation:  "Demande d'attestation",
	model.TypeOrdreMission: "Demande d'ordre de mission",
	model.TypeConge:        "Demande de congé",
	model.TypeAbsence:      "Demande d'absence",
	model.TypeHeuresSup:    "Déclaration d'heures supplémentaires",
}

// Summary 单行展示，字段间以 "; " 分隔
func Summary(desc string) string {
	fields := ParseDescription(desc)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Label == "" {
			parts = append(parts, f.Value)
			continue
		}
		parts = append(parts, f.Label+": "+f.Value)
	}
	return strings.Join(parts, "; ")
}

// TitleFor 生成标题，如 "Demande d'attestation - travail"
func TitleFor(t model.TypeDemande, detail string) string {
	prefix, ok := titlePrefixes[t]
	if !ok {
		prefix = "Demande"
	}
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return prefix
	}
	return prefix + " - " + detail
}
