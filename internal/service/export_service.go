package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoDemandes   = errors.New("aucune demande à exporter")
	ErrExportGenerateFail = errors.New("échec de la génération du fichier Excel")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入。
type ExportService interface {
	// ExportDemandes 按当前会话可见范围与筛选条件导出申请
	ExportDemandes(ctx context.Context, actor demande.Actor, store *demande.Store, q demande.Query) (*bytes.Buffer, string, error)
}

type exportService struct {
	demandes *demande.Manager
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(demandes *demande.Manager, logger *zap.Logger) ExportService {
	return &exportService{demandes: demandes, logger: logger, now: time.Now}
}

var exportHeaders = []string{
	"N°", "Type", "Titre", "Demandeur", "Date début", "Date fin",
	"Statut", "Commentaire", "Créée le", "Pièces jointes", "Détails",
}

// ═══════════════════════════════════════════════════════════
// ExportDemandes：导出申请列表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Demandes"
//   - 第 1 行标题（合并单元格），第 2 行表头，之后每条申请一行
//   - 行顺序与后端返回一致
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportDemandes(ctx context.Context, actor demande.Actor, store *demande.Store, q demande.Query) (*bytes.Buffer, string, error) {
	list, err := s.demandes.List(ctx, actor, store, "")
	if err != nil {
		return nil, "", err
	}
	list = demande.Filter(list, q)
	if len(list) == 0 {
		return nil, "", ErrExportNoDemandes
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Demandes"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	widths := []float64{8, 22, 40, 26, 12, 12, 14, 40, 20, 14, 50}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheet, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := fmt.Sprintf("Demandes administratives - export du %s", s.now().Format("02/01/2006"))
	f.SetCellValue(sheet, "A1", title)
	f.MergeCell(sheet, "A1", cell(colName(len(exportHeaders)-1), 1))

	// 表头
	for i, h := range exportHeaders {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheet, "A2", cell(colName(len(exportHeaders)-1), 2), headerStyle)

	// 数据行
	row := 3
	for _, d := range list {
		values := []any{
			d.ID,
			d.TypeDemande.Label(),
			d.Titre,
			requesterName(d),
			d.DateDebut,
			d.DateFin,
			d.Statut.Label(),
			d.CommentaireAdmin,
			d.CreatedAt,
			len(d.Documents),
			demande.Summary(d.Description),
		}
		for i, v := range values {
			f.SetCellValue(sheet, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("demandes_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func requesterName(d model.Demande) string {
	if d.User != nil {
		return d.User.FullName()
	}
	return fmt.Sprintf("#%d", d.UserID)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
