package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/rentstatus"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoDrivers    = errors.New("暂无司机数据可导出")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportRentGrid 导出车队租金网格：每行一名司机，每列一天，单元格为状态标签
	ExportRentGrid(ctx context.Context, req *dto.DateRangeRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	status RentStatusService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例，网格数据复用 RentStatusService
func NewExportService(status RentStatusService, logger *zap.Logger) ExportService {
	return &exportService{status: status, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRentGrid 导出租金网格为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Rent Grid"
//   - 第 1 行标题，第 2 行表头：司机 | 手机号 | 班次 | 日期… | 逾期 | 驳回
//   - 单元格：状态标签，底色取状态颜色
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportRentGrid(ctx context.Context, req *dto.DateRangeRequest) (*bytes.Buffer, string, error) {
	grid, err := s.status.GetFleetGrid(ctx, req)
	if err != nil {
		return nil, "", err
	}
	if len(grid.Rows) == 0 {
		return nil, "", ErrExportNoDrivers
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Rent Grid"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	const fixedCols = 3
	lastCol := fixedCols + len(grid.Dates) + 2

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 10)
	if len(grid.Dates) > 0 {
		f.SetColWidth(sheetName, colName(fixedCols), colName(fixedCols+len(grid.Dates)-1), 14)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Rent Status %s ~ %s", grid.From, grid.To))
	f.MergeCell(sheetName, "A1", cell(colName(lastCol-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "Driver")
	f.SetCellValue(sheetName, cell("B", row), "Phone")
	f.SetCellValue(sheetName, cell("C", row), "Shift")
	for i, date := range grid.Dates {
		f.SetCellValue(sheetName, cell(colName(fixedCols+i), row), date)
	}
	f.SetCellValue(sheetName, cell(colName(lastCol-2), row), "Overdue")
	f.SetCellValue(sheetName, cell(colName(lastCol-1), row), "Rejected")
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(lastCol-1), row), headerStyle)

	// 每种状态一个样式
	styles := make(map[string]int, len(rentstatus.AllStatuses))
	for _, st := range rentstatus.AllStatuses {
		info := rentstatus.Display(st)
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{info.Color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err == nil {
			styles[string(st)] = id
		}
	}

	// 数据行
	row = 3
	for _, r := range grid.Rows {
		f.SetCellValue(sheetName, cell("A", row), r.Driver.Name)
		f.SetCellValue(sheetName, cell("B", row), r.Driver.Phone)
		f.SetCellValue(sheetName, cell("C", row), r.Driver.Shift)

		days := make(map[string]dto.DayStatusResponse, len(r.Days))
		for _, d := range r.Days {
			days[d.Date] = d
		}
		for i, date := range grid.Dates {
			ref := cell(colName(fixedCols+i), row)
			d, ok := days[date]
			if !ok {
				// 截断到今天之后的日期留空
				f.SetCellValue(sheetName, ref, "-")
				continue
			}
			f.SetCellValue(sheetName, ref, d.Label)
			if style, ok := styles[d.Status]; ok {
				f.SetCellStyle(sheetName, ref, ref, style)
			}
		}
		f.SetCellValue(sheetName, cell(colName(lastCol-2), row), r.OverdueCount)
		f.SetCellValue(sheetName, cell(colName(lastCol-1), row), r.RejectedCount)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("rent_grid_%s_%s.xlsx", grid.From, grid.To)
	return buf, filename, nil
}

// ── 辅助函数 ──

// colName 0 基列号 → 列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
