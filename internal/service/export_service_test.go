package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"fleetwave/backend/internal/dto"
)

func TestExportService_ExportRentGrid_NoDrivers(t *testing.T) {
	env := newTestEnv(at(10, 12, 0))

	_, _, err := env.svc.Export.ExportRentGrid(context.Background(), &dto.DateRangeRequest{})
	if !errors.Is(err, ErrExportNoDrivers) {
		t.Errorf("期望 ErrExportNoDrivers，实际: %v", err)
	}
}

func TestExportService_ExportRentGrid_InvalidRange(t *testing.T) {
	env := newTestEnv(at(10, 12, 0))
	env.addDriver("drv-a", "Asha", "morning", 1)

	_, _, err := env.svc.Export.ExportRentGrid(context.Background(), &dto.DateRangeRequest{From: "2024-06-10", To: "2024-06-01"})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际: %v", err)
	}
}

func TestExportService_ExportRentGrid_Success(t *testing.T) {
	env := newTestEnv(at(10, 18, 0))
	env.addDriver("drv-a", "Asha", "morning", 1)
	env.addReport("rpt-1", "drv-a", 9, "paid", at(9, 9, 0))

	buf, filename, err := env.svc.Export.ExportRentGrid(context.Background(), &dto.DateRangeRequest{
		From: "2024-06-09",
		To:   "2024-06-10",
	})
	if err != nil {
		t.Fatalf("ExportRentGrid 应成功: %v", err)
	}
	if filename != "rent_grid_2024-06-09_2024-06-10.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件应可被解析: %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"A2": "Driver",
		"D2": "2024-06-09",
		"E2": "2024-06-10",
		"A3": "Asha",
		"D3": "Paid",
		"E3": "Overdue",
		"F3": "1",
	}
	for ref, want := range checks {
		got, err := f.GetCellValue("Rent Grid", ref)
		if err != nil {
			t.Fatalf("读取 %s 失败: %v", ref, err)
		}
		if got != want {
			t.Errorf("%s 期望 %q，实际 %q", ref, want, got)
		}
	}
}
