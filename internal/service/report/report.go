package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"extrud-backend/internal/storage"
)

type ReportStorage interface {
	ListLogs(ctx context.Context, caller storage.Account, filter storage.LogFilter, sort []storage.SortKey, skip int) ([]*storage.ExtrusionLog, error)
}

type Service struct {
	storage ReportStorage
}

func New(storage ReportStorage) *Service {
	return &Service{storage: storage}
}

var headers = []string{
	"Date", "Shift", "Plant", "Machine", "Die", "Sub No", "Billet Type", "Lot No",
	"Ram Speed", "Billet Temp", "Container Temp", "Output Temp", "Pressure",
	"Start", "End", "Prod Qty", "NG Qty", "Butt Length", "Result", "Remark",
}

// GenerateExcel builds a production report workbook for every run matching
// the filter, walking the paginated listing until a short page.
func (s *Service) GenerateExcel(ctx context.Context, caller storage.Account, filter storage.LogFilter) ([]byte, error) {
	const op = "service.report.GenerateExcel"

	var logs []*storage.ExtrusionLog
	for skip := 0; ; skip += storage.PageSize {
		page, err := s.storage.ListLogs(ctx, caller, filter, nil, skip)
		if err != nil {
			return nil, fmt.Errorf("%s: fetch page skip=%d: %w", op, skip, err)
		}
		logs = append(logs, page...)
		if len(page) < storage.PageSize {
			break
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Production"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastCol, headerStyle)

	for rowIdx, l := range logs {
		row := []any{
			strVal(l.Date), l.Shift, l.Plant, l.Machine,
			strVal(l.DieCode), intVal(l.SubNumber), strVal(l.BilletType), strVal(l.LotNumberCode),
			floatVal(l.RamSpeed), floatVal(l.BilletTemp), floatVal(l.ContainerTemp), floatVal(l.OutputTemp), floatVal(l.Pressure),
			strVal(l.StartTime), strVal(l.EndTime),
			intVal(l.ProductionQuantity), intVal(l.NGQuantity), floatVal(l.ButtLength),
			strVal(l.Result), strVal(l.Remark),
		}
		for colIdx, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("%s: write workbook: %w", op, err)
	}

	return buf.Bytes(), nil
}

func strVal(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func intVal(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatVal(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
