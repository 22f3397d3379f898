package report

import (
	"bytes"
	"primor/common"

	"github.com/xuri/excelize/v2"
)

const (
	SheetEvents  = "Eventos"
	SheetSummary = "Resumo"
)

var generalHeaders = []string{"Data", "Evento", "Tipo", "Local", "Status", "Garçons", "Confirmados", "Pendentes", "Recusados", "Valor Total"}

// RenderGeneralXLSX writes one row per event followed by a totals row.
func RenderGeneralXLSX(r *GeneralReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetEvents); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	for i, header := range generalHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetEvents, cell, header); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(SheetEvents, "A1", "J1", bold); err != nil {
		return nil, err
	}

	row := 2
	for _, e := range r.Events {
		values := []interface{}{e.DisplayDate, e.Name, e.Category, e.Venue, StatusLabel(e.Status), e.Summary.Total,
			e.Summary.Confirmed, e.Summary.Pending, e.Summary.Declined, e.Summary.TotalValue.InexactFloat64()}
		if err := setRow(f, row, values); err != nil {
			return nil, err
		}
		row++
	}

	if err := setRow(f, row, []interface{}{"Total", len(r.Events), "", "", "", r.TotalWorkers, "", "", "",
		r.TotalValue.InexactFloat64()}); err != nil {
		return nil, err
	}
	totalStart, _ := excelize.CoordinatesToCellName(1, row)
	totalEnd, _ := excelize.CoordinatesToCellName(len(generalHeaders), row)
	if err := f.SetCellStyle(SheetEvents, totalStart, totalEnd, bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetEvents, "J2", totalEnd, money); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetEvents, "B", "D", 30); err != nil {
		return nil, err
	}

	if err := writeSummary(f, r); err != nil {
		return nil, err
	}

	buf := bytes.Buffer{}
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(SheetEvents, cell, &values)
}

func writeSummary(f *excelize.File, r *GeneralReport) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return err
	}
	from, to := "", ""
	if r.Period.From != nil {
		from = r.Period.From.Display()
	}
	if r.Period.To != nil {
		to = r.Period.To.Display()
	}
	rows := [][]interface{}{
		{"Primor Garçons", "Relatório Geral de Eventos"},
		{"De", from},
		{"Até", to},
		{"Total de eventos", len(r.Events)},
		{"Total de garçons escalados", r.TotalWorkers},
		{"Valor total", common.FormatMoney(r.TotalValue)},
		{"Gerado em", common.Now().Format("02/01/2006 15:04")},
	}
	for i, values := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "B", 30)
}
