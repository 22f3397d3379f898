package report

import (
	"bytes"
	"fmt"
	"primor/common"
	"primor/domain/event"
	"primor/domain/worker"
	"strconv"

	"github.com/go-pdf/fpdf"
)

var monthNames = [...]string{"", "Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro"}

var statusLabels = map[string]string{
	event.StatusPlanned:       "Planejado",
	event.StatusNotified:      "Notificado",
	event.StatusCompleted:     "Concluído",
	event.AssignmentPending:   "Pendente",
	event.AssignmentConfirmed: "Confirmado",
	event.AssignmentDeclined:  "Recusado",
}

func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

type column struct {
	header string
	width  float64
	align  string
}

// document lays out the common report frame on A4 with the core fonts.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(subtitle string) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle("Primor Garçons - "+subtitle, true)
	pdf.AddPage()

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0xFB, 0xBF, 0x24)
	pdf.CellFormat(0, 10, d.tr("PRIMOR GARÇONS"), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	d.subtitle(subtitle)
	return d
}

func (d *document) subtitle(text string) {
	d.pdf.SetFont("Helvetica", "B", 14)
	d.pdf.SetTextColor(0x1F, 0x29, 0x37)
	d.pdf.CellFormat(0, 8, d.tr(text), "", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *document) line(text string) {
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.SetTextColor(0x37, 0x41, 0x51)
	d.pdf.CellFormat(0, 6, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *document) field(label, value string) {
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.SetTextColor(0x37, 0x41, 0x51)
	labelText := d.tr(label + ": ")
	d.pdf.CellFormat(d.pdf.GetStringWidth(labelText)+1, 6, labelText, "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(0, 6, d.tr(value), "", 1, "L", false, 0, "")
}

func (d *document) table(columns []column, rows [][]string) {
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.SetFillColor(0x1F, 0x29, 0x37)
	d.pdf.SetTextColor(0xFF, 0xFF, 0xFF)
	d.pdf.SetDrawColor(0xE5, 0xE7, 0xEB)
	for _, c := range columns {
		d.pdf.CellFormat(c.width, 8, d.tr(c.header), "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont("Helvetica", "", 8)
	d.pdf.SetFillColor(0xF9, 0xFA, 0xFB)
	d.pdf.SetTextColor(0x37, 0x41, 0x51)
	for _, row := range rows {
		for i, c := range columns {
			d.pdf.CellFormat(c.width, 7, d.tr(row[i]), "1", 0, c.align, true, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(5)
}

func (d *document) bytes() ([]byte, error) {
	d.pdf.Ln(12)
	d.pdf.SetFont("Helvetica", "", 8)
	d.pdf.SetTextColor(0x9C, 0xA3, 0xAF)
	d.pdf.CellFormat(0, 5, d.tr("Gerado em "+common.Now().Format("02/01/2006 às 15:04")), "", 1, "C", false, 0, "")
	d.pdf.CellFormat(0, 5, d.tr("Primor Garçons - Sistema de Gestão de Escalas"), "", 1, "C", false, 0, "")

	buf := bytes.Buffer{}
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func RenderEventPDF(detail *event.EventDetail) ([]byte, error) {
	d := newDocument("Relatório do Evento")
	d.field("Evento", detail.Name)
	d.field("Tipo", detail.Category)
	d.field("Data", detail.DisplayDate)
	d.field("Horário", detail.Schedule)
	d.field("Local", detail.Venue)
	d.field("Status", StatusLabel(detail.Status))
	d.pdf.Ln(5)

	d.subtitle("Escala de Garçons")
	rows := make([][]string, 0, len(detail.Assignments))
	for _, a := range detail.Assignments {
		role := "Garçom"
		if a.Driver {
			role = "Garçom/Motorista"
		}
		rows = append(rows, []string{a.WorkerName, role, common.FormatMoney(a.EffectivePayout), StatusLabel(a.Status)})
	}
	d.table([]column{{"Nome", 70, "L"}, {"Função", 40, "L"}, {"Valor", 35, "R"}, {"Status", 35, "C"}}, rows)

	d.subtitle("Resumo")
	d.field("Total de garçons", strconv.Itoa(detail.Summary.Total))
	d.field("Confirmados", strconv.Itoa(detail.Summary.Confirmed))
	d.field("Pendentes", strconv.Itoa(detail.Summary.Pending))
	d.field("Recusados", strconv.Itoa(detail.Summary.Declined))
	d.field("Valor total", common.FormatMoney(detail.Summary.TotalValue))
	return d.bytes()
}

func RenderWorkersPDF(workers []worker.WorkerDetail) ([]byte, error) {
	d := newDocument("Lista de Garçons Ativos")
	rows := make([][]string, 0, len(workers))
	for _, w := range workers {
		age := ""
		if w.Age != nil {
			age = strconv.Itoa(*w.Age)
		}
		rows = append(rows, []string{w.Name, w.Phone, w.Email, age, strconv.Itoa(w.TotalEvents)})
	}
	d.table([]column{{"Nome", 55, "L"}, {"Telefone", 35, "L"}, {"E-mail", 55, "L"}, {"Idade", 15, "C"}, {"Eventos", 20, "C"}}, rows)
	d.field("Total de garçons ativos", strconv.Itoa(len(workers)))
	return d.bytes()
}

func RenderMonthPDF(r *MonthReport) ([]byte, error) {
	d := newDocument(fmt.Sprintf("Eventos de %s de %d", monthNames[r.Month.Month()], r.Month.Year()))
	if len(r.Events) == 0 {
		d.line("Nenhum evento programado para este mês.")
		return d.bytes()
	}

	rows := make([][]string, 0, len(r.Events))
	for _, e := range r.Events {
		rows = append(rows, []string{e.Date.Format("02/01"), e.Schedule, truncate(e.Name, 25), truncate(e.Venue, 20),
			strconv.Itoa(e.Summary.Total)})
	}
	d.table([]column{{"Data", 20, "C"}, {"Horário", 30, "C"}, {"Evento", 55, "L"}, {"Local", 50, "L"}, {"Garçons", 25, "C"}}, rows)
	d.field("Total de eventos", strconv.Itoa(len(r.Events)))
	d.field("Total de garçons escalados", strconv.Itoa(r.TotalWorkers))
	d.field("Valor total estimado", common.FormatMoney(r.TotalValue))
	return d.bytes()
}

func RenderGeneralPDF(r *GeneralReport) ([]byte, error) {
	d := newDocument("Relatório Geral de Eventos")
	if r.Period.From != nil && r.Period.To != nil {
		d.line("Período: " + r.Period.From.Display() + " a " + r.Period.To.Display())
		d.pdf.Ln(3)
	}

	rows := make([][]string, 0, len(r.Events))
	for _, e := range r.Events {
		rows = append(rows, []string{e.DisplayDate, truncate(e.Name, 30), truncate(e.Venue, 25),
			strconv.Itoa(e.Summary.Total), common.FormatMoney(e.Summary.TotalValue)})
	}
	d.table([]column{{"Data", 25, "C"}, {"Evento", 55, "L"}, {"Local", 45, "L"}, {"Garçons", 20, "C"}, {"Valor Total", 35, "R"}}, rows)

	d.subtitle("Resumo Geral")
	d.field("Total de eventos", strconv.Itoa(len(r.Events)))
	d.field("Total de garçons escalados", strconv.Itoa(r.TotalWorkers))
	d.field("Valor total", common.FormatMoney(r.TotalValue))
	return d.bytes()
}
