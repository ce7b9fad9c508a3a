package service

import (
	"bytes"
	"fmt"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	tasksSheet = "Tarefas"
	daysSheet  = "Diário"
)

var (
	taskHeaders = []string{"ID", "Nome", "Status", "Estimativa (h)", "Data de referência", "Fechada em", "Atualizada em", "Registrado (h)", "Comentários", "URL"}
	dayHeaders  = []string{"Data", "Dia", "Fim de semana", "Horas estimadas", "Tarefas", "Média por tarefa (h)"}
)

// ExcelGenerator gera a planilha de uma análise
type ExcelGenerator struct{}

// NewExcelGenerator cria um novo gerador de Excel
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Generate gera o XLSX com as abas "Tarefas" e "Diário" da janela pedida
func (g *ExcelGenerator) Generate(a *model.Analysis) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), tasksSheet); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}
	if _, err := f.NewSheet(daysSheet); err != nil {
		return nil, fmt.Errorf("criar sheet: %w", err)
	}

	headerStyle, err := g.headerStyle(f)
	if err != nil {
		return nil, fmt.Errorf("criar estilo: %w", err)
	}

	if err := g.writeRows(f, tasksSheet, taskHeaders, headerStyle, taskRows(a.Range.Tasks)); err != nil {
		return nil, fmt.Errorf("escrever tarefas: %w", err)
	}

	days := BuildDays(a.Range.Tasks, a.Range.Aggregate, a.Range.Window)
	if err := g.writeRows(f, daysSheet, dayHeaders, headerStyle, dayRows(days)); err != nil {
		return nil, fmt.Errorf("escrever diário: %w", err)
	}

	// linha de total no fim do diário
	totalRow := len(days) + 2
	if err := f.SetSheetRow(daysSheet, fmt.Sprintf("A%d", totalRow), &[]interface{}{
		"Total", "", "", a.Range.Aggregate.TotalEstimateHours, a.Range.Aggregate.TotalTasks,
	}); err != nil {
		return nil, fmt.Errorf("escrever total: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}
	return buf, nil
}

func taskRows(tasks []model.Task) [][]interface{} {
	rows := make([][]interface{}, 0, len(tasks))
	for _, t := range tasks {
		var estimate interface{} = ""
		if ms := t.EstimateMillis(); ms > 0 {
			estimate = MillisToHours(ms)
		}
		bucket := ""
		if d, ok := BucketDate(t); ok {
			bucket = DateKey(d)
		}
		rows = append(rows, []interface{}{
			t.ID,
			t.Name,
			t.Status.Status,
			estimate,
			bucket,
			millisToDate(t.DateClosed),
			millisToDate(t.DateUpdated),
			MillisToHours(TrackedMillis(t)),
			len(t.Comments),
			t.URL,
		})
	}
	return rows
}

func dayRows(days []DaySummary) [][]interface{} {
	rows := make([][]interface{}, 0, len(days))
	for _, d := range days {
		weekend := "Não"
		if d.IsWeekend {
			weekend = "Sim"
		}
		rows = append(rows, []interface{}{d.Date, d.Weekday, weekend, d.Hours, d.TaskCount, d.AvgTaskHours})
	}
	return rows
}

func millisToDate(raw string) string {
	if t, ok := ParseMillis(raw); ok {
		return DateKey(t)
	}
	return ""
}

func (g *ExcelGenerator) writeRows(f *excelize.File, sheet string, headers []string, headerStyle int, rows [][]interface{}) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (g *ExcelGenerator) headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
}
