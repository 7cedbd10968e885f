// Package export renders payout, motivation, and profit tables as XLSX
// workbooks for the accounting side.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"fieldline/internal/domain"
)

func newSheet(name string, headers []any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(name, "A1", &headers); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(name, "A1", lastCol+"1", style); err != nil {
		return nil, err
	}
	return f, nil
}

func appendRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// MotivationWorkbook builds the monthly engineer motivation sheet.
func MotivationWorkbook(month string, rows []domain.EngineerMotivation) (*excelize.File, error) {
	sheet := fmt.Sprintf("Мотивация %s", month)
	f, err := newSheet(sheet, []any{
		"Инженер", "Отчётов", "Первичных", "Повторов",
		"Сумма заказов", "Сумма повторов", "Валовая прибыль",
		"Средний чек", "Мотивация %", "Мотивация", "Агрегатору",
	})
	if err != nil {
		return nil, err
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.EngineerName, r.ReportsCount, r.PrimaryOrdersCount, r.RepeatOrdersCount,
			r.OrdersTotalAmount, r.RepeatOrdersAmount, r.GrossProfit,
			r.AverageCheck, r.MotivationPercent, r.TotalMotivationAmount, r.AggregatorPayout,
		})
	}
	if err := appendRows(f, sheet, data); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "E", "K", 16); err != nil {
		return nil, err
	}
	return f, nil
}

// PayoutWorkbook builds the engineer payout balance sheet.
func PayoutWorkbook(rows []domain.EngineerPayout) (*excelize.File, error) {
	sheet := "Выплаты СИ"
	f, err := newSheet(sheet, []any{
		"ФИО", "Месяц", "Зарплата", "Аванс", "Выплачено", "Остаток", "Итого",
	})
	if err != nil {
		return nil, err
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.FirstName + " " + r.SecondName, r.Month,
			r.Salary, r.Advance, r.PaidAdvance, r.Left, r.Total,
		})
	}
	if err := appendRows(f, sheet, data); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return nil, err
	}
	return f, nil
}

// ProfitWorkbook builds the net-profit sheet for a date range.
func ProfitWorkbook(rows []domain.ProfitRow) (*excelize.File, error) {
	sheet := "Прибыль"
	f, err := newSheet(sheet, []any{"Дата", "Наша прибыль, ₽"})
	if err != nil {
		return nil, err
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{r.Period, r.NetProfit})
	}
	if err := appendRows(f, sheet, data); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "B", 18); err != nil {
		return nil, err
	}
	return f, nil
}
