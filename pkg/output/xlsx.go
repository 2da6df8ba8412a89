package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/installment-plan/internal/plan"
	"github.com/iwvelando/installment-plan/pkg/constants"
	"github.com/iwvelando/installment-plan/pkg/format"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	scheduleSheet = "Schedule"
	moneyFormat   = "#,##0.00"
)

// XLSX writes a printable workbook with a summary sheet and the payment
// schedule.
func XLSX(w io.Writer, result plan.Result) error {
	f, err := Workbook(result)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Workbook builds the spreadsheet for result. The caller must Close it.
func Workbook(result plan.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	// NewFile starts with "Sheet1"; rename it rather than leave it empty.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeSummary(f, result); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write summary sheet: %w", err)
	}

	index, err := f.NewSheet(scheduleSheet)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeSchedule(f, result); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write schedule sheet: %w", err)
	}
	f.SetActiveSheet(index)

	return f, nil
}

func writeSummary(f *excelize.File, result plan.Result) error {
	rows := [][]interface{}{
		{"Bank", result.BankName},
		{"Purchase amount", result.OriginalAmount.InexactFloat64()},
		{"Interest rate", format.Percent(result.InterestRate)},
		{"Total to pay", result.TotalAmount.InexactFloat64()},
		{"Months", result.TermMonths},
		{"Monthly payment", result.MonthlyPayment.InexactFloat64()},
		{"Purchase date", result.ReferenceDate.Format(constants.DateLayout)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return err
	}
	for _, cell := range []string{"B2", "B4", "B6"} {
		if err := f.SetCellStyle(summarySheet, cell, cell, style); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 18)
}

func writeSchedule(f *excelize.File, result plan.Result) error {
	headers := []string{"Installment", "Due date", "Amount", "Accumulated"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(scheduleSheet, cell, header); err != nil {
			return err
		}
	}

	for i, item := range result.Schedule {
		row := i + 2
		values := []interface{}{
			item.InstallmentNumber,
			item.DueDate.Format(constants.DateLayout),
			item.Amount.InexactFloat64(),
			item.Accumulated.InexactFloat64(),
		}
		if err := f.SetSheetRow(scheduleSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
	}

	if len(result.Schedule) > 0 {
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
		if err != nil {
			return err
		}
		last := fmt.Sprintf("D%d", len(result.Schedule)+1)
		if err := f.SetCellStyle(scheduleSheet, "C2", last, style); err != nil {
			return err
		}
	}
	return f.SetColWidth(scheduleSheet, "A", "D", 14)
}

func strPtr(s string) *string {
	return &s
}
