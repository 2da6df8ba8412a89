// Package output provides utilities for rendering installment plans.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/installment-plan/internal/plan"
	"github.com/iwvelando/installment-plan/pkg/constants"
	"github.com/iwvelando/installment-plan/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders result in the named format. xlsx output is binary and should
// go to a file or an HTTP response.
func Write(w io.Writer, outputFormat string, result plan.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return Pretty(w, result)
	case constants.OutputFormatCSV:
		return CSV(w, result)
	case constants.OutputFormatJSON:
		return JSON(w, result)
	case constants.OutputFormatXLSX:
		return XLSX(w, result)
	default:
		return fmt.Errorf("unsupported output format %s", outputFormat)
	}
}

// Pretty outputs a human-readable rather than machine-readable table.
func Pretty(w io.Writer, result plan.Result) error {
	p := message.NewPrinter(language.English)

	lines := []string{
		fmt.Sprintf("--- Installment plan with %s ---\n", result.BankName),
		fmt.Sprintf("Purchase amount: %s\n", format.Currency(result.OriginalAmount)),
		fmt.Sprintf("Interest rate:   %s\n", format.Percent(result.InterestRate)),
		fmt.Sprintf("Total to pay:    %s\n", format.Currency(result.TotalAmount)),
		p.Sprintf("Monthly payment: %s x %d months\n", format.Currency(result.MonthlyPayment), result.TermMonths),
		"\n",
		"#  | Due date   | Amount       | Accumulated\n",
		"__ | __________ | ____________ | ___________\n",
	}
	for _, item := range result.Schedule {
		lines = append(lines, p.Sprintf("%-2d | %s | %12s | %s\n",
			item.InstallmentNumber,
			item.DueDate.Format(constants.DateLayout),
			format.Currency(item.Amount),
			format.Currency(item.Accumulated),
		))
	}

	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// CSV outputs the schedule in comma-separated value format.
func CSV(w io.Writer, result plan.Result) error {
	writer := csv.NewWriter(w)
	records := [][]string{{"installment", "due date", "amount", "accumulated"}}
	for _, item := range result.Schedule {
		records = append(records, []string{
			strconv.Itoa(item.InstallmentNumber),
			item.DueDate.Format(constants.DateLayout),
			item.Amount.StringFixed(constants.CurrencyPlaces),
			item.Accumulated.StringFixed(constants.CurrencyPlaces),
		})
	}
	return writer.WriteAll(records)
}

// JSON outputs the full result as indented JSON.
func JSON(w io.Writer, result plan.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
