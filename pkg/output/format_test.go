package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/installment-plan/internal/catalog"
	"github.com/iwvelando/installment-plan/internal/plan"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func testResult(t *testing.T) plan.Result {
	t.Helper()
	calc := plan.NewCalculator(catalog.Default())
	result, err := calc.ComputeForBank(decimal.RequireFromString("6000"), "banco1",
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("failed to compute plan: %v", err)
	}
	return result
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, testResult(t)); err != nil {
		t.Fatalf("Pretty() error = %v", err)
	}
	output := buf.String()

	expected := []string{
		"--- Installment plan with Banco1 ---",
		"Purchase amount: $6,000.00",
		"Interest rate:   8%",
		"Total to pay:    $6,480.00",
		"Monthly payment: $720.00 x 9 months",
		"#  | Due date   | Amount       | Accumulated",
		"2025-02-28",
		"2025-10-31",
		"$6,480.00",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("Pretty() output missing %q\n%s", want, output)
		}
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, testResult(t)); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV output: %v", err)
	}
	if len(records) != 10 {
		t.Fatalf("expected header plus 9 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "installment,due date,amount,accumulated" {
		t.Errorf("unexpected header %v", records[0])
	}
	if strings.Join(records[1], ",") != "1,2025-02-28,720.00,720.00" {
		t.Errorf("unexpected first row %v", records[1])
	}
	if strings.Join(records[9], ",") != "9,2025-10-31,720.00,6480.00" {
		t.Errorf("unexpected last row %v", records[9])
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, testResult(t)); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var decoded plan.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode JSON output: %v", err)
	}
	if decoded.BankName != "Banco1" || len(decoded.Schedule) != 9 {
		t.Errorf("unexpected decoded result %+v", decoded)
	}
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := XLSX(&buf, testResult(t)); err != nil {
		t.Fatalf("XLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != summarySheet || sheets[1] != scheduleSheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	bank, err := f.GetCellValue(summarySheet, "B1")
	if err != nil || bank != "Banco1" {
		t.Errorf("summary bank = %q (%v), expected Banco1", bank, err)
	}

	rows, err := f.GetRows(scheduleSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("expected header plus 9 rows, got %d", len(rows))
	}
	if rows[0][0] != "Installment" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[9][1] != "2025-10-31" {
		t.Errorf("unexpected last due date %v", rows[9])
	}
}

func TestWrite(t *testing.T) {
	result := testResult(t)

	for _, outputFormat := range []string{"pretty", "csv", "json", "xlsx"} {
		t.Run(outputFormat, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, outputFormat, result); err != nil {
				t.Fatalf("Write(%s) error = %v", outputFormat, err)
			}
			if buf.Len() == 0 {
				t.Errorf("Write(%s) produced no output", outputFormat)
			}
		})
	}

	if err := Write(&bytes.Buffer{}, "xml", result); err == nil {
		t.Errorf("Write(xml) expected error but got none")
	}
}
