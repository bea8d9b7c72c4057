package csvcodec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"nexatel-customer-analytics/customer"
)

// ExportContentType is the MIME type of exported files.
const ExportContentType = "text/csv"

var exportHeaders = []string{
	"Customer ID",
	"Tenure (Months)",
	"Monthly Charges",
	"Total Charges",
	"Contract Type",
	"Usage (GB)",
	"Last Activity",
	"CLV",
	"Segment",
	"Churned",
}

// Encode renders records in the export column order. Contract and segment
// are wrapped in double quotes; no other field is quoted or escaped. Rows are
// separated by "\n" without a trailing newline. An empty roster encodes to
// the empty string.
func Encode(records []customer.Customer) string {
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Join(exportHeaders, ","))
	for _, c := range records {
		b.WriteByte('\n')
		b.WriteString(strings.Join(encodeRow(c), ","))
	}
	return b.String()
}

func encodeRow(c customer.Customer) []string {
	churned := "No"
	if c.Churn {
		churned = "Yes"
	}
	return []string{
		c.ID,
		strconv.Itoa(c.Tenure),
		formatNumber(c.MonthlyCharges),
		formatNumber(c.TotalCharges),
		`"` + string(c.Contract) + `"`,
		strconv.Itoa(c.UsageGB),
		c.LastActivityDate,
		formatNumber(c.CLV),
		`"` + c.Segment + `"`,
		churned,
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Write encodes records to w. Nothing is written for an empty roster.
func Write(w io.Writer, records []customer.Customer) error {
	if len(records) == 0 {
		return nil
	}
	_, err := io.WriteString(w, Encode(records))
	return err
}

// ExportFilename names the export file for the date of now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("NexaTel_Export_%s.csv", now.Format(customer.DateLayout))
}

// Export writes the encoded roster to dir under ExportFilename and returns
// the file path. An empty roster produces no file and an empty path.
func Export(dir string, records []customer.Customer, now func() time.Time) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(now()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	if err := Write(file, records); err != nil {
		file.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	return path, nil
}
