// Package csvcodec converts customer rosters to and from CSV text.
//
// Decoding is deliberately forgiving: it never returns an error. Unknown or
// malformed values fall back to defaults, and the anomalies are reported in
// Diagnostics instead.
package csvcodec

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"nexatel-customer-analytics/customer"
)

type field int

const (
	fieldID field = iota
	fieldTenure
	fieldMonthlyCharges
	fieldTotalCharges
	fieldChurn
	fieldContract
	fieldUsageGB
	fieldLastActivity
	fieldCLV
	fieldRFMScore
	fieldSegment
	fieldCount
)

var fieldNames = [fieldCount]string{
	fieldID:             "id",
	fieldTenure:         "tenure",
	fieldMonthlyCharges: "monthlyCharges",
	fieldTotalCharges:   "totalCharges",
	fieldChurn:          "churn",
	fieldContract:       "contract",
	fieldUsageGB:        "usageGB",
	fieldLastActivity:   "lastActivityDate",
	fieldCLV:            "clv",
	fieldRFMScore:       "rfmScore",
	fieldSegment:        "segment",
}

// Accepted header names per field, highest priority first. Headers are
// compared after normalizeHeader.
var synonyms = [fieldCount][]string{
	fieldID:             {"customer id", "id"},
	fieldTenure:         {"tenure", "tenure (months)"},
	fieldMonthlyCharges: {"monthly charges", "monthly"},
	fieldTotalCharges:   {"total charges", "total"},
	fieldChurn:          {"churn", "churned"},
	fieldContract:       {"contract type", "contract"},
	fieldUsageGB:        {"usage (gb)", "usage"},
	fieldLastActivity:   {"last activity", "lastactivitydate"},
	fieldCLV:            {"clv"},
	fieldRFMScore:       {"rfm score"},
	fieldSegment:        {"segment"},
}

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// Diagnostics summarizes how much of an import had to be filled in.
type Diagnostics struct {
	Rows int `json:"rows"`
	// Defaulted counts absent values per field that received a default or a
	// backfilled placeholder.
	Defaulted map[string]int `json:"defaulted"`
	// Coerced counts present values per field that could not be used as
	// given: unparseable or negative numbers, unknown contract terms.
	Coerced map[string]int `json:"coerced"`
}

// Clean reports whether every value was taken from the input unchanged.
func (d Diagnostics) Clean() bool {
	return len(d.Defaulted) == 0 && len(d.Coerced) == 0
}

func newDiagnostics() Diagnostics {
	return Diagnostics{Defaulted: map[string]int{}, Coerced: map[string]int{}}
}

func (d *Diagnostics) defaulted(f field) {
	d.Defaulted[fieldNames[f]]++
}

func (d *Diagnostics) coerced(f field) {
	d.Coerced[fieldNames[f]]++
}

// optional is a raw cell value; ok is false when no synonym column held a
// non-empty value for the row. synonym is the position in the field's
// synonym list of the header the value came from.
type optional struct {
	value   string
	synonym int
	ok      bool
}

// rawCustomer is a row resolved through the synonym table but not yet typed.
type rawCustomer [fieldCount]optional

// column is a header position matched by a synonym.
type column struct {
	index   int
	synonym int
}

// layout maps each field to the header positions of its synonyms, in
// priority order.
type layout [fieldCount][]column

func newLayout(headers []string) layout {
	var l layout
	for f := field(0); f < fieldCount; f++ {
		for s, name := range synonyms[f] {
			for idx, header := range headers {
				if header == name {
					l[f] = append(l[f], column{index: idx, synonym: s})
				}
			}
		}
	}
	return l
}

func (l layout) resolve(values []string) rawCustomer {
	var raw rawCustomer
	for f := field(0); f < fieldCount; f++ {
		for _, col := range l[f] {
			if v := getValue(values, col.index); v != "" {
				raw[f] = optional{value: v, synonym: col.synonym, ok: true}
				break
			}
		}
	}
	return raw
}

// Decode parses CSV text into customers. The first non-blank line is the
// header row. Fewer than two non-blank lines yields an empty result, which
// callers treat as "nothing to import".
func Decode(text string, opts ...Option) ([]customer.Customer, Diagnostics) {
	o := applyOptions(opts)
	diag := newDiagnostics()

	var rows [][]string
	if o.quoted {
		rows = splitQuoted(text)
	} else {
		rows = splitPlain(text)
	}
	if len(rows) < 2 {
		return nil, diag
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}
	l := newLayout(headers)

	out := make([]customer.Customer, 0, len(rows)-1)
	for _, values := range rows[1:] {
		for i := range values {
			values[i] = cleanValue(values[i])
		}
		out = append(out, o.build(l.resolve(values), &diag))
	}
	diag.Rows = len(out)
	return out, diag
}

func (o *options) build(raw rawCustomer, diag *Diagnostics) customer.Customer {
	c := customer.Customer{
		Tenure:         o.intField(raw, fieldTenure, diag),
		MonthlyCharges: o.floatField(raw, fieldMonthlyCharges, diag),
		TotalCharges:   o.floatField(raw, fieldTotalCharges, diag),
		UsageGB:        o.intField(raw, fieldUsageGB, diag),
	}

	if raw[fieldID].ok {
		c.ID = raw[fieldID].value
	} else {
		c.ID = o.backfill.ID()
		diag.defaulted(fieldID)
	}

	// "true" is only honored in a column named churn.
	if v := raw[fieldChurn]; v.ok {
		c.Churn = strings.EqualFold(v.value, "yes") || (v.synonym == 0 && v.value == "true")
	}

	c.Contract = customer.MonthToMonth
	if v := raw[fieldContract]; !v.ok {
		diag.defaulted(fieldContract)
	} else if contract, known := customer.ParseContract(v.value); known {
		c.Contract = contract
	} else {
		diag.coerced(fieldContract)
	}

	if v := raw[fieldLastActivity]; v.ok {
		c.LastActivityDate = v.value
	} else {
		c.LastActivityDate = o.now().Format(customer.DateLayout)
		diag.defaulted(fieldLastActivity)
	}

	if clv := o.floatField(raw, fieldCLV, diag); clv != 0 {
		c.CLV = clv
	} else {
		c.CLV = o.backfill.CLV(c.TotalCharges)
		if n, ok := parseFloat(raw[fieldCLV].value); raw[fieldCLV].ok && ok && n == 0 {
			diag.defaulted(fieldCLV)
		}
	}

	if score := o.intField(raw, fieldRFMScore, diag); score != 0 {
		c.RFMScore = score
	} else {
		c.RFMScore = o.backfill.RFMScore()
		if n, ok := parseInt(raw[fieldRFMScore].value); raw[fieldRFMScore].ok && ok && n == 0 {
			diag.defaulted(fieldRFMScore)
		}
	}

	if v := raw[fieldSegment]; v.ok {
		c.Segment = v.value
	} else {
		c.Segment = customer.SegmentGeneral
		diag.defaulted(fieldSegment)
	}
	return c
}

func (o *options) floatField(raw rawCustomer, f field, diag *Diagnostics) float64 {
	v := raw[f]
	if !v.ok {
		diag.defaulted(f)
		return 0
	}
	n, ok := parseFloat(v.value)
	if !ok || n < 0 {
		diag.coerced(f)
		return 0
	}
	return n
}

func (o *options) intField(raw rawCustomer, f field, diag *Diagnostics) int {
	v := raw[f]
	if !v.ok {
		diag.defaulted(f)
		return 0
	}
	n, ok := parseInt(v.value)
	if !ok || n < 0 {
		diag.coerced(f)
		return 0
	}
	return n
}

// parseFloat reads the longest numeric prefix of value, so "42.5GB" is 42.5.
func parseFloat(value string) (float64, bool) {
	m := floatPrefix.FindString(value)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseInt reads the leading integer of value, so "12.7" is 12.
func parseInt(value string) (int, bool) {
	m := intPrefix.FindString(value)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitPlain(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, ","))
	}
	return rows
}

func splitQuoted(text string) [][]string {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			continue
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}
	return rows
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func normalizeHeader(value string) string {
	return strings.ToLower(cleanValue(value))
}

// cleanValue trims whitespace and drops every quote character.
func cleanValue(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, `"`, "")
	return strings.ReplaceAll(value, "'", "")
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
