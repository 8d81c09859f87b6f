package report

import (
	"fmt"
	"strconv"
	"strings"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the report.
const SheetName = "Report"

const (
	expensesField = "Expenses"
	titleField    = "title_on_first_page_of_document"
	notAvailable  = "N/A"
)

var patientFields = []string{"Patient_First_Name", "Patient_Last_Name", "DOB", "Gender", "Policy_Number"}

var documentHeader = []string{"Document #", "Title", "Starting Page", "Ending Page", "Number of Pages"}

var expenseHeader = []string{
	"", "Expense Amount", "Expense Description", "Date", "CPT Code",
	"ICD Code", "Expense Type", "Surgeon/Provider", "Ref Page", "Drug Name",
}

// Spreadsheet renders the bundle as an xlsx workbook: a patient block, then
// one row per document followed by its expense rows.
func Spreadsheet(res *domain.AnalyzeResult) ([]byte, error) {
	contents := res.Result.Contents
	if len(contents) == 0 {
		return nil, apperrors.NewInvalidInputError("analysis result has no documents to export")
	}

	var rows [][]string
	titles := make(map[int]bool)
	add := func(cells ...string) { rows = append(rows, cells) }
	title := func(text string) {
		titles[len(rows)] = true
		add(text)
	}

	patient := findPatient(contents)
	title("PATIENT INFORMATION")
	add("Patient Name:", strings.TrimSpace(patient["Patient_First_Name"]+" "+patient["Patient_Last_Name"]))
	add("DOB", "", "Gender", "", "Policy Number")
	add(patient["DOB"], "", patient["Gender"], "", patient["Policy_Number"])
	add()
	add()

	title("DOCUMENTS FOUND IN BUNDLE")
	add(documentHeader...)
	for i, c := range contents {
		docTitle := notAvailable
		if f, ok := c.Fields[titleField]; ok {
			docTitle = stringOr(f.ValueString, notAvailable)
		}
		add(strconv.Itoa(i+1), docTitle, pageString(c.StartPageNumber), pageString(c.EndPageNumber), pageCount(c))

		if expenses := c.Fields[expensesField].ValueArray; len(expenses) > 0 {
			add(expenseHeader...)
			for _, e := range expenses {
				add(expenseRow(e.ValueObject, c.StartPageNumber)...)
			}
		}
		add()
	}

	data, err := writeWorkbook(rows, titles)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to write spreadsheet", err)
	}
	return data, nil
}

func writeWorkbook(rows [][]string, titles map[int]bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "A", "J", 18); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, err
		}
		if titles[i] {
			if err := f.SetCellStyle(SheetName, cell, cell, bold); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// findPatient returns the patient fields of the first document that has any.
func findPatient(contents []domain.ContentItem) map[string]string {
	out := make(map[string]string, len(patientFields))
	for _, c := range contents {
		found := false
		for _, name := range patientFields {
			if _, ok := c.Fields[name]; ok {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		for _, name := range patientFields {
			out[name] = c.Fields[name].ValueString
		}
		break
	}
	return out
}

func expenseRow(obj map[string]domain.FieldValue, startPage *int) []string {
	row := []string{""}

	amount := obj["Expense_Amount"]
	if amount.Type == "number" && amount.ValueNumber != nil {
		row = append(row, fmt.Sprintf("$%.2f", *amount.ValueNumber))
	} else {
		row = append(row, notAvailable)
	}

	row = append(row, stringOr(obj["Expense_Description"].ValueString, notAvailable))

	date := obj["Date"]
	if date.Type == "date" {
		row = append(row, stringOr(date.ValueDate, notAvailable))
	} else {
		row = append(row, stringOr(date.ValueString, notAvailable))
	}

	for _, name := range []string{"CPT_Code", "ICD_Code", "Expense_Type", "Surgeon_Name_or_Provider"} {
		row = append(row, stringOr(obj[name].ValueString, notAvailable))
	}

	// Ref_Page is relative to the document; report it relative to the bundle.
	ref := obj["Ref_Page"]
	if ref.Type == "number" && ref.ValueNumber != nil {
		page := int(*ref.ValueNumber)
		if startPage != nil {
			page += *startPage - 1
		}
		row = append(row, strconv.Itoa(page))
	} else {
		row = append(row, notAvailable)
	}

	return append(row, stringOr(obj["Drug_Name"].ValueString, notAvailable))
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
