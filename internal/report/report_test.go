package report

import (
	"bytes"
	"strings"
	"testing"

	apperrors "doc-intel-pipeline/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const bundlePayload = `{
  "id": "op-1",
  "status": "Succeeded",
  "result": {
    "contents": [
      {
        "category": "Insurance Claim Form",
        "startPageNumber": 1,
        "endPageNumber": 2,
        "fields": {
          "Patient_First_Name": {"type": "string", "valueString": "Ada"},
          "Patient_Last_Name": {"type": "string", "valueString": "Lovelace"},
          "DOB": {"type": "string", "valueString": "1815-12-10"},
          "Policy_Number": {"type": "string", "valueString": "P-123"}
        }
      },
      {
        "category": "Billing Statement",
        "startPageNumber": 3,
        "endPageNumber": 5,
        "fields": {
          "title_on_first_page_of_document": {"type": "string", "valueString": "Itemized Bill"},
          "Expenses": {
            "type": "array",
            "valueArray": [
              {"type": "object", "valueObject": {
                "Expense_Amount": {"type": "number", "valueNumber": 120.5},
                "Expense_Description": {"type": "string", "valueString": "X-ray"},
                "Date": {"type": "date", "valueDate": "2024-03-01"},
                "Ref_Page": {"type": "number", "valueNumber": 2}
              }},
              {"type": "object", "valueObject": {
                "Expense_Amount": {"type": "string", "valueString": "unreadable"}
              }}
            ]
          }
        }
      },
      {
        "category": "",
        "fields": {}
      }
    ]
  }
}`

func decodeBundle(t *testing.T) []byte {
	t.Helper()
	return []byte(bundlePayload)
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))
}

func TestSummary(t *testing.T) {
	res, err := Decode(decodeBundle(t))
	require.NoError(t, err)

	out := Summary(res)
	lines := strings.Split(out, "\n")

	assert.Equal(t, "DOCUMENT BUNDLE SUMMARY", lines[0])
	assert.Contains(t, out, "Total documents found: 3")
	// The last document has no page numbers.
	assert.Contains(t, out, "Total pages in bundle: ?")
	assert.Contains(t, out, "Total expenses found across all documents: 2")

	var rows []string
	for _, l := range lines {
		if len(l) > 0 && l[0] >= '1' && l[0] <= '9' {
			rows = append(rows, strings.Join(strings.Fields(l), " "))
		}
	}
	assert.Equal(t, []string{
		"1 Insurance Claim Form 1-2 4",
		"2 Billing Statement 3-5 2 (+2 expenses)",
		"3 Unknown ? 0",
	}, rows)
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestSpreadsheet(t *testing.T) {
	res, err := Decode(decodeBundle(t))
	require.NoError(t, err)

	data, err := Spreadsheet(res)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	records, err := f.GetRows(SheetName)
	require.NoError(t, err)

	assert.Equal(t, []string{"PATIENT INFORMATION"}, records[0])
	assert.Equal(t, []string{"Patient Name:", "Ada Lovelace"}, records[1])
	assert.Equal(t, []string{"1815-12-10", "", "", "", "P-123"}, records[3])

	find := func(first string) int {
		for i, rec := range records {
			if len(rec) > 0 && rec[0] == first {
				return i
			}
		}
		return -1
	}

	docHeader := find("Document #")
	require.NotEqual(t, -1, docHeader)
	assert.Equal(t, []string{"1", "N/A", "1", "2", "2"}, records[docHeader+1])
	assert.Equal(t, []string{"2", "Itemized Bill", "3", "5", "3"}, records[docHeader+2])
	assert.Equal(t, "Expense Amount", records[docHeader+3][1])
	assert.Equal(t,
		[]string{"", "$120.50", "X-ray", "2024-03-01", "N/A", "N/A", "N/A", "N/A", "4", "N/A"},
		records[docHeader+4])
	assert.Equal(t, "N/A", records[docHeader+5][1])
	assert.Equal(t, []string{"3", "N/A", "?", "?", "?"}, records[docHeader+6])

	style, err := f.GetCellStyle(SheetName, "A1")
	require.NoError(t, err)
	assert.NotZero(t, style)
}

func TestSpreadsheet_NoContents(t *testing.T) {
	res, err := Decode([]byte(`{"status":"Succeeded","result":{"contents":[]}}`))
	require.NoError(t, err)

	_, err = Spreadsheet(res)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))
}
