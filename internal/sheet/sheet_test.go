package sheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"visitor-management-backend/internal/model"
)

func sampleVisitors() []model.Visitor {
	return []model.Visitor{
		{
			ID: "1-a", CardNo: "A1", Name: "Jane Doe", Phone: "555-0101",
			CompanyName: "Acme", ToMeet: "HR", Purpose: "Interview",
			InTime: "2024-01-01T10:00:00Z", OutTime: "2024-01-01T12:30:00Z",
		},
		{
			ID: "2-b", CardNo: "B2", Name: "Li Wei", Phone: "",
			CompanyName: "Globex", ToMeet: "IT", Purpose: "Audit",
			InTime: "2024-01-02T09:00:00Z",
		},
	}
}

func TestExport_EmptySubset(t *testing.T) {
	_, err := Export(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestExport_Layout(t *testing.T) {
	data, err := Export(sampleVisitors())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetName, f.GetSheetName(0))

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "A1", rows[1][0])
	assert.Equal(t, "Jane Doe", rows[1][1])
	// The duration column is computed at export time.
	assert.Equal(t, "2h 30m", rows[1][8])
	// A visitor still present exports an empty checkout and duration.
	assert.Equal(t, "B2", rows[2][0])
	assert.Len(t, rows[2], 7) // trailing empty cells are trimmed by the reader
}

func TestImport_RoundTrip(t *testing.T) {
	original := sampleVisitors()

	data, err := Export(original)
	require.NoError(t, err)

	imported, err := Import(data)
	require.NoError(t, err)
	require.Len(t, imported, len(original))

	for i, v := range imported {
		// Ids do not round-trip; the data tuple does.
		assert.Empty(t, v.ID)
		assert.Equal(t, original[i].CardNo, v.CardNo)
		assert.Equal(t, original[i].Name, v.Name)
		assert.Equal(t, original[i].Phone, v.Phone)
		assert.Equal(t, original[i].CompanyName, v.CompanyName)
		assert.Equal(t, original[i].ToMeet, v.ToMeet)
		assert.Equal(t, original[i].Purpose, v.Purpose)
		assert.Equal(t, original[i].InTime, v.InTime)
		assert.Equal(t, original[i].OutTime, v.OutTime)
	}
}

func TestImport_HeaderOnly(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), SheetName))
	require.NoError(t, f.SetSheetRow(SheetName, "A1", &Headers))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = Import(buf.Bytes())
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestImport_NotAWorkbook(t *testing.T) {
	_, err := Import([]byte("this is not a spreadsheet"))
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestImport_ShortRows(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), SheetName))
	require.NoError(t, f.SetSheetRow(SheetName, "A1", &Headers))
	short := []any{"A1", "Jane Doe"}
	require.NoError(t, f.SetSheetRow(SheetName, "A2", &short))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	imported, err := Import(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, "A1", imported[0].CardNo)
	assert.Equal(t, "Jane Doe", imported[0].Name)
	assert.Empty(t, imported[0].CompanyName)
	assert.Empty(t, imported[0].OutTime)
}
