package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReport_Add(t *testing.T) {
	r := NewReport("Key Points", "Summary")
	r.Add("a.pdf", []string{"Key Points", "Summary"}, []string{"kp", "sum"})

	require.Equal(t, 1, r.Len())
	assert.Equal(t, []string{"Filename", "Key Points", "Summary"}, r.Columns())
	assert.Equal(t, Row{"Filename": "a.pdf", "Key Points": "kp", "Summary": "sum"}, r.Rows()[0])
}

func TestReport_AddZipsShorter(t *testing.T) {
	r := NewReport("A", "B")

	r.Add("short.pdf", []string{"A", "B"}, []string{"only one"})
	r.Add("long.pdf", []string{"A", "B"}, []string{"1", "2", "3"})

	assert.Equal(t, []string{"short.pdf", "only one", ""}, r.Values(0))
	assert.Equal(t, []string{"long.pdf", "1", "2"}, r.Values(1))
	assert.Len(t, r.Columns(), 3)
}

func TestReport_ColumnsFirstSeen(t *testing.T) {
	r := NewReport()
	r.Add("a.pdf", []string{"X"}, []string{"x"})
	r.Add("b.pdf", []string{"Y", "X"}, []string{"y", "x2"})

	assert.Equal(t, []string{"Filename", "X", "Y"}, r.Columns())
	assert.Equal(t, []string{"b.pdf", "x2", "y"}, r.Values(1))
}

func TestWriteXLSX_SingleSheetWithHeader(t *testing.T) {
	r := NewReport("Key Points", "Summary")
	r.Add("a.pdf", []string{"Key Points", "Summary"}, []string{"- p1\n- p2", "short"})
	r.Add("b.pdf", []string{"Key Points", "Summary"}, []string{"kp"})

	b, err := WriteXLSX(r)
	require.NoError(t, err)

	f, err := excelize.OpenReader(strings.NewReader(string(b)))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.Len(t, f.GetSheetList(), 1)
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Filename", "Key Points", "Summary"}, rows[0])
	assert.Equal(t, []string{"a.pdf", "- p1\n- p2", "short"}, rows[1])
	assert.Equal(t, []string{"b.pdf", "kp"}, rows[2])
}

func TestWriteXLSX_EmptyReport(t *testing.T) {
	b, err := WriteXLSX(NewReport("Summary"))
	require.NoError(t, err)

	back, err := ReadXLSX(b)
	require.NoError(t, err)
	assert.Equal(t, 0, back.Len())
	assert.Equal(t, []string{"Filename", "Summary"}, back.Columns())
}

func TestXLSX_RoundTrip(t *testing.T) {
	titles := []string{"Key Points", "Named Entities", "Summary"}
	r := NewReport(titles...)
	r.Add("one.pdf", titles, []string{"a", "People: Alice", "s1"})
	r.Add("two.pdf", titles, []string{"b", "", "s2"})
	r.Add("three.pdf", titles, []string{"c"})

	b, err := WriteXLSX(r)
	require.NoError(t, err)
	back, err := ReadXLSX(b)
	require.NoError(t, err)

	assert.Equal(t, r.Len(), back.Len())
	assert.Equal(t, r.Columns(), back.Columns())
	for i := 0; i < r.Len(); i++ {
		assert.Equal(t, r.Values(i), back.Values(i))
	}
}

func TestWriteXLSX_ClipsOversizedCells(t *testing.T) {
	r := NewReport("Summary")
	r.Add("big.pdf", []string{"Summary"}, []string{strings.Repeat("x", maxCellChars+10)})

	b, err := WriteXLSX(r)
	require.NoError(t, err)
	back, err := ReadXLSX(b)
	require.NoError(t, err)
	assert.Len(t, back.Values(0)[1], maxCellChars)
}

func TestReadXLSX_Rejects(t *testing.T) {
	_, err := ReadXLSX([]byte("not a workbook"))
	assert.Error(t, err)

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	_, err = ReadXLSX(buf.Bytes())
	assert.Error(t, err)
}

func TestReport_Append(t *testing.T) {
	acc := NewReport("A")
	acc.Add("one.pdf", []string{"A"}, []string{"1"})

	next := NewReport("A", "B")
	next.Add("two.pdf", []string{"A", "B"}, []string{"2", "b"})
	acc.Append(next)

	assert.Equal(t, 2, acc.Len())
	assert.Equal(t, []string{"Filename", "A", "B"}, acc.Columns())
	assert.Equal(t, []string{"one.pdf", "1", ""}, acc.Values(0))
	assert.Equal(t, []string{"two.pdf", "2", "b"}, acc.Values(1))
}
