package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	tables := []Table{
		{
			Name:    "summary",
			Headers: []string{"metric", "value"},
			Rows:    [][]string{{"trip_count", "1234"}},
		},
		sampleTable(),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, tables))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"summary", "top-zones"}, f.GetSheetList())

	metric, err := f.GetCellValue("summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "trip_count", metric)

	header, err := f.GetCellValue("top-zones", "A1")
	require.NoError(t, err)
	assert.Equal(t, "pickup_zone", header)

	zone, err := f.GetCellValue("top-zones", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Upper East Side North", zone)
}

func TestWriteWorkbook_NoTables(t *testing.T) {
	var buf bytes.Buffer

	err := WriteWorkbook(&buf, nil)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
