package xlsxrender

import (
	"bytes"
	"testing"
	"time"

	"github.com/diewo77/proposal-desk/internal/document"
	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRender(t *testing.T) {
	doc := document.BuildProposal(models.Proposal{
		Name:       "Kitchen",
		ClientName: "Jane Doe",
		Categories: []models.Category{{Name: "Flooring", Elements: []models.Element{
			{Name: "Oak Plank", MaterialCost: 120, LaborCost: 80},
		}}},
		Variables: []models.Variable{{Name: "Doors", Category: models.Count, Value: 3}},
	}, time.Now())

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, doc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(CostSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Category", "Element", "Material Cost", "Labor Cost", "Total"}, rows[0])
	assert.Equal(t, []string{"Flooring", "Oak Plank", "120", "80", "200"}, rows[1])
	assert.Equal(t, "Category Total", rows[2][1])
	assert.Equal(t, "200", rows[2][4])
	assert.Equal(t, "Grand Total", rows[5][0])

	vars, err := f.GetRows(VariableSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Count", "Doors", "3"}, vars[1])
}

func TestRender_NoVariablesSheet(t *testing.T) {
	doc := document.BuildProposal(models.Proposal{Name: "Empty"}, time.Now())
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, doc))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{CostSheet}, f.GetSheetList())
}
