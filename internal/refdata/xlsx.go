package refdata

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/steelfab-ops/fitpo/internal/model"
)

// itemColumns is the expected column order of a PR line-item workbook
// export: material no, representative PR no, description, attribute group,
// grade, type code, fabricator, paint code.
const itemColumns = 8

// LoadItemsXLSX reads PR line items from the first sheet of an XLSX
// workbook, skipping the header row. Blank rows are ignored.
func LoadItemsXLSX(path string) ([]model.PRLineItem, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("refdata: xlsx has no sheets")
	}

	var items []model.PRLineItem
	for i, row := range f.Sheets[0].Rows {
		if i == 0 {
			continue // header
		}
		cells := rowToStrings(row)
		if len(cells) < itemColumns || cells[0] == "" {
			continue
		}
		items = append(items, model.PRLineItem{
			MaterialNo:     cells[0],
			PRNo:           cells[1],
			Description:    cells[2],
			AttributeGroup: cells[3],
			Grade:          cells[4],
			TypeCode:       cells[5],
			Fabricator:     cells[6],
			PaintCode:      cells[7],
		})
	}

	return items, nil
}

func rowToStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = strings.TrimSpace(c.String())
	}
	return out
}
