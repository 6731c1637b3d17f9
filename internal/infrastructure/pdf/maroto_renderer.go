// Package pdf renders delivery notes (расходные накладные) with Maroto v2.
//
// A4 page layout:
//
//	┌─────────────────────────────────────────────┐
//	│  Накладная №INV-YYYYMMDD-NNNN               │
//	│  Дата создания / Создал                     │
//	│  ─────────────────────────────────────────  │
//	│  ТАБЛИЦА: № | Артикул | Наименование |      │
//	│           Кол-во | Цена | Сумма             │
//	│  ─────────────────────────────────────────  │
//	│  ИТОГО                                      │
//	│  Отпустил: ____   Получил: ____             │
//	└─────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/skladpro/warehouse-api/internal/application/billing"
)

var (
	colorDark = &props.Color{Red: 33, Green: 37, Blue: 41}
	colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoRenderer implements billing.DocumentRenderer using Maroto v2.
type MarotoRenderer struct{}

// NewMarotoRenderer builds the renderer.
func NewMarotoRenderer() *MarotoRenderer { return &MarotoRenderer{} }

// Render produces the PDF bytes for a delivery note.
func (r *MarotoRenderer) Render(_ context.Context, doc billing.Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Накладная "+doc.Number, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(titleRow(doc))
	m.AddRows(metaRows(doc)...)
	m.AddRows(line.NewRow(3, props.Line{Color: colorDark, Thickness: 0.4}))

	m.AddRows(tableHeaderRow())
	for _, lr := range lineRows(doc.Lines) {
		m.AddRows(lr)
	}

	m.AddRows(line.NewRow(2, props.Line{Color: colorDark, Thickness: 0.3}))
	m.AddRows(totalRow(doc))

	m.AddRows(line.NewRow(8))
	m.AddRows(signatureRow())

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return out.GetBytes(), nil
}

// titleRow: "Накладная №{number}" centered on top.
func titleRow(doc billing.Document) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("Накладная №"+doc.Number, props.Text{
				Style: fontstyle.Bold, Size: 15, Align: align.Center,
				Color: colorDark, Top: 1,
			}),
		),
	)
}

// metaRows: creation timestamp and the user who issued the note.
func metaRows(doc billing.Document) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("Дата создания: "+doc.CreatedAt.Format("02.01.2006 15:04"), props.Text{
				Size: 9, Color: colorGray, Top: 1,
			}),
		)),
	}
	if doc.CreatorName != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Создал: "+doc.CreatorName, props.Text{
				Size: 9, Color: colorGray, Top: 1,
			}),
		)))
	}
	return rows
}

// tableHeaderRow: column headers of the line-item table.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: a,
			Color: colorDark, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(9).Add(
		h("№", 1, align.Center),
		h("Артикул", 2, align.Left),
		h("Наименование", 4, align.Left),
		h("Кол-во", 1, align.Center),
		h("Цена", 2, align.Right),
		h("Сумма", 2, align.Right),
	)
}

// lineRows: one row per invoice line, positions numbered from 1.
func lineRows(lines []billing.DocumentLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for i, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				strconv.Itoa(i+1),
				props.Text{Size: 9, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				l.SKU,
				props.Text{Size: 9, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(4).Add(text.New(
				l.Name,
				props.Text{Size: 9, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				strconv.Itoa(l.Quantity),
				props.Text{Size: 9, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				l.UnitPrice.StringFixed(2),
				props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				l.LineTotal.StringFixed(2),
				props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalRow: grand total aligned under the Сумма column.
func totalRow(doc billing.Document) core.Row {
	return row.New(9).Add(
		col.New(8),
		col.New(2).Add(text.New("ИТОГО:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorDark, Right: 2, Top: 1,
		})),
		col.New(2).Add(text.New(doc.GrandTotal.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorDark, Right: 1, Top: 1,
		})),
	)
}

// signatureRow: blanks for the issuing and receiving parties.
func signatureRow() core.Row {
	return row.New(10).Add(
		col.New(6).Add(text.New("Отпустил: ____________________", props.Text{
			Size: 10, Align: align.Left, Top: 2,
		})),
		col.New(6).Add(text.New("Получил: ____________________", props.Text{
			Size: 10, Align: align.Right, Top: 2,
		})),
	)
}
