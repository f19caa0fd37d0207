package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// QuoteLine is one priced row of the rendered document.
type QuoteLine struct {
	Label     string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// QuoteData carries everything the renderer needs. It is a plain value so the
// renderer stays free of storage concerns.
type QuoteData struct {
	CompanyName  string
	CustomerName string
	ProjectName  string
	Version      int
	Status       string
	Lines        []QuoteLine
	Total        decimal.Decimal
	Trial        bool
}

var grey = props.Color{Red: 120, Green: 120, Blue: 120}

// QuotePDF renders one quote version as a PDF byte stream.
func QuotePDF(data QuoteData) ([]byte, error) {
	m := maroto.New()

	m.AddRow(12,
		text.NewCol(8, data.CompanyName, props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(4, fmt.Sprintf("Devis V%d", data.Version), props.Text{Size: 14, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(8, "Client: "+data.CustomerName, props.Text{Size: 10}),
		text.NewCol(4, "Statut: "+data.Status, props.Text{Size: 10, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(12, "Chantier: "+data.ProjectName, props.Text{Size: 10}),
	)
	m.AddRows(line.NewRow(4))

	m.AddRows(lineHeader())
	for i, l := range data.Lines {
		m.AddRows(lineRow(l, i%2 == 1))
	}

	m.AddRows(line.NewRow(4))
	m.AddRow(8,
		text.NewCol(8, "", props.Text{}),
		text.NewCol(2, "Total", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, data.Total.StringFixed(2)+" EUR", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)

	if data.Trial {
		m.AddRow(10,
			text.NewCol(12, "Document genere avec la version d'essai", props.Text{
				Size:  9,
				Style: fontstyle.Italic,
				Align: align.Center,
				Color: &grey,
			}),
		)
	}

	document, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return document.GetBytes(), nil
}

func lineHeader() core.Row {
	style := props.Text{Size: 9, Style: fontstyle.Bold}
	return row.New(7).Add(
		text.NewCol(6, "Designation", style),
		text.NewCol(2, "Quantite", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Prix unitaire", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Montant", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
}

func lineRow(l QuoteLine, shaded bool) core.Row {
	r := row.New(6).Add(
		text.NewCol(6, l.Label, props.Text{Size: 9}),
		text.NewCol(2, l.Quantity.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, l.UnitPrice.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, l.Total.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	if shaded {
		r.WithStyle(&props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}})
	}
	return r
}
