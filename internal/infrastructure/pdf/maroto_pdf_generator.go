// Package pdf genera la constancia de recepción de un reporte ciudadano.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título de la constancia │  N° Reporte + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Departamentos / Tipo / Prioridad / Estado            │
//	│  DESCRIPCIÓN                                                 │
//	│  ADJUNTOS: cantidad de imágenes                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el identificador + leyenda                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/Reportes-api/internal/application/report"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ report.ReceiptGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa report.ReceiptGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	// Entidad impresa en el encabezado y como autor del documento.
	Issuer string
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(issuer string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{Issuer: issuer}
}

// GenerateReportReceipt genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReportReceipt(_ context.Context, r *entity.Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("pdf: reporte nil")
	}
	issuer := nonEmpty(g.Issuer, "Sistema de Reportes")

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Constancia de reporte "+r.ID, true).
		WithAuthor(issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r, issuer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(detailRows(r)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(descriptionRows(r)...)
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(r)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: emisor (izq) y N° de reporte + fecha (der).
func headerRow(r *entity.Report, issuer string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(issuer, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Constancia de recepción de reporte", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REPORTE N°", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(r.ID, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+r.Timestamp.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func detailRows(r *entity.Report) []core.Row {
	field := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(3).Add(text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 1, Color: colorPrimary,
			})),
			col.New(9).Add(text.New(nonEmpty(value, "—"), props.Text{Size: 8, Top: 1})),
		)
	}
	return []core.Row{
		field("Departamento(s):", strings.Join(r.Departamento, ", ")),
		field("Tipo de problema:", r.TipoProblema),
		field("Quién reporta:", r.QuienReporta),
		field("Email de contacto:", r.Email),
		field("Prioridad:", r.Prioridad),
		field("Estado:", r.Estado),
		field("Imágenes adjuntas:", fmt.Sprintf("%d", len(r.Imagenes))),
	}
}

// descriptionRows: la descripción partida en líneas de 100 caracteres.
func descriptionRows(r *entity.Report) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("DESCRIPCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, chunk := range splitEvery(nonEmpty(r.Descripcion, "—"), 100) {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 8, Top: 0.5, Left: 2}),
		)))
	}
	return rows
}

// footerRows: QR con el identificador del reporte + leyenda.
func footerRows(r *entity.Report) []core.Row {
	return []core.Row{
		row.New(45).Add(
			col.New(4).Add(code.NewQr(r.ID, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Presente este código para consultar\nel estado de su reporte.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Conserve esta constancia como\ncomprobante de su solicitud.", props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 22,
					Left: 3, Color: colorPrimary,
				}),
			),
		),
	}
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n runas.
func splitEvery(s string, n int) []string {
	var parts []string
	runes := []rune(s)
	for len(runes) > n {
		parts = append(parts, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
