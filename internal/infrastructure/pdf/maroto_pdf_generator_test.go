package pdf

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

func TestGenerateReportReceipt(t *testing.T) {
	g := NewMarotoPDFGenerator("Municipalidad de Prueba")
	r := &entity.Report{
		ID:           "665f1c2ab3e4d5f6a7b8c9d0",
		Departamento: []string{"Obras", "Alumbrado"},
		Descripcion:  strings.Repeat("Luminaria apagada en la esquina. ", 10),
		TipoProblema: "Alumbrado público",
		Prioridad:    entity.PrioridadAlta,
		Estado:       entity.EstadoPendiente,
		Imagenes:     []string{"a.jpg"},
		Timestamp:    time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}

	out, err := g.GenerateReportReceipt(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateReportReceipt_Nil(t *testing.T) {
	_, err := NewMarotoPDFGenerator("").GenerateReportReceipt(context.Background(), nil)
	assert.Error(t, err)
}

func TestSplitEvery_RespetaRunas(t *testing.T) {
	assert.Equal(t, []string{"ñá", "é"}, splitEvery("ñáé", 2))
	assert.Nil(t, splitEvery("", 5))
}
