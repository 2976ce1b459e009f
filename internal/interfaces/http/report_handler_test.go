package http_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

func createReport(t *testing.T, api *testAPI, payload map[string]any) dto.CreateReportResponse {
	t.Helper()
	resp := api.doJSON(t, http.MethodPost, "/api/reportes", payload, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.CreateReportResponse](t, resp)
}

func TestCreateReport_SinEmailPendienteYPrimeroEnLista(t *testing.T) {
	api := newTestAPI(t)
	older := createReport(t, api, map[string]any{
		"departamento": []string{"Obras"}, "descripcion": "bache", "tipoProblema": "vial", "quienReporta": "Ana",
	})
	time.Sleep(2 * time.Millisecond)

	out := createReport(t, api, map[string]any{
		"departamento": []string{"TI"},
		"descripcion":  "no hay luz",
		"tipoProblema": "electrico",
		"quienReporta": "Juan",
	})
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, out.ID, out.Reporte.ID)
	assert.Equal(t, entity.EstadoPendiente, out.Reporte.Estado)
	assert.Equal(t, []string{}, out.Reporte.Imagenes)

	resp := api.doJSON(t, http.MethodGet, "/api/reportes", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.ReportResponse](t, resp)
	require.Len(t, list, 2)
	assert.Equal(t, out.ID, list[0].ID, "el más reciente primero")
	assert.Equal(t, older.ID, list[1].ID)
}

func TestCreateReport_DepartamentoComoTexto(t *testing.T) {
	api := newTestAPI(t)
	out := createReport(t, api, map[string]any{
		"departamento": `["TI","Obras"]`, "descripcion": "d", "tipoProblema": "t", "quienReporta": "q",
	})
	assert.Equal(t, []string{"TI", "Obras"}, out.Reporte.Departamento)
}

func TestCreateReport_Validacion400(t *testing.T) {
	api := newTestAPI(t)
	resp := api.doJSON(t, http.MethodPost, "/api/reportes", map[string]any{"descripcion": "sin departamento"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/api/reportes", strings.NewReader("{no-json"), "application/json", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func multipartBody(t *testing.T, fields map[string][]string, files map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	for name, contentType := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="images[]"; filename="`+name+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("contenido de " + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateReport_MultipartConImagenes(t *testing.T) {
	api := newTestAPI(t)
	body, ct := multipartBody(t,
		map[string][]string{
			"departamento[]": {"TI", "Alumbrado"},
			"descripcion":    {"poste caído"},
			"tipoProblema":   {"electrico"},
			"quienReporta":   {"Juan"},
			"email":          {"Juan@X.com"},
		},
		map[string]string{"foto.jpg": "image/jpeg"},
	)
	resp := api.do(t, http.MethodPost, "/api/reportes", body, ct, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.CreateReportResponse](t, resp)

	assert.Equal(t, []string{"TI", "Alumbrado"}, out.Reporte.Departamento)
	assert.Equal(t, "juan@x.com", out.Reporte.Email)
	require.Len(t, out.Reporte.Imagenes, 1)
	assert.True(t, api.files.Has(out.Reporte.Imagenes[0]))
}

func TestCreateReport_MultipartTipoNoPermitido(t *testing.T) {
	api := newTestAPI(t)
	body, ct := multipartBody(t,
		map[string][]string{
			"departamento": {"TI"}, "descripcion": {"d"}, "tipoProblema": {"t"}, "quienReporta": {"q"},
		},
		map[string]string{"virus.exe": "application/octet-stream"},
	)
	resp := api.do(t, http.MethodPost, "/api/reportes", body, ct, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 0, api.files.Len())
}

func TestPatchReport_TecnicoPuedeUsuarioNo(t *testing.T) {
	api := newTestAPI(t)
	out := createReport(t, api, map[string]any{
		"departamento": []string{"TI"}, "descripcion": "no hay luz", "tipoProblema": "electrico", "quienReporta": "Juan",
	})
	patch := map[string]any{"estado": "Resuelto"}

	resp := api.doJSON(t, http.MethodPatch, "/api/reportes/"+out.ID, patch, tokenForRole(t, "usuario"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = api.doJSON(t, http.MethodPatch, "/api/reportes/"+out.ID, patch, tokenForRole(t, "tecnico"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upd := decode[dto.UpdateReportResponse](t, resp)
	assert.True(t, upd.Modificado)

	resp = api.doJSON(t, http.MethodGet, "/api/reportes/"+out.ID, nil, "")
	got := decode[dto.ReportResponse](t, resp)
	assert.Equal(t, entity.EstadoResuelto, got.Estado)
}

func TestPatchReport_SinCambios200NoEncontrado404(t *testing.T) {
	api := newTestAPI(t)
	out := createReport(t, api, map[string]any{
		"departamento": []string{"TI"}, "descripcion": "d", "tipoProblema": "t", "quienReporta": "q",
	})
	admin := tokenForRole(t, "administrador")

	resp := api.doJSON(t, http.MethodPatch, "/api/reportes/"+out.ID, map[string]any{"estado": "Pendiente"}, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[dto.UpdateReportResponse](t, resp).Modificado)

	resp = api.doJSON(t, http.MethodPatch, "/api/reportes/no-existe", map[string]any{"estado": "Resuelto"}, admin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = api.doJSON(t, http.MethodPatch, "/api/reportes/"+out.ID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteReport_CascadaDeImagenes(t *testing.T) {
	api := newTestAPI(t)
	api.reports.Put(&entity.Report{
		ID: "legacy-1", Departamento: []string{"TI"}, Estado: entity.EstadoPendiente,
		Imagenes: []string{"a.jpg", "faltante.png"}, Timestamp: time.Now(),
	})
	api.files.Put("a.jpg", []byte("a"))

	resp := api.doJSON(t, http.MethodDelete, "/api/reportes/legacy-1", nil, tokenForRole(t, "tecnico"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "tecnico no puede eliminar")
	resp.Body.Close()

	resp = api.doJSON(t, http.MethodDelete, "/api/reportes/legacy-1", nil, tokenForRole(t, "jefe_departamento"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.DeleteReportResponse](t, resp)
	assert.ElementsMatch(t, []string{"a.jpg", "faltante.png"}, out.ImagenesEliminadas)
	assert.False(t, api.files.Has("a.jpg"))

	resp = api.doJSON(t, http.MethodGet, "/api/reportes", nil, "")
	assert.Empty(t, decode[[]dto.ReportResponse](t, resp))

	resp = api.doJSON(t, http.MethodDelete, "/api/reportes/legacy-1", nil, tokenForRole(t, "administrador"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestReceipt_PDF(t *testing.T) {
	api := newTestAPI(t)
	out := createReport(t, api, map[string]any{
		"departamento": []string{"TI"}, "descripcion": "d", "tipoProblema": "t", "quienReporta": "q",
	})

	resp := api.doJSON(t, http.MethodGet, "/api/reportes/"+out.ID+"/constancia", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = api.doJSON(t, http.MethodGet, "/api/reportes/nada/constancia", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
