package http

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/application/report"
)

// ReportHandler maneja las peticiones HTTP de reportes.
type ReportHandler struct {
	uc     *report.ReportUseCase
	errors *ErrorWriter
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase, ew *ErrorWriter) *ReportHandler {
	return &ReportHandler{uc: uc, errors: ew}
}

// Create godoc
// @Summary      Crear reporte
// @Description  Acepta multipart/form-data (con images[]) o JSON sin imágenes.
// @Tags         reportes
// @Accept       mpfd,json
// @Produce      json
// @Param        departamento[]  formData  []string  true   "Departamentos"
// @Param        descripcion     formData  string    true   "Descripción"
// @Param        tipoProblema    formData  string    true   "Tipo de problema"
// @Param        quienReporta    formData  string    true   "Quién reporta"
// @Param        email           formData  string    false  "Email de contacto"
// @Param        prioridad       formData  string    false  "Baja, Media, Alta o Urgente"
// @Param        images[]        formData  file      false  "Imágenes o videos (10 MB c/u)"
// @Success      201  {object}  dto.CreateReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Router       /api/reportes [post]
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var (
		in     dto.CreateReportRequest
		images []report.ImageUpload
	)
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "formulario multipart inválido"})
		}
		in = createRequestFromForm(form)
		images = imagesFromForm(form)
	} else {
		var body createReportJSON
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
		in = body.toRequest()
	}

	r, err := h.uc.Create(c.UserContext(), in, images)
	if err != nil {
		return h.errors.Write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateReportResponse{
		Message: "reporte creado",
		ID:      r.ID,
		Reporte: dto.ToReportResponse(r),
	})
}

// List godoc
// @Summary      Listar reportes
// @Tags         reportes
// @Produce      json
// @Success      200  {array}  dto.ReportResponse
// @Router       /api/reportes [get]
func (h *ReportHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext())
	if err != nil {
		return h.errors.Write(c, err)
	}
	out := make([]dto.ReportResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.ToReportResponse(r))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener reporte por ID
// @Tags         reportes
// @Produce      json
// @Param        id   path  string  true  "ID del reporte"
// @Success      200  {object}  dto.ReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reportes/{id} [get]
func (h *ReportHandler) GetByID(c *fiber.Ctx) error {
	r, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errors.Write(c, err)
	}
	return c.JSON(dto.ToReportResponse(r))
}

// Update godoc
// @Summary      Actualizar reporte
// @Description  Actualización parcial. modificado=false indica que el reporte ya tenía esos valores.
// @Tags         reportes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del reporte"
// @Param        body  body  map[string]interface{}  true  "Campos a actualizar"
// @Success      200   {object}  dto.UpdateReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reportes/{id} [patch]
func (h *ReportHandler) Update(c *fiber.Ctx) error {
	var patch map[string]any
	if err := json.Unmarshal(c.Body(), &patch); err != nil || patch == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "se espera un objeto JSON"})
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return h.errors.Write(c, err)
	}
	msg := "reporte actualizado"
	if !out.Modified {
		msg = "el reporte ya tenía esos valores"
	}
	return c.JSON(dto.UpdateReportResponse{Message: msg, Modificado: out.Modified})
}

// Delete godoc
// @Summary      Eliminar reporte
// @Description  Elimina el reporte y sus imágenes almacenadas.
// @Tags         reportes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del reporte"
// @Success      200  {object}  dto.DeleteReportResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reportes/{id} [delete]
func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	removed, err := h.uc.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errors.Write(c, err)
	}
	return c.JSON(dto.DeleteReportResponse{Message: "reporte eliminado", ImagenesEliminadas: removed})
}

// Receipt godoc
// @Summary      Constancia PDF del reporte
// @Tags         reportes
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del reporte"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reportes/{id}/constancia [get]
func (h *ReportHandler) Receipt(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.uc.Receipt(c.UserContext(), id)
	if err != nil {
		return h.errors.Write(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="constancia-`+id+`.pdf"`)
	return c.Send(pdf)
}

// stringList acepta "TI", ["TI","Obras"] o un arreglo JSON serializado como texto.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*s = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*s = splitList([]string{one})
	return nil
}

type createReportJSON struct {
	Email        string     `json:"email"`
	Departamento stringList `json:"departamento"`
	Descripcion  string     `json:"descripcion"`
	TipoProblema string     `json:"tipoProblema"`
	QuienReporta string     `json:"quienReporta"`
	Prioridad    string     `json:"prioridad"`
}

func (b createReportJSON) toRequest() dto.CreateReportRequest {
	return dto.CreateReportRequest{
		Email:        b.Email,
		Departamento: b.Departamento,
		Descripcion:  b.Descripcion,
		TipoProblema: b.TipoProblema,
		QuienReporta: b.QuienReporta,
		Prioridad:    b.Prioridad,
	}
}

func createRequestFromForm(form *multipart.Form) dto.CreateReportRequest {
	first := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	deps := append([]string{}, form.Value["departamento[]"]...)
	deps = append(deps, form.Value["departamento"]...)
	return dto.CreateReportRequest{
		Email:        first("email"),
		Departamento: splitList(deps),
		Descripcion:  first("descripcion"),
		TipoProblema: first("tipoProblema"),
		QuienReporta: first("quienReporta"),
		Prioridad:    first("prioridad"),
	}
}

// splitList expande valores que llegan como arreglo JSON serializado ("[\"TI\",\"Obras\"]").
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") {
			var many []string
			if err := json.Unmarshal([]byte(trimmed), &many); err == nil {
				out = append(out, many...)
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

func imagesFromForm(form *multipart.Form) []report.ImageUpload {
	headers := append([]*multipart.FileHeader{}, form.File["images[]"]...)
	headers = append(headers, form.File["images"]...)
	out := make([]report.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		out = append(out, report.ImageUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return out
}
