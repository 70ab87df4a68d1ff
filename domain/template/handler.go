package template

import (
	"context"
	"net/http"
	"strconv"

	"template-mailer/domain/preference"
	"template-mailer/pkg/apperrors"
	"template-mailer/pkg/markup"
	"template-mailer/pkg/variables"

	"github.com/labstack/echo/v4"
)

// listCacheControl mirrors the store's 30-second read cache window for
// HTTP caches.
const listCacheControl = "max-age=30, stale-while-revalidate=60"

// templateStore is the persistence surface the handlers need.
type templateStore interface {
	GetAll(ctx context.Context, ownerID int64) ([]Template, error)
	GetByID(ctx context.Context, id, ownerID int64) (*Template, error)
	Count(ctx context.Context, ownerID int64) (int, error)
	Create(ctx context.Context, ownerID int64, name, content string, vars map[string]string) (*Template, error)
	Update(ctx context.Context, id, ownerID int64, req UpdateTemplateRequest) (*Template, error)
	Delete(ctx context.Context, id, ownerID int64) (DeleteResult, error)
}

// Handler serves the template CRUD, preview and export endpoints.
type Handler struct {
	store templateStore
}

func NewHandler(store templateStore) *Handler {
	return &Handler{store: store}
}

// Create handles POST /api/templates.
func (h *Handler) Create(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	req := new(CreateTemplateRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload.")
	}
	if req.Name == "" || req.Content == "" {
		return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "Name and content are required.")
	}

	// Policy cap lives here, not in the store.
	count, err := h.store.Count(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	if count >= MaxPerOwner {
		return apperrors.NewBadRequest(apperrors.ErrCodeTemplateLimit,
			"Template limit reached. Delete a template before creating a new one.")
	}

	created, err := h.store.Create(c.Request().Context(), ownerID, req.Name, req.Content, req.Variables)
	if err != nil {
		return err
	}
	return apperrors.RespondWithCreated(c, created)
}

// List handles GET /api/templates.
func (h *Handler) List(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	templates, err := h.store.GetAll(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}

	c.Response().Header().Set("Cache-Control", listCacheControl)
	return c.JSON(http.StatusOK, templates)
}

// Get handles GET /api/templates/:id.
func (h *Handler) Get(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Invalid template id.")
	}

	t, err := h.store.GetByID(c.Request().Context(), id, ownerID)
	if err != nil {
		return err
	}
	if t == nil {
		return apperrors.NewNotFound(apperrors.ErrCodeTemplateNotFound, "Template not found.")
	}
	return c.JSON(http.StatusOK, t)
}

// Update handles PUT /api/templates/:id.
func (h *Handler) Update(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Invalid template id.")
	}

	req := new(UpdateTemplateRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload.")
	}

	updated, err := h.store.Update(c.Request().Context(), id, ownerID, *req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/templates/:id.
func (h *Handler) Delete(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Invalid template id.")
	}

	result, err := h.store.Delete(c.Request().Context(), id, ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Preview handles POST /api/templates/preview: substitute variables, then
// render the HTML fragment and plain-text fallback exactly as the send
// path will.
func (h *Handler) Preview(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	req := new(PreviewRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload.")
	}
	if req.Content == "" {
		return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "Content is required.")
	}

	color := preference.HighlightColor(c.Request().Context(), ownerID)
	return c.JSON(http.StatusOK, renderPreview(req.Content, req.Variables, color))
}

// renderPreview substitutes variables into the subject and body and
// renders both output forms. Unresolved tokens are collected from the
// subject and the body together; the subject is scanned first so its
// tokens lead the list.
func renderPreview(content string, vars map[string]string, color string) PreviewResponse {
	subject, body := SplitSubject(content)
	substitutedSubject := variables.Replace(subject, vars)
	substituted := variables.Replace(body, vars)

	return PreviewResponse{
		Subject:    substitutedSubject,
		HTML:       markup.ToHTML(substituted, color),
		Text:       markup.ToPlainText(substituted),
		Unresolved: variables.Extract(substitutedSubject + "\n" + substituted),
	}
}

// Export handles GET /api/templates/:id/export.
func (h *Handler) Export(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Invalid template id.")
	}

	t, err := h.store.GetByID(c.Request().Context(), id, ownerID)
	if err != nil {
		return err
	}
	if t == nil {
		return apperrors.NewNotFound(apperrors.ErrCodeTemplateNotFound, "Template not found.")
	}

	exported, err := variables.Export(variables.Definition{
		Name:      t.Name,
		Content:   t.Content,
		Variables: t.Variables,
	})
	if err != nil {
		return apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, "Failed to export template.", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+t.Name+`.json"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(exported))
}

// Import handles POST /api/templates/import. Malformed definitions fail
// closed with a 400; valid ones go through the same cap check as Create.
func (h *Handler) Import(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	req := new(ImportRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload.")
	}

	def, ok := variables.Import(req.Data)
	if !ok {
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Not a valid template definition.")
	}

	count, err := h.store.Count(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	if count >= MaxPerOwner {
		return apperrors.NewBadRequest(apperrors.ErrCodeTemplateLimit,
			"Template limit reached. Delete a template before importing.")
	}

	created, err := h.store.Create(c.Request().Context(), ownerID, def.Name, def.Content, def.Variables)
	if err != nil {
		return err
	}
	return apperrors.RespondWithCreated(c, created)
}
