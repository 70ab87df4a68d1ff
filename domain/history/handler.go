package history

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves the send-history endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// List handles GET /api/history.
func (h *Handler) List(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	entries, err := h.store.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
