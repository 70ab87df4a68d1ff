package template

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"template-mailer/pkg/apperrors"
	"template-mailer/pkg/variables"
)

type fakeStore struct {
	count     int
	templates []Template
	created   []string

	deleteErr error
}

func (s *fakeStore) GetAll(context.Context, int64) ([]Template, error) {
	return s.templates, nil
}

func (s *fakeStore) GetByID(_ context.Context, id, _ int64) (*Template, error) {
	for i := range s.templates {
		if s.templates[i].ID == id {
			return &s.templates[i], nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Count(context.Context, int64) (int, error) {
	return s.count, nil
}

func (s *fakeStore) Create(_ context.Context, ownerID int64, name, content string, vars map[string]string) (*Template, error) {
	s.created = append(s.created, name)
	return &Template{ID: int64(len(s.created)), OwnerID: ownerID, Name: name, Content: content, Variables: vars}, nil
}

func (s *fakeStore) Update(_ context.Context, id, ownerID int64, req UpdateTemplateRequest) (*Template, error) {
	t := Template{ID: id, OwnerID: ownerID}
	if req.Name != nil {
		t.Name = *req.Name
	}
	return &t, nil
}

func (s *fakeStore) Delete(context.Context, int64, int64) (DeleteResult, error) {
	if s.deleteErr != nil {
		return DeleteResult{}, s.deleteErr
	}
	return DeleteResult{Deleted: true, Count: 1}, nil
}

func importBody(data string) (string, error) {
	b, err := json.Marshal(ImportRequest{Data: data})
	return string(b), err
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", int64(1))
	return c, rec
}

func TestCreateLimit(t *testing.T) {
	t.Parallel()

	t.Run("under the cap creates", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{count: MaxPerOwner - 1}
		h := NewHandler(store)

		c, rec := newTestContext(t, http.MethodPost, "/api/templates",
			`{"name":"welcome","content":"hi {{name}}"}`)
		require.NoError(t, h.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, []string{"welcome"}, store.created)
	})

	t.Run("at the cap rejects without touching the store", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{count: MaxPerOwner}
		h := NewHandler(store)

		c, _ := newTestContext(t, http.MethodPost, "/api/templates",
			`{"name":"one-too-many","content":"hi"}`)
		err := h.Create(c)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		require.Equal(t, apperrors.ErrCodeTemplateLimit, appErr.Code)
		require.Empty(t, store.created)
	})

	t.Run("missing fields rejected before the cap check", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&fakeStore{})

		c, _ := newTestContext(t, http.MethodPost, "/api/templates", `{"name":"no-content"}`)
		err := h.Create(c)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		require.Equal(t, apperrors.ErrCodeMissingField, appErr.Code)
	})
}

func TestList(t *testing.T) {
	t.Parallel()

	store := &fakeStore{templates: []Template{{ID: 1, Name: "a"}}}
	h := NewHandler(store)

	c, rec := newTestContext(t, http.MethodGet, "/api/templates", "")
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, listCacheControl, rec.Header().Get("Cache-Control"))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	t.Run("missing row surfaces as not found", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{deleteErr: apperrors.NewNotFound(apperrors.ErrCodeTemplateNotFound, "Template not found.")}
		h := NewHandler(store)

		c, _ := newTestContext(t, http.MethodDelete, "/api/templates/99", "")
		c.SetParamNames("id")
		c.SetParamValues("99")

		err := h.Delete(c)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		require.Equal(t, apperrors.ErrCodeTemplateNotFound, appErr.Code)
	})

	t.Run("non-numeric id is a bad request", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&fakeStore{})

		c, _ := newTestContext(t, http.MethodDelete, "/api/templates/nope", "")
		c.SetParamNames("id")
		c.SetParamValues("nope")

		err := h.Delete(c)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		require.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
	})
}

func TestRenderPreview(t *testing.T) {
	t.Parallel()

	t.Run("unresolved tokens include the subject's", func(t *testing.T) {
		t.Parallel()
		resp := renderPreview(
			"Subject: Hi {{name}}, re {{order}}\n\nYour {{item}} shipped, {{name}}.",
			map[string]string{"name": "Ana"},
			"blue",
		)
		require.Equal(t, "Hi Ana, re {{order}}", resp.Subject)
		require.Equal(t, []string{"order", "item"}, resp.Unresolved)
	})

	t.Run("fully resolved preview reports nothing", func(t *testing.T) {
		t.Parallel()
		resp := renderPreview(
			"Subject: Hi {{name}}\n\nWelcome, {{name}}.",
			map[string]string{"name": "Ana"},
			"blue",
		)
		require.Empty(t, resp.Unresolved)
		require.Contains(t, resp.HTML, "Welcome, Ana.")
	})
}

func TestImport(t *testing.T) {
	t.Parallel()

	t.Run("malformed definitions fail closed", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&fakeStore{})

		c, _ := newTestContext(t, http.MethodPost, "/api/templates/import", `{"data":"not json"}`)
		err := h.Import(c)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		require.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
	})

	t.Run("valid definition counts against the cap", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{count: MaxPerOwner}
		h := NewHandler(store)

		data, err := variables.Export(variables.Definition{
			Name:      "imported",
			Content:   "hi {{name}}",
			Variables: map[string]string{"name": "x"},
		})
		require.NoError(t, err)

		body, err := importBody(data)
		require.NoError(t, err)

		c, _ := newTestContext(t, http.MethodPost, "/api/templates/import", body)
		importErr := h.Import(c)

		appErr, ok := apperrors.AsAppError(importErr)
		require.True(t, ok)
		require.Equal(t, apperrors.ErrCodeTemplateLimit, appErr.Code)
		require.Empty(t, store.created)
	})
}
