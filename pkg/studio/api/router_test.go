package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/studio-site/pkg/studio"
	memoryrepo "github.com/tendant/studio-site/pkg/studio/repo/memory"
	memorystorage "github.com/tendant/studio-site/pkg/studio/storage/memory"
)

type stubNotifier struct{ err error }

func (s stubNotifier) Notify(ctx context.Context, n studio.Notification) error { return s.err }

// setupRouter creates a router over an in-memory service
func setupRouter(t *testing.T, cfg Config, opts ...studio.Option) http.Handler {
	t.Helper()
	options := append([]studio.Option{
		studio.WithRepository(memoryrepo.New()),
		studio.WithBlobStore("memory", memorystorage.New()),
	}, opts...)
	svc, err := studio.New(options...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	cfg.Environment = "testing"
	return NewRouter(svc, cfg)
}

type filePart struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *filePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="image"; filename=%q`, file.name)}
		h["Content-Type"] = []string{file.contentType}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	router := setupRouter(t, Config{})
	image := []byte("\x89PNG\r\n\x1a\nalpha")

	body, contentType := multipartBody(t, map[string]string{
		"title":       "Alpha",
		"category":    "Branding",
		"description": "First project",
		"featured":    "on",
		"date":        "2024-03-01",
	}, &filePart{name: "alpha.PNG", contentType: "image/png", data: image})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	req.Header.Set("Content-Type", contentType)

	w := do(t, router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[ProjectResponse](t, w)
	assert.Equal(t, "Alpha", created.Title)
	assert.True(t, created.Featured)
	assert.Equal(t, 2024, created.Date.Year())
	require.True(t, strings.HasPrefix(created.Image, "/uploads/"), created.Image)
	assert.True(t, strings.HasSuffix(created.Image, ".png"))

	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]ProjectResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, created.Image, list[0].Image)

	w = do(t, router, httptest.NewRequest(http.MethodGet, created.Image, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, image, w.Body.Bytes())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/projects/"+created.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, httptest.NewRequest(http.MethodDelete, "/api/projects/"+created.ID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Project deleted", decode[MessageResponse](t, w).Message)

	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, router, httptest.NewRequest(http.MethodGet, created.Image, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateWithoutImage(t *testing.T) {
	router := setupRouter(t, Config{})

	body, contentType := multipartBody(t, map[string]string{
		"title": "Hello", "category": "News", "content": "Body", "author": "Ann",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.Header.Set("Content-Type", contentType)

	w := do(t, router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[PostResponse](t, w)
	assert.Empty(t, post.Image)
	assert.NotContains(t, w.Body.String(), `"image"`)

	w = do(t, router, httptest.NewRequest(http.MethodDelete, "/api/posts/"+post.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateValidation(t *testing.T) {
	router := setupRouter(t, Config{MaxUploadBytes: 1024})

	tests := []struct {
		name       string
		target     string
		fields     map[string]string
		file       *filePart
		wantStatus []int
	}{
		{
			name:       "missing description",
			target:     "/api/projects",
			fields:     map[string]string{"title": "Alpha", "category": "Branding"},
			wantStatus: []int{http.StatusBadRequest},
		},
		{
			name:       "bad featured flag",
			target:     "/api/projects",
			fields:     map[string]string{"title": "Alpha", "category": "Branding", "description": "d", "featured": "maybe"},
			wantStatus: []int{http.StatusBadRequest},
		},
		{
			name:       "bad date",
			target:     "/api/projects",
			fields:     map[string]string{"title": "Alpha", "category": "Branding", "description": "d", "date": "yesterday"},
			wantStatus: []int{http.StatusBadRequest},
		},
		{
			name:       "malformed social",
			target:     "/api/team",
			fields:     map[string]string{"name": "Ann", "role": "Designer", "bio": "b", "social": `{"twitter":`},
			wantStatus: []int{http.StatusBadRequest},
		},
		{
			name:       "upload too large",
			target:     "/api/projects",
			fields:     map[string]string{"title": "Alpha", "category": "Branding", "description": "d"},
			file:       &filePart{name: "big.jpg", contentType: "image/jpeg", data: bytes.Repeat([]byte("x"), 4096)},
			wantStatus: []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.fields, tt.file)
			req := httptest.NewRequest(http.MethodPost, tt.target, body)
			req.Header.Set("Content-Type", contentType)

			w := do(t, router, req)
			assert.Contains(t, tt.wantStatus, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, w).Error)
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		w := do(t, router, jsonRequest(http.MethodPost, "/api/projects", map[string]string{"title": "Alpha"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTeamMemberSocial(t *testing.T) {
	router := setupRouter(t, Config{})

	body, contentType := multipartBody(t, map[string]string{
		"name": "Ann", "role": "Designer", "bio": "Loves type", "social": `{"instagram":"@ann"}`,
	}, &filePart{name: "ann.jpg", contentType: "image/jpeg", data: []byte("jpeg")})
	req := httptest.NewRequest(http.MethodPost, "/api/team", body)
	req.Header.Set("Content-Type", contentType)

	w := do(t, router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	member := decode[TeamMemberResponse](t, w)
	assert.Equal(t, "@ann", member.Social.Instagram)
	assert.NotEmpty(t, member.Image)

	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/team/"+member.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, httptest.NewRequest(http.MethodDelete, "/api/team/"+member.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, httptest.NewRequest(http.MethodGet, member.Image, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIDErrors(t *testing.T) {
	router := setupRouter(t, Config{})

	w := do(t, router, httptest.NewRequest(http.MethodGet, "/api/projects/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, httptest.NewRequest(http.MethodDelete, "/api/posts/7b0b9e4e-8a6d-4c61-9b7f-3f1f3c7a2d10", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, decode[ErrorResponse](t, w).Error)

	w = do(t, router, httptest.NewRequest(http.MethodDelete, "/api/contacts/7b0b9e4e-8a6d-4c61-9b7f-3f1f3c7a2d10", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitContact(t *testing.T) {
	valid := studio.SubmitContactRequest{Name: "Ann", Email: "ann@example.com", Message: "Let's talk"}

	t.Run("created", func(t *testing.T) {
		router := setupRouter(t, Config{})
		w := do(t, router, jsonRequest(http.MethodPost, "/api/contact", valid))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		contact := decode[studio.Contact](t, w)
		assert.Equal(t, "Ann", contact.Name)

		w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]studio.Contact](t, w), 1)
	})

	t.Run("validation", func(t *testing.T) {
		router := setupRouter(t, Config{})
		bad := valid
		bad.Email = "nope"
		w := do(t, router, jsonRequest(http.MethodPost, "/api/contact", bad))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode[ErrorResponse](t, w).Error, "email")
	})

	t.Run("malformed json", func(t *testing.T) {
		router := setupRouter(t, Config{})
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("{"))
		w := do(t, router, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("notifier failure keeps contact", func(t *testing.T) {
		router := setupRouter(t, Config{}, studio.WithNotifier(stubNotifier{err: errors.New("smtp down")}))
		w := do(t, router, jsonRequest(http.MethodPost, "/api/contact", valid))
		assert.Equal(t, http.StatusBadGateway, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.NotEmpty(t, resp.ContactID)

		w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
		contacts := decode[[]studio.Contact](t, w)
		require.Len(t, contacts, 1)
		assert.Equal(t, resp.ContactID, contacts[0].ID.String())
	})

	t.Run("notifier timeout", func(t *testing.T) {
		router := setupRouter(t, Config{}, studio.WithNotifier(stubNotifier{err: fmt.Errorf("publish: %w", context.DeadlineExceeded)}))
		w := do(t, router, jsonRequest(http.MethodPost, "/api/contact", valid))
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.NotEmpty(t, decode[ErrorResponse](t, w).ContactID)
	})
}

func TestNewsletter(t *testing.T) {
	router := setupRouter(t, Config{})

	w := do(t, router, jsonRequest(http.MethodPost, "/api/newsletter", studio.SubscribeRequest{Email: "Fan@Example.com"}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[studio.Subscriber](t, w)
	assert.Equal(t, "fan@example.com", sub.Email)

	w = do(t, router, jsonRequest(http.MethodPost, "/api/newsletter", studio.SubscribeRequest{Email: "fan@example.com"}))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/newsletter", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]studio.Subscriber](t, w), 1)

	w = do(t, router, httptest.NewRequest(http.MethodDelete, "/api/newsletter/"+sub.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/newsletter", nil))
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSearchAndStats(t *testing.T) {
	router := setupRouter(t, Config{})

	for _, fields := range []map[string]string{
		{"title": "Brand Refresh", "category": "c", "content": "A new LOGO", "author": "a"},
		{"title": "Studio news", "category": "c", "content": "We moved", "author": "a"},
	} {
		body, contentType := multipartBody(t, fields, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
		req.Header.Set("Content-Type", contentType)
		require.Equal(t, http.StatusCreated, do(t, router, req).Code)
	}

	w := do(t, router, httptest.NewRequest(http.MethodGet, "/api/search?q=logo", nil))
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[SearchResponse](t, w)
	assert.Empty(t, result.Projects)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "Brand Refresh", result.Posts[0].Title)

	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/search", nil))
	assert.Len(t, decode[SearchResponse](t, w).Posts, 2)

	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":0,"posts":2,"contacts":0,"subscribers":0,"team":0}`, w.Body.String())
}

func TestAdminJWT(t *testing.T) {
	const secret = "test-secret"
	router := setupRouter(t, Config{AdminJWTSecret: secret})

	_, token, err := jwtauth.New("HS256", []byte(secret), nil).Encode(map[string]interface{}{"sub": "admin"})
	require.NoError(t, err)

	w := do(t, router, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = do(t, router, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, httptest.NewRequest(http.MethodDelete, "/api/contacts/7b0b9e4e-8a6d-4c61-9b7f-3f1f3c7a2d10", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// public routes stay open
	w = do(t, router, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, jsonRequest(http.MethodPost, "/api/newsletter", studio.SubscribeRequest{Email: "fan@example.com"}))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupRouter(t, Config{StorageBackend: "memory"})

	w := do(t, router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","environment":"testing","storage":"memory"}`, w.Body.String())

	do(t, router, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	w = do(t, router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	metrics, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(metrics), `studio_http_requests_total{method="GET",route="/api/projects",status="200"}`)
}

func TestMediaURLPrefix(t *testing.T) {
	router := setupRouter(t, Config{MediaURLPrefix: "/media"}, studio.WithMediaURLPrefix("/media"))

	body, contentType := multipartBody(t, map[string]string{
		"title": "Alpha", "category": "c", "description": "d",
	}, &filePart{name: "a.gif", contentType: "image/gif", data: []byte("GIF89a")})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	req.Header.Set("Content-Type", contentType)
	w := do(t, router, req)
	require.Equal(t, http.StatusCreated, w.Code)

	image := decode[ProjectResponse](t, w).Image
	require.True(t, strings.HasPrefix(image, "/media/"), image)
	w = do(t, router, httptest.NewRequest(http.MethodGet, image, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, httptest.NewRequest(http.MethodGet, "/media/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParseFeatured(t *testing.T) {
	for in, want := range map[string]bool{"": false, "true": true, "1": true, "on": true, "FALSE": false, "0": false} {
		got, err := parseFeatured(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseFeatured("maybe")
	assert.ErrorIs(t, err, studio.ErrValidation)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseDate("2024-05-06T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	_, err = parseDate("06/05/2024")
	assert.ErrorIs(t, err, studio.ErrValidation)
}
