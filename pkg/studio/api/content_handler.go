package api

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/tendant/studio-site/pkg/studio"
)

// imageField is the multipart field carrying the optional upload
const imageField = "image"

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// ContentHandler handles projects, blog posts and team members
type ContentHandler struct {
	service        studio.Service
	maxUploadBytes int64
}

// NewContentHandler creates a new content handler
func NewContentHandler(service studio.Service, maxUploadBytes int64) *ContentHandler {
	return &ContentHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateProject creates a project from a multipart form
func (h *ContentHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	featured, err := parseFeatured(form.value("featured"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate(form.value("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.service.CreateProject(r.Context(), studio.CreateProjectRequest{
		Title:       form.value("title"),
		Category:    form.value("category"),
		Description: form.value("description"),
		Date:        date,
		Featured:    featured,
		Image:       form.upload,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Project created", "project_id", project.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newProjectResponse(project, h.service.MediaURL))
}

// GetProject returns one project
func (h *ContentHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, newProjectResponse(project, h.service.MediaURL))
}

// ListProjects returns all projects, newest date first
func (h *ContentHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, mapAll(projects, h.service.MediaURL, newProjectResponse))
}

// DeleteProject removes a project and its image
func (h *ContentHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, MessageResponse{Message: "Project deleted"})
}

// CreatePost creates a blog post from a multipart form
func (h *ContentHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	post, err := h.service.CreatePost(r.Context(), studio.CreatePostRequest{
		Title:    form.value("title"),
		Category: form.value("category"),
		Content:  form.value("content"),
		Author:   form.value("author"),
		Image:    form.upload,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Post created", "post_id", post.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newPostResponse(post, h.service.MediaURL))
}

// GetPost returns one blog post
func (h *ContentHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, newPostResponse(post, h.service.MediaURL))
}

// ListPosts returns all posts, newest first
func (h *ContentHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, mapAll(posts, h.service.MediaURL, newPostResponse))
}

// DeletePost removes a post and its image
func (h *ContentHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeletePost(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, MessageResponse{Message: "Post deleted"})
}

// CreateTeamMember creates a team member from a multipart form. The social
// field carries a JSON object of profile handles.
func (h *ContentHandler) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	member, err := h.service.CreateTeamMember(r.Context(), studio.CreateTeamMemberRequest{
		Name:   form.value("name"),
		Role:   form.value("role"),
		Bio:    form.value("bio"),
		Social: []byte(form.value("social")),
		Image:  form.upload,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Team member created", "team_member_id", member.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newTeamMemberResponse(member, h.service.MediaURL))
}

// GetTeamMember returns one team member
func (h *ContentHandler) GetTeamMember(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	member, err := h.service.GetTeamMember(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, newTeamMemberResponse(member, h.service.MediaURL))
}

// ListTeam returns the team in insertion order
func (h *ContentHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.service.ListTeam(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, mapAll(team, h.service.MediaURL, newTeamMemberResponse))
}

// DeleteTeamMember removes a team member and their photo
func (h *ContentHandler) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteTeamMember(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, MessageResponse{Message: "Team member deleted"})
}

// multipartForm is a parsed create request with its optional image
type multipartForm struct {
	form   *multipart.Form
	file   multipart.File
	upload *studio.Upload
}

func (f *multipartForm) value(key string) string {
	if vs := f.form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (f *multipartForm) Close() error {
	if f.file != nil {
		f.file.Close()
	}
	return f.form.RemoveAll()
}

func (h *ContentHandler) parseForm(w http.ResponseWriter, r *http.Request) (*multipartForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(min(multipartMemory, h.maxUploadBytes)); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, err
		}
		return nil, &studio.ValidationError{Field: "body", Reason: "expected multipart/form-data"}
	}

	f := &multipartForm{form: r.MultipartForm}
	file, header, err := r.FormFile(imageField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		f.Close()
		return nil, fmt.Errorf("read %s: %w", imageField, err)
	default:
		f.file = file
		f.upload = &studio.Upload{
			Reader:      file,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}
	}
	return f, nil
}

// parseFeatured accepts the checkbox spellings browsers and scripts send
func parseFeatured(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on", "yes":
		return true, nil
	case "", "false", "0", "off", "no":
		return false, nil
	}
	return false, &studio.ValidationError{Field: "featured", Reason: "must be a boolean"}
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
// Empty yields the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &studio.ValidationError{Field: "date", Reason: "must be RFC 3339 or YYYY-MM-DD"}
}
