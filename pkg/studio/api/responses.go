package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/tendant/studio-site/pkg/studio"
)

// ProjectResponse is the response body for a project
type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Date        time.Time `json:"date"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostResponse is the response body for a blog post
type PostResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Content     string    `json:"content"`
	Image       string    `json:"image,omitempty"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"published_at"`
}

// TeamMemberResponse is the response body for a team member
type TeamMemberResponse struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Role      string        `json:"role"`
	Image     string        `json:"image,omitempty"`
	Bio       string        `json:"bio"`
	Social    studio.Social `json:"social"`
	CreatedAt time.Time     `json:"created_at"`
}

// SearchResponse is the response body for a search
type SearchResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Posts    []PostResponse    `json:"posts"`
}

// MessageResponse acknowledges a delete
type MessageResponse struct {
	Message string `json:"message"`
}

type mediaURLFunc func(ref string) string

func newProjectResponse(p *studio.Project, url mediaURLFunc) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Description: p.Description,
		Image:       url(p.ImageRef),
		Date:        p.Date,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt,
	}
}

func newPostResponse(p *studio.Post, url mediaURLFunc) PostResponse {
	return PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Content:     p.Content,
		Image:       url(p.ImageRef),
		Author:      p.Author,
		PublishedAt: p.PublishedAt,
	}
}

func newTeamMemberResponse(m *studio.TeamMember, url mediaURLFunc) TeamMemberResponse {
	return TeamMemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Role:      m.Role,
		Image:     url(m.ImageRef),
		Bio:       m.Bio,
		Social:    m.Social,
		CreatedAt: m.CreatedAt,
	}
}

// mapAll converts a list, never returning nil so empty lists encode as [].
func mapAll[T, R any](items []*T, url mediaURLFunc, conv func(*T, mediaURLFunc) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, conv(item, url))
	}
	return out
}
