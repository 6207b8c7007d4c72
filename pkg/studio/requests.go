package studio

import (
	"encoding/json"
	"io"
	"time"
)

// Request DTOs

// Upload is an image supplied with a create request.
type Upload struct {
	Reader      io.Reader
	Filename    string // original client file name; only its extension is kept
	ContentType string
}

// CreateProjectRequest contains parameters for creating a project
type CreateProjectRequest struct {
	Title       string
	Category    string
	Description string
	Date        time.Time // zero means creation time
	Featured    bool
	Image       *Upload
}

// CreatePostRequest contains parameters for creating a blog post
type CreatePostRequest struct {
	Title    string
	Category string
	Content  string
	Author   string
	Image    *Upload
}

// CreateTeamMemberRequest contains parameters for creating a team member.
// Social is the raw JSON sub-payload; empty means no social handles.
type CreateTeamMemberRequest struct {
	Name   string
	Role   string
	Bio    string
	Social json.RawMessage
	Image  *Upload
}

// SubmitContactRequest contains the public contact form fields
type SubmitContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Service string `json:"service,omitempty"`
	Message string `json:"message"`
}

// SubscribeRequest contains the newsletter form fields
type SubscribeRequest struct {
	Email string `json:"email"`
}
