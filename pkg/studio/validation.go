package studio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxMessageLength = 5000
	maxFieldLength   = 300
	maxTextLength    = 100000
)

// required checks that a trimmed field is present and not longer than limit.
func required(field, value string, limit int) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return maxLen(field, value, limit)
}

func maxLen(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return invalid(field, fmt.Sprintf("must be at most %d characters", limit))
	}
	return nil
}

func validEmail(field, value string) error {
	if err := required(field, value, maxFieldLength); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	if err != nil || addr.Address != strings.TrimSpace(value) {
		return invalid(field, "is not a valid email address")
	}
	return nil
}

// NormalizeEmail trims and lower-cases an address so that subscriber
// uniqueness is case-insensitive.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseSocial decodes a team member's social sub-payload. An empty payload
// yields the empty structure; malformed JSON or unknown keys are rejected.
func ParseSocial(raw []byte) (Social, error) {
	var social Social
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return social, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&social); err != nil {
		return Social{}, invalid("social", fmt.Sprintf("malformed social payload: %v", err))
	}
	if dec.More() {
		return Social{}, invalid("social", "unexpected data after social object")
	}

	for field, value := range map[string]string{
		"social.instagram": social.Instagram,
		"social.linkedin":  social.LinkedIn,
		"social.twitter":   social.Twitter,
	} {
		if err := maxLen(field, value, maxFieldLength); err != nil {
			return Social{}, err
		}
	}
	return social, nil
}

// Validate checks the contact form fields
func (r SubmitContactRequest) Validate() error {
	if err := required("name", r.Name, maxFieldLength); err != nil {
		return err
	}
	if err := validEmail("email", r.Email); err != nil {
		return err
	}
	if err := maxLen("company", r.Company, maxFieldLength); err != nil {
		return err
	}
	if err := maxLen("service", r.Service, maxFieldLength); err != nil {
		return err
	}
	return required("message", r.Message, maxMessageLength)
}

// Validate checks the newsletter form fields
func (r SubscribeRequest) Validate() error {
	return validEmail("email", r.Email)
}

// Validate checks the project fields
func (r CreateProjectRequest) Validate() error {
	if err := required("title", r.Title, maxFieldLength); err != nil {
		return err
	}
	if err := required("category", r.Category, maxFieldLength); err != nil {
		return err
	}
	if err := required("description", r.Description, maxTextLength); err != nil {
		return err
	}
	return validUpload(r.Image)
}

// Validate checks the post fields
func (r CreatePostRequest) Validate() error {
	if err := required("title", r.Title, maxFieldLength); err != nil {
		return err
	}
	if err := required("category", r.Category, maxFieldLength); err != nil {
		return err
	}
	if err := required("content", r.Content, maxTextLength); err != nil {
		return err
	}
	if err := required("author", r.Author, maxFieldLength); err != nil {
		return err
	}
	return validUpload(r.Image)
}

// Validate checks the team member fields; the social payload is checked by
// ParseSocial.
func (r CreateTeamMemberRequest) Validate() error {
	if err := required("name", r.Name, maxFieldLength); err != nil {
		return err
	}
	if err := required("role", r.Role, maxFieldLength); err != nil {
		return err
	}
	if err := required("bio", r.Bio, maxTextLength); err != nil {
		return err
	}
	return validUpload(r.Image)
}

func validUpload(u *Upload) error {
	if u == nil {
		return nil
	}
	if u.Reader == nil {
		return invalid("image", "file body is missing")
	}
	return nil
}
