// Package forms holds the HTML form payloads and their validation rules.
// Handlers bind these with fiber's BodyParser; Validate returns a field
// error map the templates render next to each input.
package forms

import (
	"strconv"
	"strings"
	"time"

	"blogicum/internal/validation"
)

// PubDateLayout is the value format of an HTML datetime-local input.
const PubDateLayout = "2006-01-02T15:04"

const (
	maxTitleLen   = 256
	maxTextLen    = 50000
	maxCommentLen = 10000
)

// PostForm is the create/edit post payload.
type PostForm struct {
	Title      string `form:"title"`
	Text       string `form:"text"`
	PubDate    string `form:"pub_date"`
	CategoryID string `form:"category"`
	LocationID string `form:"location"`
	ImageURL   string `form:"image_url"`
}

// Validate trims and checks all fields, returning one message per bad field.
// An empty map means the form is good.
func (f *PostForm) Validate() map[string]string {
	f.Title = strings.TrimSpace(f.Title)
	f.Text = strings.TrimSpace(f.Text)
	f.PubDate = strings.TrimSpace(f.PubDate)

	errs := map[string]string{}
	if f.Title == "" {
		errs["title"] = "Title is required"
	} else if len(f.Title) > maxTitleLen {
		errs["title"] = "Title must not exceed 256 characters"
	}
	if f.Text == "" {
		errs["text"] = "Text is required"
	} else if len(f.Text) > maxTextLen {
		errs["text"] = "Text is too long"
	}
	if f.PubDate != "" {
		if _, err := time.Parse(PubDateLayout, f.PubDate); err != nil {
			errs["pub_date"] = "Publication date must look like 2006-01-02T15:04"
		}
	}
	if _, ok := parseOptionalID(f.CategoryID); !ok {
		errs["category"] = "Choose a valid category"
	}
	if _, ok := parseOptionalID(f.LocationID); !ok {
		errs["location"] = "Choose a valid location"
	}
	return errs
}

// ParsedPubDate returns the chosen publication time, or now when the field
// was left empty. Call only after Validate passed.
func (f *PostForm) ParsedPubDate(now time.Time) time.Time {
	if f.PubDate == "" {
		return now
	}
	t, err := time.Parse(PubDateLayout, f.PubDate)
	if err != nil {
		return now
	}
	return t.UTC()
}

// ParsedCategoryID returns the selected category ID, or nil when none chosen.
func (f *PostForm) ParsedCategoryID() *uint {
	id, _ := parseOptionalID(f.CategoryID)
	return id
}

// ParsedLocationID returns the selected location ID, or nil when none chosen.
func (f *PostForm) ParsedLocationID() *uint {
	id, _ := parseOptionalID(f.LocationID)
	return id
}

// CommentForm is the add/edit comment payload.
type CommentForm struct {
	Text string `form:"text"`
}

func (f *CommentForm) Validate() map[string]string {
	f.Text = strings.TrimSpace(f.Text)

	errs := map[string]string{}
	if f.Text == "" {
		errs["text"] = "Comment text is required"
	} else if len(f.Text) > maxCommentLen {
		errs["text"] = "Comment is too long"
	}
	return errs
}

// ProfileForm is the edit-profile payload. It never carries the password;
// password changes go through a separate flow.
type ProfileForm struct {
	Username  string `form:"username"`
	Email     string `form:"email"`
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
}

func (f *ProfileForm) Validate() map[string]string {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)

	errs := map[string]string{}
	if err := validation.ValidateUsername(f.Username); err != nil {
		errs["username"] = err.Error()
	}
	if f.Email != "" {
		if err := validation.ValidateEmail(f.Email); err != nil {
			errs["email"] = err.Error()
		}
	}
	if len(f.FirstName) > 150 {
		errs["first_name"] = "First name is too long"
	}
	if len(f.LastName) > 150 {
		errs["last_name"] = "Last name is too long"
	}
	return errs
}

// SignupForm is the registration payload.
type SignupForm struct {
	Username  string `form:"username"`
	Email     string `form:"email"`
	Password  string `form:"password"`
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
}

func (f *SignupForm) Validate() map[string]string {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	errs := map[string]string{}
	if err := validation.ValidateUsername(f.Username); err != nil {
		errs["username"] = err.Error()
	}
	if err := validation.ValidateEmail(f.Email); err != nil {
		errs["email"] = err.Error()
	}
	if err := validation.ValidatePassword(f.Password); err != nil {
		errs["password"] = err.Error()
	}
	return errs
}

// LoginForm is the login payload.
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (f *LoginForm) Validate() map[string]string {
	f.Username = strings.TrimSpace(f.Username)

	errs := map[string]string{}
	if f.Username == "" {
		errs["username"] = "Username is required"
	}
	if f.Password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

// parseOptionalID parses a select-box value. Empty and "0" mean "none".
func parseOptionalID(raw string) (*uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return nil, false
	}
	id := uint(n)
	return &id, true
}
