package model

import (
	"strings"
	"time"

	"telegram-job-scout/internal/domain"

	"github.com/google/uuid"
)

// User is a domain entity representing a person the bot works for.
// ResumeFile points at the generated resume artifact inside the resume
// storage root; empty until a resume build has completed for this user.
type User struct {
	ID         string
	Name       string
	ResumeFile string
	CreatedAt  time.Time
}

func NewUser(id, name string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

func (u *User) IsZero() bool    { return u == nil || u.ID == "" }
func (u *User) HasResume() bool { return u != nil && u.ResumeFile != "" }
