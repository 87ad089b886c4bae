package model

import (
	"time"

	"telegram-job-scout/internal/domain"

	"github.com/oklog/ulid/v2"
)

// ResumeSource is a user-submitted source document, already normalized to
// text. Immutable after creation; read by the resume build flow.
type ResumeSource struct {
	ID           string
	UserID       string
	SourceFile   string
	OriginalFile string
	CreatedAt    time.Time
}

func NewResumeSource(userID, sourceFile, originalFile string) (*ResumeSource, error) {
	if userID == "" || sourceFile == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &ResumeSource{
		ID:           ulid.Make().String(),
		UserID:       userID,
		SourceFile:   sourceFile,
		OriginalFile: originalFile,
		CreatedAt:    time.Now(),
	}, nil
}
