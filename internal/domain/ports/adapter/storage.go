package adapter

import "context"

// FileStore is the path-addressed file capability used by the pipelines.
// Paths are relative to a root chosen by the implementation per kind.
type FileStore interface {
	Write(ctx context.Context, kind FileKind, name string, content []byte) (string, error)
	Read(ctx context.Context, kind FileKind, name string) ([]byte, error)
	List(ctx context.Context, kind FileKind) ([]string, error)
}

// FileKind selects the storage root a file lives under.
type FileKind string

const (
	FileResumeSource FileKind = "resume_sources"
	FileJobContent   FileKind = "job_content"
	FileResume       FileKind = "resumes"
	FileReport       FileKind = "reports"
)
