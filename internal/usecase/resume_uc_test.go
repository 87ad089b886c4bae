package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"telegram-job-scout/internal/domain"
	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/domain/ports/adapter"
	"telegram-job-scout/internal/domain/ports/repository"
	"telegram-job-scout/internal/workflow"
)

func newResumeFixture() (*resumeUC, *memUserRepo, *memSourceRepo, *memFiles) {
	users := newMemUserRepo()
	sources := newMemSourceRepo()
	files := newMemFiles()
	ai := &mockAI{
		ChatFunc: func(ctx context.Context, model string, messages []adapter.Message) (string, error) {
			if strings.Contains(messages[0].Content, "outline") && !strings.Contains(messages[0].Content, "## Outline") {
				return "1. Experience\n2. Skills", nil
			}
			return "# Resume\nExperience...", nil
		},
	}
	uc := NewResumeUseCase(users, sources, ai, files, "gpt-4o-mini", testLogger())
	return uc, users, sources, files
}

func seedSource(t *testing.T, uc *resumeUC, userID string) *model.ResumeSource {
	t.Helper()
	src, err := uc.UploadSource(context.Background(), userID, "career.md", []byte("ten years of Go"))
	if err != nil {
		t.Fatalf("upload source: %v", err)
	}
	return src
}

func TestResumeUC_Run(t *testing.T) {
	uc, users, _, files := newResumeFixture()
	ctx := context.Background()

	u, _ := model.NewUser("", "alex")
	if err := users.Save(ctx, repository.NoTX, u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	seedSource(t, uc, u.ID)

	res, err := uc.Run(ctx, u.ID, "backend engineer")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(res.FinalResume, "Resume") {
		t.Errorf("final resume = %q", res.FinalResume)
	}
	if res.SavedPath == "" {
		t.Error("resume was not saved")
	}

	got, _ := users.FindByID(ctx, repository.NoTX, u.ID)
	if !got.HasResume() {
		t.Error("user resume reference not updated")
	}
	if _, err := files.Read(ctx, adapter.FileResume, got.ResumeFile); err != nil {
		t.Errorf("stored resume unreadable: %v", err)
	}
}

// A run without a user id still drafts and stores the resume; only the final
// stage fails.
func TestResumeUC_MissingUserFailsAtFinalStage(t *testing.T) {
	uc, _, _, files := newResumeFixture()
	ctx := context.Background()

	// Source file on disk without a user row.
	if _, err := files.Write(ctx, adapter.FileResumeSource, "anon.md", []byte("source text")); err != nil {
		t.Fatalf("write source: %v", err)
	}

	_, err := uc.Run(ctx, "", "")
	if !errors.Is(err, domain.ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}
	var se *workflow.StageError
	if !errors.As(err, &se) || se.Stage != "update-user-resume-reference" {
		t.Errorf("failure must come from the final stage, got %v", err)
	}

	// Earlier stages completed: the draft exists on disk.
	names, _ := files.List(ctx, adapter.FileResume)
	if len(names) != 1 {
		t.Errorf("draft not persisted before the failure: %v", names)
	}
}

func TestResumeUC_NoSources(t *testing.T) {
	uc, users, _, _ := newResumeFixture()
	ctx := context.Background()

	u, _ := model.NewUser("", "alex")
	_ = users.Save(ctx, repository.NoTX, u)

	_, err := uc.Run(ctx, u.ID, "")
	var se *workflow.StageError
	if !errors.As(err, &se) || se.Stage != "enumerate-source-files" {
		t.Errorf("expected enumerate failure, got %v", err)
	}
}

func TestResumeUC_UploadSource(t *testing.T) {
	uc, _, sources, files := newResumeFixture()
	ctx := context.Background()

	src, err := uc.UploadSource(ctx, "user-1", "notes.md", []byte("raw notes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if src.UserID != "user-1" || src.OriginalFile != "notes.md" {
		t.Errorf("source row: %+v", src)
	}

	rows, _ := sources.ListByUser(ctx, repository.NoTX, "user-1")
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	b, err := files.Read(ctx, adapter.FileResumeSource, rows[0].SourceFile)
	if err != nil {
		t.Fatalf("read stored source: %v", err)
	}
	if string(b) != "raw notes" {
		t.Errorf("stored content = %q", b)
	}
}

func TestResumeUC_UploadSourceNormalizesHTML(t *testing.T) {
	uc, _, sources, files := newResumeFixture()
	ctx := context.Background()

	html := "<html><body><main>profile text</main></body></html>"
	_, err := uc.UploadSource(ctx, "user-1", "profile.html", []byte(html))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	rows, _ := sources.ListByUser(ctx, repository.NoTX, "user-1")
	b, _ := files.Read(ctx, adapter.FileResumeSource, rows[0].SourceFile)
	if strings.Contains(string(b), "<body>") {
		t.Errorf("html not normalized: %q", b)
	}
	if !strings.Contains(string(b), "profile text") {
		t.Errorf("content lost: %q", b)
	}
}

func TestResumeUC_UploadSourceValidation(t *testing.T) {
	uc, _, _, _ := newResumeFixture()
	ctx := context.Background()

	if _, err := uc.UploadSource(ctx, "", "a.md", []byte("x")); !errors.Is(err, domain.ErrMissingUser) {
		t.Errorf("missing user: got %v", err)
	}
	if _, err := uc.UploadSource(ctx, "u", "a.md", nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("empty content: got %v", err)
	}
}
