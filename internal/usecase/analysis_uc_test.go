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

func seedUserWithResume(t *testing.T, users *memUserRepo, files *memFiles, name string) *model.User {
	t.Helper()
	u, err := model.NewUser("", name)
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	u.ResumeFile = name + "_resume.md"
	if err := users.Save(context.Background(), repository.NoTX, u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if _, err := files.Write(context.Background(), adapter.FileResume, u.ResumeFile, []byte("resume of "+name)); err != nil {
		t.Fatalf("write resume: %v", err)
	}
	return u
}

func seedPosting(t *testing.T, postings *memPostingRepo, url string) *model.JobPosting {
	t.Helper()
	p, err := model.NewJobPosting("Backend Engineer", "Acme", "Seoul", "short description", url)
	if err != nil {
		t.Fatalf("new posting: %v", err)
	}
	if err := postings.SaveMany(context.Background(), repository.NoTX, []*model.JobPosting{p}); err != nil {
		t.Fatalf("save posting: %v", err)
	}
	return p
}

func newAnalysisFixture() (*analysisUC, *memUserRepo, *memPostingRepo, *memFiles) {
	users := newMemUserRepo()
	postings := newMemPostingRepo()
	files := newMemFiles()
	ai := &mockAI{
		ChatFunc: func(ctx context.Context, model string, messages []adapter.Message) (string, error) {
			return "## Summary\nstrong fit", nil
		},
	}
	uc := NewAnalysisUseCase(users, postings, ai, files, "gpt-4o-mini", 0, testLogger())
	return uc, users, postings, files
}

func TestAnalysisUC_RunForPosting(t *testing.T) {
	uc, users, postings, files := newAnalysisFixture()
	ctx := context.Background()

	u := seedUserWithResume(t, users, files, "alex")
	p := seedPosting(t, postings, "https://jobs.example.com/1")
	p.ContentDoc = "acme.md"
	if _, err := files.Write(ctx, adapter.FileJobContent, "acme.md", []byte("full job content")); err != nil {
		t.Fatalf("write content: %v", err)
	}

	res, err := uc.RunForPosting(ctx, p, u.ID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(res.Report, "strong fit") {
		t.Errorf("report = %q", res.Report)
	}
	if res.UserID != u.ID {
		t.Errorf("user id = %s", res.UserID)
	}
	if res.ReportPath == "" {
		t.Error("report was not saved")
	}
	names, _ := files.List(ctx, adapter.FileReport)
	if len(names) != 1 {
		t.Errorf("reports stored: %v", names)
	}
}

func TestAnalysisUC_FallsBackToDescription(t *testing.T) {
	uc, users, postings, files := newAnalysisFixture()
	ctx := context.Background()

	var seenContent string
	uc.ai = &mockAI{
		ChatFunc: func(ctx context.Context, model string, messages []adapter.Message) (string, error) {
			seenContent = messages[0].Content
			return "report", nil
		},
	}

	u := seedUserWithResume(t, users, files, "alex")
	// ContentDoc points at a file that does not exist.
	p := seedPosting(t, postings, "https://jobs.example.com/1")
	p.ContentDoc = "missing.md"

	if _, err := uc.RunForPosting(ctx, p, u.ID); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(seenContent, "short description") {
		t.Error("prompt did not fall back to the posting description")
	}
}

func TestAnalysisUC_RandomUserWhenUnspecified(t *testing.T) {
	uc, users, postings, files := newAnalysisFixture()
	ctx := context.Background()

	seedUserWithResume(t, users, files, "alex")
	seedUserWithResume(t, users, files, "blair")
	p := seedPosting(t, postings, "https://jobs.example.com/1")

	uc.pickIndex = func(n int) int {
		if n != 2 {
			t.Errorf("candidate count = %d", n)
		}
		return 1
	}
	res, err := uc.RunForPosting(ctx, p, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	all, _ := users.ListAll(ctx, repository.NoTX)
	if res.UserID != all[1].ID {
		t.Errorf("picked %s, expected %s", res.UserID, all[1].ID)
	}
}

func TestAnalysisUC_NoUsers(t *testing.T) {
	uc, _, postings, _ := newAnalysisFixture()
	p := seedPosting(t, postings, "https://jobs.example.com/1")

	_, err := uc.RunForPosting(context.Background(), p, "")
	if !errors.Is(err, domain.ErrMissingUser) {
		t.Errorf("expected ErrMissingUser, got %v", err)
	}
	var se *workflow.StageError
	if !errors.As(err, &se) || se.Stage != "pick-resume" {
		t.Errorf("wrong failing stage: %v", err)
	}
}

func TestAnalysisUC_UserWithoutResume(t *testing.T) {
	uc, users, postings, _ := newAnalysisFixture()
	ctx := context.Background()

	u, _ := model.NewUser("", "alex")
	if err := users.Save(ctx, repository.NoTX, u); err != nil {
		t.Fatalf("save: %v", err)
	}
	p := seedPosting(t, postings, "https://jobs.example.com/1")

	if _, err := uc.RunForPosting(ctx, p, u.ID); !errors.Is(err, domain.ErrNoResume) {
		t.Errorf("expected ErrNoResume, got %v", err)
	}
}

func TestAnalysisUC_RunUsesOldestUnread(t *testing.T) {
	uc, users, postings, files := newAnalysisFixture()
	ctx := context.Background()

	u := seedUserWithResume(t, users, files, "alex")
	older := seedPosting(t, postings, "https://jobs.example.com/old")
	newer := seedPosting(t, postings, "https://jobs.example.com/new")
	// Make ordering unambiguous.
	for _, p := range postings.postings {
		if p.URL == newer.URL {
			p.CreatedAt = older.CreatedAt.Add(1)
		}
	}

	res, err := uc.Run(ctx, u.ID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Posting.URL != older.URL {
		t.Errorf("analyzed %s, expected the oldest %s", res.Posting.URL, older.URL)
	}
}

func TestAnalysisUC_RunWithEmptyQueue(t *testing.T) {
	uc, users, _, files := newAnalysisFixture()
	seedUserWithResume(t, users, files, "alex")

	if _, err := uc.Run(context.Background(), ""); !errors.Is(err, domain.ErrNoUnread) {
		t.Errorf("expected ErrNoUnread, got %v", err)
	}
}
