package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"telegram-job-scout/internal/domain"
	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/domain/ports/adapter"
	"telegram-job-scout/internal/domain/ports/repository"
	"telegram-job-scout/internal/infra/logging"
	"telegram-job-scout/internal/infra/metrics"
	"telegram-job-scout/internal/infra/storage"
	"telegram-job-scout/internal/workflow"
)

// Compile-time check
var _ AnalysisUseCase = (*analysisUC)(nil)

// AnalysisResult carries the rendered fit report.
type AnalysisResult struct {
	Report     string
	ReportPath string
	Posting    *model.JobPosting
	UserID     string
}

// AnalysisUseCase scores how well a user's resume fits a stored posting.
// Run picks the oldest unread posting; RunForPosting analyzes a given one
// (the scheduler path).
type AnalysisUseCase interface {
	Run(ctx context.Context, userID string) (*AnalysisResult, error)
	RunForPosting(ctx context.Context, posting *model.JobPosting, userID string) (*AnalysisResult, error)
}

type analysisUC struct {
	users           repository.UserRepository
	postings        repository.JobPostingRepository
	ai              adapter.AIServiceAdapter
	files           adapter.FileStore
	model           string
	maxPromptTokens int
	log             *zerolog.Logger

	// pickIndex selects among candidate users; replaced in tests.
	pickIndex func(n int) int
}

func NewAnalysisUseCase(
	users repository.UserRepository,
	postings repository.JobPostingRepository,
	ai adapter.AIServiceAdapter,
	files adapter.FileStore,
	model string,
	maxPromptTokens int,
	logger *zerolog.Logger,
) *analysisUC {
	l := logger.With().Str("component", "analysis-uc").Logger()
	return &analysisUC{
		users:           users,
		postings:        postings,
		ai:              ai,
		files:           files,
		model:           model,
		maxPromptTokens: maxPromptTokens,
		log:             &l,
		pickIndex:       rand.Intn,
	}
}

type analysisState struct {
	userID  string
	posting *model.JobPosting

	content    string
	user       *model.User
	resume     string
	report     string
	reportPath string
}

const analysisPrompt = `You are a career advisor. Given a candidate resume and a job posting, write a fit analysis in markdown with these sections: Summary, Strengths, Gaps, Verdict (one of: strong fit, possible fit, weak fit).

## Resume
%s

## Job Posting
%s`

func (a *analysisUC) Run(ctx context.Context, userID string) (*AnalysisResult, error) {
	defer logging.TraceDuration(a.log, "AnalysisUC.Run")()

	posting, err := a.postings.FindOldestUnread(ctx, repository.NoTX)
	if err != nil {
		if errors.Is(err, domain.ErrNoUnread) {
			return nil, domain.ErrNoUnread
		}
		return nil, err
	}
	return a.RunForPosting(ctx, posting, userID)
}

func (a *analysisUC) RunForPosting(ctx context.Context, posting *model.JobPosting, userID string) (*AnalysisResult, error) {
	defer logging.TraceDuration(a.log, "AnalysisUC.RunForPosting")()
	start := time.Now()

	if posting == nil {
		return nil, domain.ErrInvalidArgument
	}

	state := &analysisState{userID: userID, posting: posting}
	_, err := workflow.Run(ctx, a.log, a.stages(), state)

	status := "ok"
	if err != nil {
		status = "failed"
		var se *workflow.StageError
		if errors.As(err, &se) {
			metrics.IncStageFailure("analysis", se.Stage)
		}
	}
	metrics.IncPipelineRun("analysis", status)
	metrics.ObservePipelineDuration("analysis", time.Since(start).Milliseconds())

	if err != nil {
		return nil, err
	}
	return &AnalysisResult{
		Report:     state.report,
		ReportPath: state.reportPath,
		Posting:    state.posting,
		UserID:     state.user.ID,
	}, nil
}

func (a *analysisUC) stages() []workflow.Stage[analysisState] {
	return []workflow.Stage[analysisState]{
		{Name: "load-detailed-content", Run: a.loadContent},
		{Name: "pick-resume", Run: a.pickResume},
		{Name: "score-fit", Run: a.scoreFit},
		{Name: "render-report", Run: a.renderReport},
	}
}

// loadContent prefers the full content document; the short scraped
// description is the fallback when no document exists or reading fails.
func (a *analysisUC) loadContent(ctx context.Context, s *analysisState) error {
	if s.posting.ContentDoc != "" {
		b, err := a.files.Read(ctx, adapter.FileJobContent, s.posting.ContentDoc)
		if err == nil && len(b) > 0 {
			s.content = string(b)
			return nil
		}
		a.log.Debug().Str("doc", s.posting.ContentDoc).Msg("content doc unreadable, using description")
	}
	if s.posting.Description == "" {
		return fmt.Errorf("posting %s has no content", s.posting.ID)
	}
	s.content = s.posting.Description
	return nil
}

func (a *analysisUC) pickResume(ctx context.Context, s *analysisState) error {
	var user *model.User
	if s.userID != "" {
		u, err := a.users.FindByID(ctx, repository.NoTX, s.userID)
		if err != nil {
			return err
		}
		user = u
	} else {
		all, err := a.users.ListAll(ctx, repository.NoTX)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			return domain.ErrMissingUser
		}
		user = all[a.pickIndex(len(all))]
	}
	if !user.HasResume() {
		return domain.ErrNoResume
	}
	b, err := a.files.Read(ctx, adapter.FileResume, user.ResumeFile)
	if err != nil {
		return fmt.Errorf("read resume %s: %w", user.ResumeFile, err)
	}
	s.user = user
	s.resume = string(b)
	return nil
}

func (a *analysisUC) scoreFit(ctx context.Context, s *analysisState) error {
	content := s.content
	msg := []adapter.Message{{Role: "user", Content: fmt.Sprintf(analysisPrompt, s.resume, content)}}
	if n, err := a.ai.CountTokens(ctx, a.model, msg); err == nil && a.maxPromptTokens > 0 && n > a.maxPromptTokens {
		// Trim the posting content proportionally; the resume stays intact.
		keep := len(content) * a.maxPromptTokens / n
		if keep < len(content) {
			content = content[:keep]
			msg[0].Content = fmt.Sprintf(analysisPrompt, s.resume, content)
		}
	}
	report, err := a.ai.Chat(ctx, a.model, msg)
	if err != nil {
		return fmt.Errorf("fit analysis: %w", err)
	}
	if report == "" {
		return errors.New("empty analysis response")
	}
	s.report = report
	return nil
}

func (a *analysisUC) renderReport(ctx context.Context, s *analysisState) error {
	name := storage.SafeFileName(s.posting.Company, s.posting.Title, s.user.Name)
	if name == "" {
		name = s.posting.ID
	}
	name += "_report.md"
	path, err := a.files.Write(ctx, adapter.FileReport, name, []byte(s.report))
	if err != nil {
		return err
	}
	s.reportPath = path
	return nil
}
