package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-job-scout/internal/domain"
	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/domain/ports/adapter"
	"telegram-job-scout/internal/domain/ports/repository"
	"telegram-job-scout/internal/infra/fetch"
	"telegram-job-scout/internal/infra/logging"
	"telegram-job-scout/internal/infra/metrics"
	"telegram-job-scout/internal/infra/storage"
	"telegram-job-scout/internal/workflow"
)

// Compile-time check
var _ ResumeUseCase = (*resumeUC)(nil)

// ResumeResult is the outcome of a resume build run.
type ResumeResult struct {
	FinalResume string
	SavedPath   string
}

// ResumeUseCase builds a resume from the user's uploaded source documents.
// The user reference is only validated in the final stage; a run without a
// user id produces and stores a draft but fails when recording it.
type ResumeUseCase interface {
	Run(ctx context.Context, userID, jobTarget string) (*ResumeResult, error)
	UploadSource(ctx context.Context, userID, filename string, content []byte) (*model.ResumeSource, error)
}

type resumeUC struct {
	users   repository.UserRepository
	sources repository.ResumeSourceRepository
	ai      adapter.AIServiceAdapter
	files   adapter.FileStore
	model   string
	log     *zerolog.Logger
}

func NewResumeUseCase(
	users repository.UserRepository,
	sources repository.ResumeSourceRepository,
	ai adapter.AIServiceAdapter,
	files adapter.FileStore,
	model string,
	logger *zerolog.Logger,
) *resumeUC {
	l := logger.With().Str("component", "resume-uc").Logger()
	return &resumeUC{
		users:   users,
		sources: sources,
		ai:      ai,
		files:   files,
		model:   model,
		log:     &l,
	}
}

type resumeState struct {
	userID    string
	jobTarget string

	sourceTexts []string
	plan        string
	draft       string
	fileName    string
	savedPath   string
}

const planPrompt = `You are a resume writer. Given the source documents below, produce a short outline for a resume%s. List the sections to include and which source material feeds each.

%s`

const draftPrompt = `Write the final resume in markdown following this outline. Use only facts present in the source documents. No commentary, just the resume.

## Outline
%s

## Source documents
%s`

func (r *resumeUC) Run(ctx context.Context, userID, jobTarget string) (*ResumeResult, error) {
	defer logging.TraceDuration(r.log, "ResumeUC.Run")()
	start := time.Now()

	state := &resumeState{userID: userID, jobTarget: jobTarget}
	_, err := workflow.Run(ctx, r.log, r.stages(), state)

	status := "ok"
	if err != nil {
		status = "failed"
		var se *workflow.StageError
		if errors.As(err, &se) {
			metrics.IncStageFailure("resume_build", se.Stage)
		}
	}
	metrics.IncPipelineRun("resume_build", status)
	metrics.ObservePipelineDuration("resume_build", time.Since(start).Milliseconds())

	if err != nil {
		return nil, err
	}
	return &ResumeResult{FinalResume: state.draft, SavedPath: state.savedPath}, nil
}

func (r *resumeUC) stages() []workflow.Stage[resumeState] {
	return []workflow.Stage[resumeState]{
		{Name: "enumerate-source-files", Run: r.enumerateSources},
		{Name: "plan", Run: r.plan},
		{Name: "draft", Run: r.draft},
		{Name: "persist-to-storage", Run: r.persist},
		{Name: "update-user-resume-reference", Run: r.updateUserReference},
	}
}

// enumerateSources reads the user's recorded source documents; with no user
// id every file under the sources root is used. The missing-user failure is
// deliberately deferred to the final stage.
func (r *resumeUC) enumerateSources(ctx context.Context, s *resumeState) error {
	var names []string
	if s.userID != "" {
		rows, err := r.sources.ListByUser(ctx, repository.NoTX, s.userID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			names = append(names, row.SourceFile)
		}
	} else {
		all, err := r.files.List(ctx, adapter.FileResumeSource)
		if err != nil {
			return err
		}
		names = all
	}
	if len(names) == 0 {
		return errors.New("no resume source documents")
	}
	for _, name := range names {
		b, err := r.files.Read(ctx, adapter.FileResumeSource, name)
		if err != nil {
			return fmt.Errorf("read source %s: %w", name, err)
		}
		s.sourceTexts = append(s.sourceTexts, fmt.Sprintf("### %s\n%s", name, b))
	}
	return nil
}

func (r *resumeUC) plan(ctx context.Context, s *resumeState) error {
	target := ""
	if s.jobTarget != "" {
		target = fmt.Sprintf(" targeting this role: %s", s.jobTarget)
	}
	plan, err := r.ai.Chat(ctx, r.model, []adapter.Message{
		{Role: "user", Content: fmt.Sprintf(planPrompt, target, strings.Join(s.sourceTexts, "\n\n"))},
	})
	if err != nil {
		return fmt.Errorf("resume planning: %w", err)
	}
	if plan == "" {
		return errors.New("empty plan response")
	}
	s.plan = plan
	return nil
}

func (r *resumeUC) draft(ctx context.Context, s *resumeState) error {
	draft, err := r.ai.Chat(ctx, r.model, []adapter.Message{
		{Role: "user", Content: fmt.Sprintf(draftPrompt, s.plan, strings.Join(s.sourceTexts, "\n\n"))},
	})
	if err != nil {
		return fmt.Errorf("resume drafting: %w", err)
	}
	if draft == "" {
		return errors.New("empty draft response")
	}
	s.draft = draft
	return nil
}

func (r *resumeUC) persist(ctx context.Context, s *resumeState) error {
	name := storage.SafeFileName("resume", s.userID)
	if name == "" {
		name = "resume"
	}
	name += ".md"
	path, err := r.files.Write(ctx, adapter.FileResume, name, []byte(s.draft))
	if err != nil {
		return err
	}
	s.fileName = name
	s.savedPath = path
	return nil
}

func (r *resumeUC) updateUserReference(ctx context.Context, s *resumeState) error {
	if s.userID == "" {
		return domain.ErrMissingUser
	}
	return r.users.UpdateResumeFile(ctx, repository.NoTX, s.userID, s.fileName)
}

// UploadSource normalizes an uploaded document to text, stores it under the
// sources root and records the ResumeSource row.
func (r *resumeUC) UploadSource(ctx context.Context, userID, filename string, content []byte) (*model.ResumeSource, error) {
	defer logging.TraceDuration(r.log, "ResumeUC.UploadSource")()

	if userID == "" {
		return nil, domain.ErrMissingUser
	}
	if len(content) == 0 {
		return nil, domain.ErrInvalidArgument
	}

	text := string(content)
	if strings.Contains(text, "<html") || strings.Contains(text, "<body") {
		if t, err := fetch.ExtractMainText(text); err == nil && t != "" {
			text = t
		}
	}

	name := storage.SafeFileName(strings.TrimSuffix(filename, ".md"), userID)
	if name == "" {
		name = userID
	}
	name += ".md"
	if _, err := r.files.Write(ctx, adapter.FileResumeSource, name, []byte(text)); err != nil {
		return nil, err
	}

	src, err := model.NewResumeSource(userID, name, filename)
	if err != nil {
		return nil, err
	}
	if err := r.sources.Save(ctx, repository.NoTX, src); err != nil {
		return nil, err
	}
	return src, nil
}
