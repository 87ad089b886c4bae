package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
var _ ExtractionUseCase = (*extractionUC)(nil)

// ExtractionResult is the caller-facing outcome of one extraction run.
type ExtractionResult struct {
	Success   bool
	Posting   *model.JobPosting
	SavedPath string
	Err       string
}

// ExtractionUseCase turns one posting URL into a stored, deduplicated
// JobPosting row plus a content document on disk.
type ExtractionUseCase interface {
	Run(ctx context.Context, url, userID string) (*ExtractionResult, error)
}

type extractionUC struct {
	postings repository.JobPostingRepository
	userMap  repository.JobPostingUserMapRepository
	ai       adapter.AIServiceAdapter
	fetcher  adapter.Fetcher
	browser  adapter.Browser
	files    adapter.FileStore
	model    string
	log      *zerolog.Logger
}

func NewExtractionUseCase(
	postings repository.JobPostingRepository,
	userMap repository.JobPostingUserMapRepository,
	ai adapter.AIServiceAdapter,
	fetcher adapter.Fetcher,
	browser adapter.Browser,
	files adapter.FileStore,
	model string,
	logger *zerolog.Logger,
) *extractionUC {
	l := logger.With().Str("component", "extraction-uc").Logger()
	return &extractionUC{
		postings: postings,
		userMap:  userMap,
		ai:       ai,
		fetcher:  fetcher,
		browser:  browser,
		files:    files,
		model:    model,
		log:      &l,
	}
}

type extractionState struct {
	url    string
	userID string

	html      string
	text      string
	posting   *model.JobPosting
	savedPath string
}

const extractPrompt = `You are given the text of a job posting page. Extract the posting fields and answer with a single JSON object:
{"title": "", "company": "", "location": "", "description": "", "posted_at": ""}
Use empty strings for fields the page does not state. The description should be a concise plain-text summary of duties and requirements.

Page text:
%s`

func (e *extractionUC) Run(ctx context.Context, url, userID string) (*ExtractionResult, error) {
	defer logging.TraceDuration(e.log, "ExtractionUC.Run")()
	start := time.Now()

	if url == "" {
		return &ExtractionResult{Err: "url is required"}, domain.ErrInvalidArgument
	}

	state := &extractionState{url: url, userID: userID}
	_, err := workflow.Run(ctx, e.log, e.stages(), state)

	status := "ok"
	if err != nil {
		status = "failed"
		var se *workflow.StageError
		if errors.As(err, &se) {
			metrics.IncStageFailure("extraction", se.Stage)
		}
	}
	metrics.IncPipelineRun("extraction", status)
	metrics.ObservePipelineDuration("extraction", time.Since(start).Milliseconds())

	res := &ExtractionResult{
		Success:   err == nil,
		Posting:   state.posting,
		SavedPath: state.savedPath,
	}
	if err != nil {
		res.Err = err.Error()
	}
	return res, err
}

func (e *extractionUC) stages() []workflow.Stage[extractionState] {
	return []workflow.Stage[extractionState]{
		{Name: "fetch-raw", Run: e.fetchRaw},
		{Name: "normalize-to-text", Run: e.normalizeToText},
		{Name: "extract-structured-fields", Run: e.extractFields},
		{Name: "persist-and-dedup", Run: e.persistAndDedup},
		{Name: "map-to-user", Run: e.mapToUser},
	}
}

func (e *extractionUC) fetchRaw(ctx context.Context, s *extractionState) error {
	res, err := e.fetcher.Fetch(ctx, s.url)
	if err != nil {
		if e.browser == nil {
			return err
		}
		// Blocked or broken over plain HTTP; try the rendered path.
		e.log.Debug().Str("url", s.url).Err(err).Msg("plain fetch failed, rendering")
		html, rerr := e.browser.Render(ctx, s.url)
		if rerr != nil {
			return fmt.Errorf("fetch failed (%v) and render failed: %w", err, rerr)
		}
		s.html = html
		return nil
	}
	s.html = res.HTML
	return nil
}

func (e *extractionUC) normalizeToText(ctx context.Context, s *extractionState) error {
	text, err := fetch.ExtractMainText(s.html)
	if err != nil {
		return err
	}
	if fetch.NeedsBrowser(text) && e.browser != nil {
		html, err := e.browser.Render(ctx, s.url)
		if err == nil {
			if rendered, rerr := fetch.ExtractMainText(html); rerr == nil && len(rendered) > len(text) {
				text = rendered
			}
		}
	}
	if text == "" {
		return fmt.Errorf("no text content at %s", s.url)
	}
	s.text = text
	return nil
}

func (e *extractionUC) extractFields(ctx context.Context, s *extractionState) error {
	raw, err := e.ai.ChatJSON(ctx, e.model, []adapter.Message{
		{Role: "user", Content: fmt.Sprintf(extractPrompt, s.text)},
	})
	if err != nil {
		return fmt.Errorf("field extraction: %w", err)
	}
	var fields struct {
		Title       string `json:"title"`
		Company     string `json:"company"`
		Location    string `json:"location"`
		Description string `json:"description"`
		PostedAt    string `json:"posted_at"`
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return fmt.Errorf("unparseable extraction response: %w", err)
	}
	p, err := model.NewJobPosting(fields.Title, fields.Company, fields.Location, fields.Description, s.url)
	if err != nil {
		return err
	}
	p.PostedAt = fields.PostedAt
	s.posting = p
	return nil
}

func (e *extractionUC) persistAndDedup(ctx context.Context, s *extractionState) error {
	if err := e.postings.SaveMany(ctx, repository.NoTX, []*model.JobPosting{s.posting}); err != nil {
		return err
	}
	metrics.AddPostingsSaved(1)

	// Duplicate URLs are silently ignored by the store; re-read to learn the
	// canonical row this url maps to.
	stored, err := e.postings.FindByURL(ctx, repository.NoTX, s.posting.URL)
	if err != nil {
		return err
	}
	s.posting = stored

	// The posting id keeps the file name unique when distinct urls share a
	// company and title.
	name := storage.SafeFileName(stored.Company, stored.Title)
	if name == "" {
		name = stored.ID
	} else {
		name += "_" + stored.ID
	}
	name += ".md"
	path, err := e.files.Write(ctx, adapter.FileJobContent, name, []byte(s.text))
	if err != nil {
		return err
	}
	s.savedPath = path
	if err := e.postings.UpdateContentDoc(ctx, repository.NoTX, stored.ID, name); err != nil {
		return err
	}
	stored.ContentDoc = name
	return nil
}

func (e *extractionUC) mapToUser(ctx context.Context, s *extractionState) error {
	if s.userID == "" {
		return nil
	}
	return e.userMap.Save(ctx, repository.NoTX, &model.JobPostingUserMap{
		UserID:       s.userID,
		JobPostingID: s.posting.ID,
	})
}
