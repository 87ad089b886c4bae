package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"telegram-job-scout/internal/domain"
	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/domain/ports/adapter"
	"telegram-job-scout/internal/domain/ports/repository"
	"telegram-job-scout/internal/infra/fetch"
	"telegram-job-scout/internal/infra/logging"
	"telegram-job-scout/internal/infra/metrics"
	"telegram-job-scout/internal/workflow"
)

// Compile-time check
var _ SearchUseCase = (*searchUC)(nil)

// SearchResult lists the postings stored during one search run. Duplicates
// against earlier runs are deduplicated at persistence, not here.
type SearchResult struct {
	Keywords []string
	Postings []*model.JobPosting
}

// SearchUseCase scrapes a job board for postings matching a user's resume.
// An explicit keyword skips derivation; otherwise keywords come from the
// resume text. A user with a stored resume is a hard requirement.
type SearchUseCase interface {
	Run(ctx context.Context, userID, keyword string) (*SearchResult, error)
}

type searchUC struct {
	users      repository.UserRepository
	ai         adapter.AIServiceAdapter
	files      adapter.FileStore
	browser    adapter.Browser
	extraction ExtractionUseCase

	model            string
	boardURLTemplate string
	maxPerKeyword    int
	log              *zerolog.Logger
}

func NewSearchUseCase(
	users repository.UserRepository,
	ai adapter.AIServiceAdapter,
	files adapter.FileStore,
	browser adapter.Browser,
	extraction ExtractionUseCase,
	model, boardURLTemplate string,
	maxPerKeyword int,
	logger *zerolog.Logger,
) *searchUC {
	l := logger.With().Str("component", "search-uc").Logger()
	return &searchUC{
		users:            users,
		ai:               ai,
		files:            files,
		browser:          browser,
		extraction:       extraction,
		model:            model,
		boardURLTemplate: boardURLTemplate,
		maxPerKeyword:    maxPerKeyword,
		log:              &l,
	}
}

type searchState struct {
	userID  string
	keyword string

	user     *model.User
	resume   string
	keywords []string
	postings []*model.JobPosting
}

const keywordsPrompt = `Derive up to 5 job search keywords from this resume. Answer with a single JSON object: {"keywords": ["", ...]}. Keywords should be short role or technology phrases a job board search understands.

Resume:
%s`

const listingPrompt = `Below is the text of a job board search results page. List the individual job postings you can identify. Answer with a single JSON object:
{"postings": [{"title": "", "company": "", "location": "", "url": ""}]}
Only include entries with a usable absolute url. At most %d entries.

Page text:
%s`

func (s *searchUC) Run(ctx context.Context, userID, keyword string) (*SearchResult, error) {
	defer logging.TraceDuration(s.log, "SearchUC.Run")()
	start := time.Now()

	state := &searchState{userID: userID, keyword: keyword}
	_, err := workflow.Run(ctx, s.log, s.stages(), state)

	status := "ok"
	if err != nil {
		status = "failed"
		var se *workflow.StageError
		if errors.As(err, &se) {
			metrics.IncStageFailure("search", se.Stage)
		}
	}
	metrics.IncPipelineRun("search", status)
	metrics.ObservePipelineDuration("search", time.Since(start).Milliseconds())

	if err != nil {
		return nil, err
	}
	return &SearchResult{Keywords: state.keywords, Postings: state.postings}, nil
}

func (s *searchUC) stages() []workflow.Stage[searchState] {
	return []workflow.Stage[searchState]{
		{Name: "load-resume-for-user", Run: s.loadResume},
		{Name: "derive-keywords", Run: s.deriveKeywords},
		{Name: "search-and-extract", Run: s.searchAndExtract},
	}
}

func (s *searchUC) loadResume(ctx context.Context, st *searchState) error {
	if st.userID == "" {
		return domain.ErrMissingUser
	}
	u, err := s.users.FindByID(ctx, repository.NoTX, st.userID)
	if err != nil {
		return err
	}
	if !u.HasResume() {
		return domain.ErrNoResume
	}
	b, err := s.files.Read(ctx, adapter.FileResume, u.ResumeFile)
	if err != nil {
		return fmt.Errorf("read resume %s: %w", u.ResumeFile, err)
	}
	st.user = u
	st.resume = string(b)
	return nil
}

func (s *searchUC) deriveKeywords(ctx context.Context, st *searchState) error {
	if st.keyword != "" {
		st.keywords = []string{st.keyword}
		return nil
	}
	raw, err := s.ai.ChatJSON(ctx, s.model, []adapter.Message{
		{Role: "user", Content: fmt.Sprintf(keywordsPrompt, st.resume)},
	})
	if err != nil {
		return fmt.Errorf("keyword derivation: %w", err)
	}
	var out struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fmt.Errorf("unparseable keywords response: %w", err)
	}
	if len(out.Keywords) == 0 {
		return errors.New("no keywords derived from resume")
	}
	if len(out.Keywords) > 5 {
		out.Keywords = out.Keywords[:5]
	}
	st.keywords = out.Keywords
	return nil
}

// searchAndExtract walks the keywords strictly in order. A failing keyword
// or posting is logged and skipped; the stage itself fails only when the
// board could not be scraped for any keyword at all.
func (s *searchUC) searchAndExtract(ctx context.Context, st *searchState) error {
	scraped := 0
	for _, kw := range st.keywords {
		if err := ctx.Err(); err != nil {
			return err
		}
		boardURL := fmt.Sprintf(s.boardURLTemplate, url.QueryEscape(kw))
		html, err := s.browser.Render(ctx, boardURL)
		if err != nil {
			s.log.Warn().Str("keyword", kw).Err(err).Msg("board scrape failed")
			continue
		}
		scraped++

		entries, err := s.listPostings(ctx, html)
		if err != nil {
			s.log.Warn().Str("keyword", kw).Err(err).Msg("listing extraction failed")
			continue
		}
		for _, entry := range entries {
			res, err := s.extraction.Run(ctx, entry.URL, st.userID)
			if err != nil {
				s.log.Warn().Str("url", entry.URL).Err(err).Msg("posting extraction failed")
				continue
			}
			if res.Posting != nil {
				st.postings = append(st.postings, res.Posting)
			}
		}
	}
	if scraped == 0 {
		return errors.New("no keyword could be scraped")
	}
	return nil
}

type listingEntry struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

func (s *searchUC) listPostings(ctx context.Context, html string) ([]listingEntry, error) {
	text, err := fetch.ExtractMainText(html)
	if err != nil {
		return nil, err
	}
	raw, err := s.ai.ChatJSON(ctx, s.model, []adapter.Message{
		{Role: "user", Content: fmt.Sprintf(listingPrompt, s.maxPerKeyword, text)},
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Postings []listingEntry `json:"postings"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("unparseable listing response: %w", err)
	}
	var entries []listingEntry
	for _, e := range out.Postings {
		if e.URL == "" {
			continue
		}
		entries = append(entries, e)
		if len(entries) == s.maxPerKeyword {
			break
		}
	}
	return entries, nil
}
