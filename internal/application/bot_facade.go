// Package application composes use cases into high-level bot commands.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-job-scout/internal/domain"
	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/usecase"
)

// BotFacade maps chat commands onto use cases. Methods return plain strings
// so the Telegram adapter just forwards them to the chat; no business logic
// lives here.
type BotFacade struct {
	UserUC       usecase.UserUseCase
	ExtractionUC usecase.ExtractionUseCase
	AnalysisUC   usecase.AnalysisUseCase
	SearchUC     usecase.SearchUseCase
	ResumeUC     usecase.ResumeUseCase
	PostingUC    usecase.PostingUseCase
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	extractionUC usecase.ExtractionUseCase,
	analysisUC usecase.AnalysisUseCase,
	searchUC usecase.SearchUseCase,
	resumeUC usecase.ResumeUseCase,
	postingUC usecase.PostingUseCase,
) *BotFacade {
	return &BotFacade{
		UserUC:       userUC,
		ExtractionUC: extractionUC,
		AnalysisUC:   analysisUC,
		SearchUC:     searchUC,
		ResumeUC:     resumeUC,
		PostingUC:    postingUC,
	}
}

// HandleStart registers or fetches the user and returns a welcome string.
func (b *BotFacade) HandleStart(ctx context.Context, userID, name string) (string, error) {
	u, err := b.UserUC.RegisterOrFetch(ctx, userID, name)
	if err != nil {
		return "", fmt.Errorf("register/fetch user: %w", err)
	}
	return fmt.Sprintf("Hello %s!\nYour account id: %s\nSend /help to see what I can do.", u.Name, u.ID), nil
}

func (b *BotFacade) HandleHelp() string {
	return strings.TrimSpace(`
Commands:
/extract <url> - store the job posting at <url>
/analyze - score the oldest unseen posting against your resume
/search [keyword] - scout the job board; keywords come from your resume if omitted
/resume [target role] - build your resume from uploaded sources
/latest - recently stored postings
/mine - postings your searches surfaced
`)
}

func (b *BotFacade) HandleExtract(ctx context.Context, userID, url string) (string, error) {
	if url == "" {
		return "Usage: /extract <url>", nil
	}
	res, err := b.ExtractionUC.Run(ctx, url, userID)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	p := res.Posting
	return fmt.Sprintf("Stored: %s at %s (%s)\n%s", p.Title, p.Company, p.Location, p.URL), nil
}

func (b *BotFacade) HandleAnalyze(ctx context.Context, userID string) (string, error) {
	res, err := b.AnalysisUC.Run(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoUnread) {
			return "No unseen postings to analyze.", nil
		}
		if errors.Is(err, domain.ErrNoResume) {
			return "You have no resume yet. Build one with /resume first.", nil
		}
		return "", fmt.Errorf("analyze: %w", err)
	}
	return res.Report, nil
}

func (b *BotFacade) HandleSearch(ctx context.Context, userID, keyword string) (string, error) {
	res, err := b.SearchUC.Run(ctx, userID, keyword)
	if err != nil {
		if errors.Is(err, domain.ErrNoResume) {
			return "You have no resume yet. Build one with /resume first.", nil
		}
		return "", fmt.Errorf("search: %w", err)
	}
	if len(res.Postings) == 0 {
		return fmt.Sprintf("Nothing new for %s.", strings.Join(res.Keywords, ", ")), nil
	}
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "Found %d postings for %s:\n", len(res.Postings), strings.Join(res.Keywords, ", "))
	for _, p := range res.Postings {
		fmt.Fprintf(&sb, "- %s at %s\n  %s\n", p.Title, p.Company, p.URL)
	}
	return sb.String(), nil
}

func (b *BotFacade) HandleResume(ctx context.Context, userID, jobTarget string) (string, error) {
	res, err := b.ResumeUC.Run(ctx, userID, jobTarget)
	if err != nil {
		return "", fmt.Errorf("build resume: %w", err)
	}
	return res.FinalResume, nil
}

func (b *BotFacade) HandleLatest(ctx context.Context, limit int) (string, error) {
	postings, err := b.PostingUC.Latest(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("latest postings: %w", err)
	}
	return formatPostings(postings, "No postings stored yet."), nil
}

func (b *BotFacade) HandleMine(ctx context.Context, userID string) (string, error) {
	postings, err := b.PostingUC.ListByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("your postings: %w", err)
	}
	return formatPostings(postings, "No postings linked to you yet. Try /search."), nil
}

func formatPostings(postings []*model.JobPosting, empty string) string {
	if len(postings) == 0 {
		return empty
	}
	sb := strings.Builder{}
	for _, p := range postings {
		mark := " "
		if p.Unread() {
			mark = "*"
		}
		fmt.Fprintf(&sb, "%s %s at %s\n  %s\n", mark, p.Title, p.Company, p.URL)
	}
	return sb.String()
}
