package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":   r.handleStartCommand,
		"help":    r.handleHelpCommand,
		"extract": r.handleExtractCommand,
		"analyze": r.handleAnalyzeCommand,
		"search":  r.handleSearchCommand,
		"resume":  r.handleResumeCommand,
		"latest":  r.handleLatestCommand,
		"mine":    r.handleMineCommand,

		"users": r.adminOnly(r.handleUsersCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if _, isAdmin := r.adminIDsMap[message.From.ID]; !isAdmin {
			return r.SendMessage(ctx, message.Chat.ID, "This command is restricted.")
		}
		return next(ctx, message)
	}
}

// reply forwards a facade result to the chat, masking internal errors.
func (r *RealTelegramBotAdapter) reply(ctx context.Context, chatID int64, text string, err error) error {
	if err != nil {
		r.log.Error().Err(err).Int64("chat_id", chatID).Msg("command failed")
		text = "Something went wrong. Please try again later."
	}
	return r.SendMessage(ctx, chatID, text)
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	name := message.From.UserName
	if name == "" {
		name = message.From.FirstName
	}
	text, err := r.facade.HandleStart(ctx, domainUserID(message.From.ID), name)
	return r.reply(ctx, message.Chat.ID, text, err)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleHelp())
}

func (r *RealTelegramBotAdapter) handleExtractCommand(ctx context.Context, message *tgbotapi.Message) error {
	url := strings.TrimSpace(message.CommandArguments())
	text, err := r.facade.HandleExtract(ctx, domainUserID(message.From.ID), url)
	return r.reply(ctx, message.Chat.ID, text, err)
}

func (r *RealTelegramBotAdapter) handleAnalyzeCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleAnalyze(ctx, domainUserID(message.From.ID))
	return r.reply(ctx, message.Chat.ID, text, err)
}

func (r *RealTelegramBotAdapter) handleSearchCommand(ctx context.Context, message *tgbotapi.Message) error {
	keyword := strings.TrimSpace(message.CommandArguments())
	text, err := r.facade.HandleSearch(ctx, domainUserID(message.From.ID), keyword)
	return r.reply(ctx, message.Chat.ID, text, err)
}

func (r *RealTelegramBotAdapter) handleResumeCommand(ctx context.Context, message *tgbotapi.Message) error {
	target := strings.TrimSpace(message.CommandArguments())
	text, err := r.facade.HandleResume(ctx, domainUserID(message.From.ID), target)
	return r.reply(ctx, message.Chat.ID, text, err)
}

func (r *RealTelegramBotAdapter) handleLatestCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleLatest(ctx, 10)
	return r.reply(ctx, message.Chat.ID, text, err)
}

func (r *RealTelegramBotAdapter) handleMineCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleMine(ctx, domainUserID(message.From.ID))
	return r.reply(ctx, message.Chat.ID, text, err)
}

func (r *RealTelegramBotAdapter) handleUsersCommand(ctx context.Context, message *tgbotapi.Message) error {
	users, err := r.facade.UserUC.List(ctx)
	if err != nil {
		return r.reply(ctx, message.Chat.ID, "", err)
	}
	if len(users) == 0 {
		return r.SendMessage(ctx, message.Chat.ID, "No registered users.")
	}
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%d registered users:\n", len(users))
	for _, u := range users {
		resume := "no resume"
		if u.HasResume() {
			resume = u.ResumeFile
		}
		fmt.Fprintf(&sb, "- %s (%s): %s\n", u.Name, u.ID, resume)
	}
	return r.SendMessage(ctx, message.Chat.ID, sb.String())
}
