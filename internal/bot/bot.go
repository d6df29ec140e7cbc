// Package bot is the Telegram transport: it polls for messages carrying a
// URL, runs the pipeline, and renders the result back into the chat.
package bot

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/helpers"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/pipeline"
)

// telegramMessageLimit is Telegram's hard cap on message text length.
const telegramMessageLimit = 4096

// captionLimit is the shorter cap applied to media captions.
const captionLimit = 1024

type Bot struct {
	api           *tgbotapi.BotAPI
	orch          *pipeline.Orchestrator
	allowedChatID int64
	verboseErrors bool
	pollTimeout   int
	logger        *log.Logger
}

func New(cfg config.TelegramConfig, orch *pipeline.Orchestrator, logger *log.Logger) (*Bot, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[BOT] ", log.LstdFlags)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	logger.Printf("authorized as @%s", api.Self.UserName)

	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 30
	}

	return &Bot{
		api:           api,
		orch:          orch,
		allowedChatID: cfg.AllowedChatID,
		verboseErrors: cfg.VerboseErrors,
		pollTimeout:   pollTimeout,
		logger:        logger,
	}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(updateCfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if b.allowedChatID != 0 && msg.Chat.ID != b.allowedChatID {
		b.logger.Printf("ignoring message from disallowed chat %d", msg.Chat.ID)
		return
	}

	// Only messages carrying a URL enter the pipeline; everything else is
	// ignored without a reply.
	if _, ok := helpers.FirstURL(msg.Text); !ok {
		return
	}

	b.sendTyping(msg.Chat.ID)

	resp, err := b.orch.Run(ctx, msg.Text)
	b.deliver(msg.Chat.ID, msg.MessageID, resp, err)
}

// deliver renders the terminal payload: summary or fallback text as chat
// messages, a screenshot as a photo with the text as caption, and errors
// per the configured verbosity.
func (b *Bot) deliver(chatID int64, replyTo int, resp pipeline.Response, runErr error) {
	if len(resp.Screenshot) > 0 {
		b.sendScreenshot(chatID, replyTo, resp)
		if runErr != nil {
			b.reportError(chatID, replyTo, runErr)
		}
		return
	}

	if resp.Text != "" {
		b.sendText(chatID, replyTo, resp.Text)
		if runErr != nil {
			b.reportError(chatID, replyTo, runErr)
		}
		return
	}

	if runErr != nil {
		b.reportError(chatID, replyTo, runErr)
	}
}

func (b *Bot) sendScreenshot(chatID int64, replyTo int, resp pipeline.Response) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  "page.png",
		Bytes: resp.Screenshot,
	})
	photo.ReplyToMessageID = replyTo

	caption := resp.Text
	overflow := ""
	if utf8.RuneCountInString(caption) > captionLimit {
		head := firstRunes(caption, captionLimit)
		caption, overflow = head, resp.Text[len(head):]
	}
	photo.Caption = caption

	if _, err := b.api.Send(photo); err != nil {
		b.logger.Printf("send photo to %d failed: %v", chatID, err)
		// Fall back to text so the run still delivers something.
		if resp.Text != "" {
			b.sendText(chatID, replyTo, resp.Text)
		}
		return
	}
	if overflow != "" {
		b.sendText(chatID, replyTo, overflow)
	}
}

func (b *Bot) sendText(chatID int64, replyTo int, text string) {
	for i, chunk := range ChunkMessage(text, telegramMessageLimit) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if i == 0 {
			msg.ReplyToMessageID = replyTo
		}
		if _, err := b.api.Send(msg); err != nil {
			// Markdown from the model can be malformed; retry plain.
			msg.ParseMode = ""
			if _, err := b.api.Send(msg); err != nil {
				b.logger.Printf("send message to %d failed: %v", chatID, err)
				return
			}
		}
	}
}

func (b *Bot) reportError(chatID int64, replyTo int, err error) {
	b.logger.Printf("run for chat %d failed: %v", chatID, err)
	if !b.verboseErrors {
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Sorry, I couldn't summarize that link: "+err.Error())
	msg.ReplyToMessageID = replyTo
	if _, sendErr := b.api.Send(msg); sendErr != nil {
		b.logger.Printf("send error report to %d failed: %v", chatID, sendErr)
	}
}

func (b *Bot) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(action); err != nil {
		b.logger.Printf("chat action for %d failed: %v", chatID, err)
	}
}

// ChunkMessage splits text into pieces of at most limit characters,
// preferring to break at a newline and then at a space near the boundary.
// Telegram's cap counts characters, not bytes, and a cut must never land
// inside a multi-byte rune.
func ChunkMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		window := firstRunes(text, limit)
		cut := len(window)
		if idx := strings.LastIndexByte(window, '\n'); idx >= 0 && utf8.RuneCountInString(window[:idx]) > limit/2 {
			cut = idx + 1
		} else if idx := strings.LastIndexByte(window, ' '); idx >= 0 && utf8.RuneCountInString(window[:idx]) > limit/2 {
			cut = idx + 1
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// firstRunes returns the prefix of s holding at most n runes; the cut is
// always a rune boundary.
func firstRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
