// Package bot runs the Telegram phone-capture flow: users share their contact
// through the bot and the phone lands on their local profile, where the next
// login picks it up.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/star-marathon/star_backend/internal/profile"
)

const (
	pollTimeout   = 30 * time.Second
	retryInterval = 5 * time.Second
)

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	From    *tgUser  `json:"from"`
	Chat    chat     `json:"chat"`
	Text    string   `json:"text"`
	Contact *contact `json:"contact"`
}

type tgUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type chat struct {
	ID int64 `json:"id"`
}

type contact struct {
	PhoneNumber string `json:"phone_number"`
	UserID      int64  `json:"user_id"`
}

// PhoneCapture long-polls the Telegram Bot API and stores shared contacts.
type PhoneCapture struct {
	apiBase  string
	http     *http.Client
	profiles profile.Repository
	logger   *slog.Logger
}

// New builds the phone-capture worker. apiBase overrides the Telegram API
// root in tests; pass "" for the real one.
func New(token, apiBase string, profiles profile.Repository, logger *slog.Logger) *PhoneCapture {
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	return &PhoneCapture{
		apiBase:  strings.TrimSuffix(apiBase, "/") + "/bot" + token,
		http:     &http.Client{Timeout: pollTimeout + 10*time.Second},
		profiles: profiles,
		logger:   logger,
	}
}

// Run polls for updates until the context is cancelled.
func (b *PhoneCapture) Run(ctx context.Context) {
	// Polling conflicts with a leftover webhook registration.
	if err := b.call(ctx, "deleteWebhook", map[string]any{}, nil); err != nil {
		b.logger.Warn("delete webhook failed", slog.Any("error", err))
	}
	b.logger.Info("telegram bot polling started")

	var offset int64
	for {
		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Error("get updates failed", slog.Any("error", err))
			select {
			case <-time.After(retryInterval):
				continue
			case <-ctx.Done():
				return
			}
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message != nil {
				b.handleMessage(ctx, u.Message)
			}
		}
	}
}

func (b *PhoneCapture) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	var updates []update
	err := b.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(pollTimeout.Seconds()),
		"allowed_updates": []string{"message"},
	}, &updates)
	return updates, err
}

func (b *PhoneCapture) handleMessage(ctx context.Context, msg *message) {
	if strings.HasPrefix(msg.Text, "/start") {
		b.sendContactPrompt(ctx, msg.Chat.ID)
		return
	}

	if msg.Contact == nil {
		return
	}
	if msg.From == nil || msg.Contact.UserID != msg.From.ID {
		b.reply(ctx, msg.Chat.ID, "Пожалуйста, отправьте СВОЙ номер телефона через кнопку меню.", nil)
		return
	}

	phone := msg.Contact.PhoneNumber
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	if err := b.storePhone(ctx, msg.From.ID, msg.From.Username, phone); err != nil {
		b.logger.Error("store contact failed", slog.Int64("tg_id", msg.From.ID), slog.Any("error", err))
		b.reply(ctx, msg.Chat.ID, "Произошла ошибка при сохранении. Попробуйте еще раз.", nil)
		return
	}

	b.logger.Info("contact captured", slog.Int64("tg_id", msg.From.ID))
	b.reply(ctx, msg.Chat.ID, "✅ Номер успешно принят! Вернитесь в приложение StarMarathon.",
		map[string]any{"remove_keyboard": true})
}

func (b *PhoneCapture) storePhone(ctx context.Context, tgID int64, username, phone string) error {
	existing, err := b.profiles.Find(ctx, tgID)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return b.profiles.Save(ctx, profile.Merge(nil, profile.LoginInput{TgID: tgID, Username: username, Phone: phone}, false, ""))
	case err != nil:
		return err
	}
	return b.profiles.Save(ctx, profile.Merge(&existing, profile.LoginInput{TgID: tgID, Username: username, Phone: phone}, false, ""))
}

func (b *PhoneCapture) sendContactPrompt(ctx context.Context, chatID int64) {
	markup := map[string]any{
		"keyboard": [][]map[string]any{
			{{"text": "📱 Поделиться номером телефона", "request_contact": true}},
		},
		"resize_keyboard":   true,
		"one_time_keyboard": true,
	}
	b.reply(ctx, chatID, "Для завершения регистрации, пожалуйста, нажмите кнопку ниже, чтобы отправить свой номер телефона.", markup)
}

func (b *PhoneCapture) reply(ctx context.Context, chatID int64, text string, markup map[string]any) {
	payload := map[string]any{"chat_id": chatID, "text": text}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	if err := b.call(ctx, "sendMessage", payload, nil); err != nil {
		b.logger.Error("send message failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (b *PhoneCapture) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiBase+"/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram %s: %s", method, parsed.Description)
	}
	if out != nil {
		return json.Unmarshal(parsed.Result, out)
	}
	return nil
}
