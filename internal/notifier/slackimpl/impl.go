package slackimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/snapwatch/tiktok-monitor/internal/notifier"
	"github.com/snapwatch/tiktok-monitor/pkg/config"
	apperrors "github.com/snapwatch/tiktok-monitor/pkg/errors"
	"github.com/snapwatch/tiktok-monitor/pkg/logger"
	"go.uber.org/fx"
)

const postMessageURL = "https://slack.com/api/chat.postMessage"

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type SlackImpl struct {
	http       *resty.Client
	webhookURL string
	botToken   string
	channelID  string
	logger     logger.Logger
}

func New(opts Opts) *SlackImpl {
	return &SlackImpl{
		http:       resty.New().SetTimeout(30 * time.Second),
		webhookURL: opts.Config.Slack.WebhookURL,
		botToken:   opts.Config.Slack.BotToken,
		channelID:  opts.Config.Slack.ChannelID,
		logger:     opts.Logger.WithComponent("SlackNotifier"),
	}
}

var _ notifier.Client = (*SlackImpl)(nil)

// Notify sends the alert via webhook when one is configured, otherwise via
// the bot API. One attempt only.
func (s *SlackImpl) Notify(ctx context.Context, post domain.Post) error {
	msg := buildMessage(post)

	if s.webhookURL != "" {
		return s.sendWebhook(ctx, msg)
	}
	if s.botToken != "" && s.channelID != "" {
		return s.sendBotMessage(ctx, msg)
	}
	return apperrors.Wrap(apperrors.ErrConfiguration, "no slack webhook or bot credentials set")
}

func (s *SlackImpl) sendWebhook(ctx context.Context, msg message) error {
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post(s.webhookURL)
	if err != nil {
		return apperrors.WrapClass(apperrors.ErrNotify, err, "failed to send slack webhook")
	}
	if resp.IsError() {
		return apperrors.Wrap(apperrors.ErrNotify, fmt.Sprintf("slack webhook failed: %s: %s", resp.Status(), resp.String()))
	}

	s.logger.Info("Slack notification sent via webhook")
	return nil
}

func (s *SlackImpl) sendBotMessage(ctx context.Context, msg message) error {
	payload := struct {
		Channel string `json:"channel"`
		message
	}{Channel: s.channelID, message: msg}

	var result struct {
		Ok    bool   `json:"ok"`
		Error string `json:"error"`
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(s.botToken).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&result).
		Post(postMessageURL)
	if err != nil {
		return apperrors.WrapClass(apperrors.ErrNotify, err, "failed to call slack api")
	}
	if resp.IsError() || !result.Ok {
		return apperrors.Wrap(apperrors.ErrNotify, fmt.Sprintf("slack bot message failed: %s", result.Error))
	}

	s.logger.Info("Slack notification sent via bot")
	return nil
}
