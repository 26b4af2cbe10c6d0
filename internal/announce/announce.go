// Package announce posts portal updates to a Discord channel.
package announce

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"fragportal/internal/model"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

type Announcer interface {
	MatchFinished(ctx context.Context, m model.Match, names map[string]string) error
	NewsPublished(ctx context.Context, n model.News) error
}

// Nop is used when no webhook is configured.
type Nop struct{}

func (Nop) MatchFinished(context.Context, model.Match, map[string]string) error { return nil }
func (Nop) NewsPublished(context.Context, model.News) error                     { return nil }

type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Discord struct {
	exec     webhookExecutor
	id       string
	token    string
	username string
	log      logrus.FieldLogger
}

// NewDiscord builds an announcer for a webhook URL of the form
// https://discord.com/api/webhooks/{id}/{token}.
func NewDiscord(webhookURL string, logger logrus.FieldLogger) (*Discord, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	// Webhooks carry their own token, so the bot token stays empty.
	s, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{
		exec:     s,
		id:       id,
		token:    token,
		username: "FragPortal",
		log:      logger.WithField("component", "announce"),
	}, nil
}

func parseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", errors.New("webhook url: expected /api/webhooks/{id}/{token}")
}

func (d *Discord) MatchFinished(ctx context.Context, m model.Match, names map[string]string) error {
	return d.send(ctx, MatchEmbed(m, names))
}

func (d *Discord) NewsPublished(ctx context.Context, n model.News) error {
	return d.send(ctx, NewsEmbed(n))
}

func (d *Discord) send(ctx context.Context, embed *discordgo.MessageEmbed) error {
	_, err := d.exec.WebhookExecute(d.id, d.token, false, &discordgo.WebhookParams{
		Username: d.username,
		Embeds:   []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		var re *discordgo.RESTError
		if errors.As(err, &re) && re.Response != nil {
			d.log.WithFields(logrus.Fields{
				"status":      re.Response.StatusCode,
				"retry_after": re.Response.Header.Get("Retry-After"),
			}).Warn("discord webhook rejected")
		}
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}
