package slack

import (
	"context"
	"fmt"
	"strconv"

	"ai-promoter/domain/model"
	"ai-promoter/infrastructure/configuration"
	"ai-promoter/infrastructure/logger"

	"github.com/slack-go/slack"
)

const maxDescriptionChars = 200

// Notifier sends direct messages and channel digests. It is a no-op when notifications are disabled.
type Notifier struct {
	client  *slack.Client
	enabled bool
}

func NewNotifier(cfg configuration.Slack) *Notifier {
	var opts []slack.Option
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}
	return &Notifier{
		client:  slack.New(cfg.BotToken, opts...),
		enabled: cfg.NotificationsEnabled && cfg.BotToken != "",
	}
}

func (n *Notifier) Enabled() bool { return n.enabled }

// Notify posts text to recipient, which is a user id (DM) or a channel id.
func (n *Notifier) Notify(ctx context.Context, recipient, message string) error {
	if !n.enabled {
		logger.GetLogger().WithField("recipient", recipient).Debug("Slack notifications disabled, skipping")
		return nil
	}
	_, _, err := n.client.PostMessageContext(ctx, recipient, slack.MsgOptionText(message, false))
	if err != nil {
		return fmt.Errorf("slack post to %s: %w", recipient, err)
	}
	return nil
}

// PostDigest posts one chunk of new content with a Promote button per item.
func (n *Notifier) PostDigest(ctx context.Context, channel string, items []model.DigestItem, part, total int) error {
	if !n.enabled {
		return nil
	}
	blocks := DigestBlocks(items, part, total)
	fallback := fmt.Sprintf("New content available (%d items)", len(items))
	_, _, err := n.client.PostMessageContext(ctx, channel, slack.MsgOptionText(fallback, false), slack.MsgOptionBlocks(blocks...))
	if err != nil {
		return fmt.Errorf("slack digest to %s: %w", channel, err)
	}
	return nil
}

func DigestBlocks(items []model.DigestItem, part, total int) []slack.Block {
	heading := "New content available"
	if total > 1 {
		heading = fmt.Sprintf("New content available (%d/%d)", part, total)
	}
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, heading, false, false)),
	}
	for _, item := range items {
		text := fmt.Sprintf("*<%s|%s>*", item.URL, item.Title)
		if item.Description != "" {
			text += "\n" + truncate(item.Description, maxDescriptionChars)
		}
		button := slack.NewButtonBlockElement("promote_"+strconv.FormatInt(item.ID, 10), strconv.FormatInt(item.ID, 10),
			slack.NewTextBlockObject(slack.PlainTextType, "Promote This", false, false)).
			WithStyle(slack.StylePrimary).
			WithURL(item.PromoteURL)
		blocks = append(blocks,
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, slack.NewAccessory(button)),
			slack.NewDividerBlock(),
		)
	}
	return blocks
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
