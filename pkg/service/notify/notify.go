package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
)

// slackAPI is the subset of the Slack client used by the notifier
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier posts early warning alerts to a Slack channel
type Notifier struct {
	api     slackAPI
	channel string
}

var _ interfaces.Notifier = (*Notifier)(nil)

// Option is a functional option for Notifier configuration
type Option func(*Notifier)

// WithAPI replaces the Slack client, mainly for testing
func WithAPI(api slackAPI) Option {
	return func(n *Notifier) {
		n.api = api
	}
}

// New creates a Slack notifier posting to the given channel
func New(token, channel string, opts ...Option) (*Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channel == "" {
		return nil, goerr.New("Slack channel is required")
	}

	n := &Notifier{
		api:     slack.New(token),
		channel: channel,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// NotifyWarning posts one early warning signal as a Block Kit message
func (n *Notifier) NotifyWarning(ctx context.Context, opp *model.Opportunity, signal model.EarlyWarningSignal) error {
	blocks := buildWarningBlocks(opp, signal)
	fallback := fmt.Sprintf("[%s] %s: %s", signal.Severity, opp.Name, signal.Title)

	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post warning to Slack",
			goerr.V("channel", n.channel),
			goerr.V("opportunityID", opp.ID),
			goerr.V("signalID", signal.ID))
	}
	return nil
}

func buildWarningBlocks(opp *model.Opportunity, signal model.EarlyWarningSignal) []slack.Block {
	header := slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, fmt.Sprintf("%s Early warning: %s", severityEmoji(signal.Severity), signal.Title), true, false),
	)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Opportunity:*\n%s", opp.Name), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Severity:*\n%s", signal.Severity), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Deal value:*\n%.0f %s", opp.DealValue, opp.Currency), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Raised by:*\n%s", signal.RaisedBy), false, false),
	}
	detail := slack.NewSectionBlock(nil, fields, nil)

	blocks := []slack.Block{header, detail}
	if signal.Detail != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, signal.Detail, false, false), nil, nil,
		))
	}
	return blocks
}

func severityEmoji(severity string) string {
	switch severity {
	case "critical", "high":
		return ":rotating_light:"
	case "medium":
		return ":warning:"
	default:
		return ":information_source:"
	}
}
