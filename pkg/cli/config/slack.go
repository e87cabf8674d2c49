package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/revlens-lab/revlens/pkg/service/notify"
)

// Slack holds CLI flags for the early-warning Slack notifier
type Slack struct {
	botToken string
	channel  string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for early warning notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("REVLENS_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel to post early warning notifications to",
			Category:    "Slack",
			Sources:     cli.EnvVars("REVLENS_SLACK_CHANNEL"),
			Destination: &x.channel,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channel),
	)
}

// IsConfigured checks if the Slack notifier configuration is complete
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channel != ""
}

// Configure builds the Slack notifier. It returns nil without error when
// the notifier is not configured; setting only one of the two flags is an
// error.
func (x *Slack) Configure() (*notify.Notifier, error) {
	if x.botToken == "" && x.channel == "" {
		return nil, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.New("slack notifier requires both --slack-bot-token and --slack-channel")
	}
	return notify.New(x.botToken, x.channel)
}
