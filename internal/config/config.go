package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultPort         = "8080"
	DefaultDatabasePath = "trellobot.db"
)

// Required lists the environment variables the process refuses to start
// without. The values are opaque to this service; they are validated for
// presence and handed to the clients that need them.
var Required = []string{
	"DISCORD_TOKEN",
	"TRELLO_API_KEY",
	"TRELLO_TOKEN",
	"TRELLO_WEBHOOK_SECRET",
	"DISCORD_CHANNEL_ID",
	"WEBHOOK_URL",
}

type Config struct {
	DiscordToken        string
	TrelloAPIKey        string
	TrelloToken         string
	TrelloWebhookSecret string
	DiscordChannelID    string
	WebhookURL          string

	Port         string
	DatabasePath string

	// BoardIDs is optional; when set, `serve` registers a webhook for each
	// board on startup and removes them on shutdown.
	BoardIDs []string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("DATABASE_PATH", DefaultDatabasePath)
	for _, name := range Required {
		if err := v.BindEnv(name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}

	cfg := &Config{
		DiscordToken:        v.GetString("DISCORD_TOKEN"),
		TrelloAPIKey:        v.GetString("TRELLO_API_KEY"),
		TrelloToken:         v.GetString("TRELLO_TOKEN"),
		TrelloWebhookSecret: v.GetString("TRELLO_WEBHOOK_SECRET"),
		DiscordChannelID:    v.GetString("DISCORD_CHANNEL_ID"),
		WebhookURL:          v.GetString("WEBHOOK_URL"),
		Port:                v.GetString("PORT"),
		DatabasePath:        v.GetString("DATABASE_PATH"),
	}

	if raw := strings.TrimSpace(v.GetString("TRELLO_BOARD_IDS")); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.BoardIDs = append(cfg.BoardIDs, id)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every missing required variable at once so a broken
// deployment can be fixed in one pass.
func (c *Config) Validate() error {
	values := []struct {
		name, value string
	}{
		{"DISCORD_TOKEN", c.DiscordToken},
		{"TRELLO_API_KEY", c.TrelloAPIKey},
		{"TRELLO_TOKEN", c.TrelloToken},
		{"TRELLO_WEBHOOK_SECRET", c.TrelloWebhookSecret},
		{"DISCORD_CHANNEL_ID", c.DiscordChannelID},
		{"WEBHOOK_URL", c.WebhookURL},
	}

	var missing []string
	for _, v := range values {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

// CallbackURL is the URL Trello posts webhook events to: the public base
// URL with the /webhook route appended.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.WebhookURL, "/") + "/webhook"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
