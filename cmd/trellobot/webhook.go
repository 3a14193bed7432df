package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"trellobot/database"
	"trellobot/integrations"
	"trellobot/internal/config"
	"trellobot/internal/models"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage Trello webhooks",
}

func newTrelloClient() (*integrations.TrelloClient, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db := database.Init(cfg.DatabasePath)
	client := integrations.NewTrelloClient(cfg.TrelloAPIKey, cfg.TrelloToken, cfg.CallbackURL())
	return client, db, nil
}

var webhookCreateCmd = &cobra.Command{
	Use:   "create <board-id>",
	Short: "Register a webhook for a board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, db, err := newTrelloClient()
		if err != nil {
			return err
		}

		webhook, err := client.RegisterWebhook(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		row := models.Webhook{
			ID:          webhook.ID,
			BoardID:     args[0],
			CallbackURL: webhook.CallbackURL,
			Description: webhook.Description,
		}
		if result := db.Save(&row); result.Error != nil {
			return fmt.Errorf("webhook %s created but not recorded: %w", webhook.ID, result.Error)
		}

		fmt.Printf("Created webhook %s for board %s\n", webhook.ID, args[0])
		return nil
	},
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all webhooks registered under the API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newTrelloClient()
		if err != nil {
			return err
		}

		webhooks, err := client.ListWebhooks(cmd.Context())
		if err != nil {
			return err
		}
		if len(webhooks) == 0 {
			fmt.Println("No webhooks found.")
			return nil
		}

		for _, w := range webhooks {
			fmt.Printf("%s  board=%s  active=%t  callback=%s\n", w.ID, w.IDModel, w.Active, w.CallbackURL)
		}
		return nil
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete <webhook-id>",
	Short: "Delete a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, db, err := newTrelloClient()
		if err != nil {
			return err
		}

		if err := client.DeleteWebhook(cmd.Context(), args[0]); err != nil {
			return err
		}
		if result := db.Delete(&models.Webhook{ID: args[0]}); result.Error != nil {
			return fmt.Errorf("webhook %s deleted but record not removed: %w", args[0], result.Error)
		}

		fmt.Printf("Deleted webhook %s\n", args[0])
		return nil
	},
}

func init() {
	webhookCmd.AddCommand(webhookCreateCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
}
