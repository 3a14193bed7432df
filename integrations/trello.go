package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.trello.com"

// TrelloWebhook mirrors the webhook object returned by the Trello REST API.
type TrelloWebhook struct {
	ID          string `json:"id"`
	IDModel     string `json:"idModel"`
	Description string `json:"description"`
	CallbackURL string `json:"callbackURL"`
	Active      bool   `json:"active"`
}

type TrelloClient struct {
	Client      *http.Client
	APIKey      string
	APIToken    string
	CallbackURL string
	BaseURL     string
}

func NewTrelloClient(key, token, callbackURL string) *TrelloClient {
	return &TrelloClient{
		Client:      &http.Client{Timeout: 15 * time.Second},
		APIKey:      key,
		APIToken:    token,
		CallbackURL: callbackURL,
		BaseURL:     defaultBaseURL,
	}
}

func (tc *TrelloClient) RegisterWebhook(ctx context.Context, boardID string) (*TrelloWebhook, error) {
	apiURL := tc.BaseURL + "/1/webhooks/"

	formData := url.Values{}
	formData.Set("key", tc.APIKey)
	formData.Set("token", tc.APIToken)
	formData.Set("callbackURL", tc.CallbackURL)
	formData.Set("idModel", boardID)
	formData.Set("description", "Discord Bot Webhook")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBufferString(formData.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tc.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send post request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("trello API returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var webhook TrelloWebhook
	if err := json.NewDecoder(resp.Body).Decode(&webhook); err != nil {
		return nil, fmt.Errorf("failed to decode Trello response: %w", err)
	}

	log.Printf("Successfully registered webhook with ID: %s for board ID: %s\n", webhook.ID, boardID)

	return &webhook, nil
}

// ListWebhooks returns every webhook registered under the API token.
func (tc *TrelloClient) ListWebhooks(ctx context.Context) ([]TrelloWebhook, error) {
	apiURL := fmt.Sprintf("%s/1/tokens/%s/webhooks?key=%s", tc.BaseURL, url.PathEscape(tc.APIToken), url.QueryEscape(tc.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create get request: %w", err)
	}

	resp, err := tc.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send get request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("trello API returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var webhooks []TrelloWebhook
	if err := json.NewDecoder(resp.Body).Decode(&webhooks); err != nil {
		return nil, fmt.Errorf("failed to decode Trello response: %w", err)
	}

	return webhooks, nil
}

func (tc *TrelloClient) DeleteWebhook(ctx context.Context, webhookID string) error {
	apiURL := fmt.Sprintf("%s/1/webhooks/%s", tc.BaseURL, url.PathEscape(webhookID))

	formData := url.Values{}
	formData.Set("key", tc.APIKey)
	formData.Set("token", tc.APIToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, apiURL, bytes.NewBufferString(formData.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tc.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send delete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("trello API returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	log.Printf("Successfully deleted webhook with ID: %s\n", webhookID)

	return nil
}
