package anet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

type webhookInfo struct {
	WebhookID  string   `json:"webhookId"`
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	URL        string   `json:"url"`
	EventTypes []string `json:"eventTypes"`
	Links      struct {
		Self struct {
			Href string `json:"href"`
		} `json:"self"`
	} `json:"_links"`
}

type webhookUpsert struct {
	URL        string   `json:"url"`
	EventTypes []string `json:"eventTypes"`
	Status     string   `json:"status"`
}

// AssertWebhookExists makes sure an active webhook pointing at callbackURL
// is registered with exactly the required event set, creating or updating
// one as needed. It is idempotent and safe to run on every configuration
// save.
func (c *Client) AssertWebhookExists(ctx context.Context, apiLoginID, transactionKey, callbackURL string) error {
	listURL := c.webhookBaseURL() + webhooksPath

	var webhooks []webhookInfo
	if err := c.doWebhookRequest(ctx, http.MethodGet, listURL, apiLoginID, transactionKey, nil, &webhooks); err != nil {
		return err
	}

	var existing *webhookInfo
	for i := range webhooks {
		if webhooks[i].URL == callbackURL {
			existing = &webhooks[i]
			break
		}
	}

	if existing != nil && existing.Status == "active" && hasAllEventTypes(existing.EventTypes, webhookEventTypes) {
		return nil
	}

	payload := webhookUpsert{
		URL:        callbackURL,
		EventTypes: webhookEventTypes,
		Status:     "active",
	}

	if existing == nil {
		var created webhookInfo
		if err := c.doWebhookRequest(ctx, http.MethodPost, listURL, apiLoginID, transactionKey, payload, &created); err != nil {
			return err
		}
		if created.WebhookID == "" {
			return errors.New("webhook cannot be created")
		}
		return nil
	}

	updateURL := c.webhookBaseURL() + existing.Links.Self.Href
	var updated webhookInfo
	if err := c.doWebhookRequest(ctx, http.MethodPut, updateURL, apiLoginID, transactionKey, payload, &updated); err != nil {
		return err
	}
	if updated.WebhookID == "" {
		return errors.New("webhook cannot be updated")
	}
	return nil
}

func hasAllEventTypes(have []string, want []string) bool {
	found := 0
	for _, wanted := range want {
		for _, existing := range have {
			if existing == wanted {
				found++
				break
			}
		}
	}
	return found == len(want)
}

func (c *Client) doWebhookRequest(
	ctx context.Context,
	method string,
	url string,
	apiLoginID string,
	transactionKey string,
	payload interface{},
	out interface{},
) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(apiLoginID, transactionKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook management request failed: method=%s status=%d body=%s", method, resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("webhook management response cannot be parsed: %w", err)
		}
	}

	return nil
}
