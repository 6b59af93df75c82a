package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// EmailSender delivers transactional template emails. Implementations fail
// loudly; callers decide how the failure surfaces.
type EmailSender interface {
	Send(ctx context.Context, to, subject, templateID string, variables map[string]string) error
}

// MailtrapSender sends through the Mailtrap transactional HTTP API.
type MailtrapSender struct {
	apiKey     string
	apiURL     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
}

func NewMailtrapSender(apiURL, apiKey, fromEmail, fromName string) *MailtrapSender {
	return &MailtrapSender{
		apiKey:    apiKey,
		apiURL:    apiURL,
		fromEmail: fromEmail,
		fromName:  fromName,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (m *MailtrapSender) Send(ctx context.Context, to, subject, templateID string, variables map[string]string) error {
	reqBody := map[string]interface{}{
		"from": map[string]string{
			"email": m.fromEmail,
			"name":  m.fromName,
		},
		"to": []map[string]string{
			{"email": to},
		},
		"subject":            subject,
		"template_uuid":      templateID,
		"template_variables": variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling email request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody bytes.Buffer
		if _, readErr := errBody.ReadFrom(resp.Body); readErr == nil && errBody.Len() > 0 {
			log.Printf("[Mailtrap] API error (status %d): %s", resp.StatusCode, errBody.String())
			return fmt.Errorf("mailtrap API returned status %d: %s", resp.StatusCode, errBody.String())
		}
		return fmt.Errorf("mailtrap API returned status %d", resp.StatusCode)
	}

	return nil
}
