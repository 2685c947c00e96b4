package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/config"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/retry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ContactMessage is an inquiry submitted through the contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (m ContactMessage) Validate() error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return errs.NewMissingRequiredFieldError("name")
	case strings.TrimSpace(m.Email) == "":
		return errs.NewMissingRequiredFieldError("email")
	case strings.TrimSpace(m.Message) == "":
		return errs.NewMissingRequiredFieldError("message")
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return errs.NewInvalidFieldError("email", "not a valid address")
	}
	return nil
}

// Mailer sends contact-form inquiries through the Resend API.
type Mailer struct {
	client    *http.Client
	endpoint  string
	apiKey    string
	from      string
	recipient string
	policy    retry.Policy
	logger    zerolog.Logger
}

// NewMailer reads RESEND_API_KEY, RESEND_FROM_EMAIL and CONTACT_RECIPIENT.
// Missing keys are reported when a message is sent, not here.
func NewMailer(c map[string]string) *Mailer {
	return &Mailer{
		client:    &http.Client{Timeout: 15 * time.Second},
		endpoint:  resendEndpoint,
		apiKey:    config.GetString(c, "RESEND_API_KEY", ""),
		from:      config.GetString(c, "RESEND_FROM_EMAIL", ""),
		recipient: config.GetString(c, "CONTACT_RECIPIENT", ""),
		policy:    retry.PolicyFromConfig(c),
		logger:    log.With().Str("component", "mailer").Logger(),
	}
}

func (m *Mailer) configured() error {
	switch {
	case m.apiKey == "":
		return errs.NewConfigMissingError("RESEND_API_KEY")
	case m.from == "":
		return errs.NewConfigMissingError("RESEND_FROM_EMAIL")
	case m.recipient == "":
		return errs.NewConfigMissingError("CONTACT_RECIPIENT")
	}
	return nil
}

// SendContact forwards msg to the site owner with the sender as reply-to.
func (m *Mailer) SendContact(ctx context.Context, msg ContactMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "Website inquiry"
	}
	body := fmt.Sprintf("<p><strong>%s</strong> &lt;%s&gt; wrote:</p><p>%s</p>",
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>"),
	)
	return m.SendEmail(ctx, ResendEmailRequest{
		To:      []string{m.recipient},
		ReplyTo: msg.Email,
		Subject: fmt.Sprintf("[Contact] %s from %s", subject, msg.Name),
		Html:    body,
		Text:    msg.Message,
	})
}

// SendEmail posts req to Resend, filling From. Server-side failures are
// retried with the configured policy; 4xx responses are not.
func (m *Mailer) SendEmail(ctx context.Context, req ResendEmailRequest) error {
	if err := m.configured(); err != nil {
		return err
	}
	if len(req.To) == 0 {
		return errs.NewMissingRequiredFieldError("to")
	}
	req.From = m.from

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	id, err := retry.Do(ctx, m.policy, func(ctx context.Context) (string, error) {
		return m.post(ctx, payload)
	})
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to send email via Resend")
		return err
	}
	m.logger.Info().Str("emailId", id).Msg("Successfully sent email via Resend")
	return nil
}

func (m *Mailer) post(ctx context.Context, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create Resend API request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := string(bodyBytes)
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			message = errorResp.Message
		}
		return "", errs.NewRemoteError("resend", resp.StatusCode, message)
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	}
	return emailResponse.ID, nil
}
