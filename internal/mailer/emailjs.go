package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vogiaan1904/ticketbottle-checkin/config"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

const sendPath = "/api/v1.0/email/send"

// emailJSMailer talks to an EmailJS-compatible template-mail API: one
// POST carrying service/template/user identifiers and a flat map of
// template parameters.
type emailJSMailer struct {
	cfg     config.MailerConfig
	httpCli *http.Client
	l       logger.Logger
}

func NewEmailJSMailer(cfg config.MailerConfig, l logger.Logger) Mailer {
	return &emailJSMailer{
		cfg: cfg,
		httpCli: &http.Client{
			Timeout: cfg.Timeout,
		},
		l: l,
	}
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams map[string]any `json:"template_params"`
}

func (m *emailJSMailer) SendTicket(ctx context.Context, email TicketEmail) error {
	params := map[string]any{
		"to_email":        email.ToEmail,
		"to_name":         email.ToName,
		"event_title":     email.EventTitle,
		"event_date":      email.EventDate,
		"event_time":      email.EventTime,
		"event_location":  orDefault(email.EventLocation, "TBA"),
		"event_image":     email.EventImage,
		"ticket_number":   email.TicketNumber,
		"time_slot":       orDefault(email.TimeSlot, "General Admission"),
		"verification_qr": email.VerificationQR,
	}

	return m.send(ctx, m.cfg.TicketTemplateID, params)
}

func (m *emailJSMailer) SendCheckInConfirmation(ctx context.Context, email ConfirmationEmail) error {
	params := map[string]any{
		"to_email":      email.ToEmail,
		"to_name":       email.ToName,
		"event_title":   email.EventTitle,
		"ticket_number": email.TicketNumber,
		"checked_in_at": email.CheckedInAt,
		"location":      email.Location,
	}

	return m.send(ctx, m.cfg.ConfirmationTemplateID, params)
}

func (m *emailJSMailer) send(ctx context.Context, templateID string, params map[string]any) error {
	body, err := json.Marshal(sendRequest{
		ServiceID:      m.cfg.ServiceID,
		TemplateID:     templateID,
		UserID:         m.cfg.PublicKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, string(msg))
	}

	m.l.Debugf(ctx, "Email sent - template_id: %s", templateID)

	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
