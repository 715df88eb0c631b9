package contact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/bilgisen/folio/internal/email"
	"github.com/bilgisen/folio/internal/logger"
	"github.com/bilgisen/folio/internal/middleware"
	"github.com/bilgisen/folio/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	MsgFieldsRequired = "All fields are required"
	MsgInvalidEmail   = "Invalid email address"
	MsgSendFailed     = "Failed to send message. Please try again."
	MsgUnexpected     = "Something went wrong. Please try again."
)

// Result is the outcome of one submission, ready to be written as a response
type Result struct {
	Success bool   `json:"success,omitempty"`
	Status  int    `json:"-"`
	Error   string `json:"error,omitempty"`
}

// Config holds the fixed parts of the notification email
type Config struct {
	From string
	To   string
}

// Handler validates contact messages and forwards them to the site owner.
// Nothing is stored; each call makes at most one delivery attempt.
type Handler struct {
	sender    email.Sender
	validator *middleware.Validator
	cfg       Config
	log       zerolog.Logger
}

func NewHandler(sender email.Sender, validator *middleware.Validator, cfg Config) *Handler {
	if validator == nil {
		validator = middleware.NewValidator()
	}
	return &Handler{
		sender:    sender,
		validator: validator,
		cfg:       cfg,
		log:       logger.Component("contact"),
	}
}

// WithLogger replaces the handler's logger
func (h *Handler) WithLogger(log zerolog.Logger) *Handler {
	h.log = log
	return h
}

// Submit validates msg and sends the notification email
func (h *Handler) Submit(ctx context.Context, msg models.ContactMessage) (res Result) {
	log := h.log.With().Str("submission_id", uuid.NewString()).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Msg("Contact form error")
			res = failure(http.StatusInternalServerError, MsgUnexpected)
		}
	}()

	if problem := h.check(msg); problem != "" {
		log.Info().Str("reason", problem).Msg("Contact message rejected")
		return failure(http.StatusBadRequest, problem)
	}

	html, err := renderNotification(msg)
	if err != nil {
		log.Error().Err(err).Msg("Contact form error")
		return failure(http.StatusInternalServerError, MsgUnexpected)
	}

	id, err := h.sender.Send(ctx, email.Message{
		From:    h.cfg.From,
		To:      []string{h.cfg.To},
		Subject: "Portfolio Contact: " + strings.TrimSpace(msg.Name),
		ReplyTo: msg.Email,
		HTML:    html,
	})
	if err != nil {
		var pe *email.ProviderError
		if errors.As(err, &pe) {
			log.Error().
				Err(err).
				Int("provider_status", pe.StatusCode).
				Str("provider_error", pe.Name).
				Msg("Email provider rejected contact message")
		} else {
			log.Error().Err(err).Msg("Failed to deliver contact message")
		}
		return failure(http.StatusInternalServerError, MsgSendFailed)
	}

	log.Info().Str("message_id", id).Msg("Contact message sent")
	return Result{Success: true, Status: http.StatusOK}
}

// check returns the first violated rule: blank fields before the email pattern
func (h *Handler) check(msg models.ContactMessage) string {
	err := h.validator.Validate(msg)
	if err == nil {
		return ""
	}

	failed := middleware.FailedTags(err)
	if failed == nil {
		return MsgUnexpected
	}
	for _, tag := range failed {
		if tag == "nonblank" {
			return MsgFieldsRequired
		}
	}
	return MsgInvalidEmail
}

func failure(status int, message string) Result {
	return Result{Status: status, Error: message}
}

var notificationTemplate = template.Must(template.New("contact").Parse(`
<div style="font-family: system-ui, -apple-system, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a1a1a; border-bottom: 2px solid #1a1a1a; padding-bottom: 8px;">New Contact Form Submission</h2>
  <div style="margin: 24px 0;">
    <p style="margin: 0 0 4px 0; color: #666; font-size: 12px; text-transform: uppercase; letter-spacing: 1px;">From</p>
    <p style="margin: 0; font-size: 16px; color: #1a1a1a;">{{.Name}}</p>
  </div>
  <div style="margin: 24px 0;">
    <p style="margin: 0 0 4px 0; color: #666; font-size: 12px; text-transform: uppercase; letter-spacing: 1px;">Email</p>
    <p style="margin: 0; font-size: 16px; color: #1a1a1a;"><a href="mailto:{{.Email}}" style="color: #2563eb;">{{.Email}}</a></p>
  </div>
  <div style="margin: 24px 0;">
    <p style="margin: 0 0 4px 0; color: #666; font-size: 12px; text-transform: uppercase; letter-spacing: 1px;">Message</p>
    <div style="background: #f5f5f5; padding: 16px; border-left: 4px solid #1a1a1a;">
      <p style="margin: 0; font-size: 16px; color: #1a1a1a; white-space: pre-wrap;">{{.Message}}</p>
    </div>
  </div>
  <hr style="border: none; border-top: 1px solid #e5e5e5; margin: 32px 0;" />
  <p style="color: #999; font-size: 12px; margin: 0;">Sent from your portfolio contact form</p>
</div>
`))

func renderNotification(msg models.ContactMessage) (string, error) {
	var buf bytes.Buffer
	if err := notificationTemplate.Execute(&buf, msg); err != nil {
		return "", fmt.Errorf("rendering contact email: %w", err)
	}
	return buf.String(), nil
}
