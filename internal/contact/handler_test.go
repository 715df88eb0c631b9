package contact

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bilgisen/folio/internal/email"
	"github.com/bilgisen/folio/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent  []email.Message
	err   error
	panic bool
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) (string, error) {
	if f.panic {
		panic("boom")
	}
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return "", f.err
	}
	return "msg_1", nil
}

func newTestHandler(sender email.Sender) *Handler {
	return NewHandler(sender, nil, Config{
		From: "Contact Form <onboarding@resend.dev>",
		To:   "owner@example.com",
	})
}

func TestSubmitSendsNotification(t *testing.T) {
	sender := &fakeSender{}
	h := newTestHandler(sender)

	res := h.Submit(context.Background(), models.ContactMessage{
		Name:    "Jane",
		Email:   "jane@example.com",
		Message: "Hello <there>",
	})

	assert.Equal(t, Result{Success: true, Status: http.StatusOK}, res)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"owner@example.com"}, msg.To)
	assert.Equal(t, "jane@example.com", msg.ReplyTo)
	assert.Equal(t, "Portfolio Contact: Jane", msg.Subject)
	assert.Contains(t, msg.HTML, "Hello &lt;there&gt;")
	assert.NotContains(t, msg.HTML, "<there>")
}

func TestSubmitRequiresAllFields(t *testing.T) {
	cases := []models.ContactMessage{
		{Name: "", Email: "jane@example.com", Message: "hi"},
		{Name: "Jane", Email: "   ", Message: "hi"},
		{Name: "Jane", Email: "jane@example.com", Message: "\n\t"},
		{Name: " ", Email: "not-an-email", Message: ""},
	}

	for _, msg := range cases {
		sender := &fakeSender{}
		res := newTestHandler(sender).Submit(context.Background(), msg)

		assert.False(t, res.Success)
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.Equal(t, MsgFieldsRequired, res.Error)
		assert.Empty(t, sender.sent, "no delivery attempt for %+v", msg)
	}
}

func TestSubmitRejectsInvalidEmail(t *testing.T) {
	for _, addr := range []string{"not-an-email", "jane@example", "jane doe@example.com", "@example.com"} {
		sender := &fakeSender{}
		res := newTestHandler(sender).Submit(context.Background(), models.ContactMessage{
			Name:    "Jane",
			Email:   addr,
			Message: "hi",
		})

		assert.Equal(t, http.StatusBadRequest, res.Status, addr)
		assert.Equal(t, MsgInvalidEmail, res.Error, addr)
		assert.Empty(t, sender.sent)
	}
}

func TestSubmitHidesProviderErrors(t *testing.T) {
	sender := &fakeSender{err: &email.ProviderError{StatusCode: 403, Name: "invalid_api_key", Message: "API key is invalid"}}
	var logs bytes.Buffer
	h := newTestHandler(sender).WithLogger(zerolog.New(&logs))

	res := h.Submit(context.Background(), models.ContactMessage{
		Name:    "Jane",
		Email:   "jane@example.com",
		Message: "hi",
	})

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, MsgSendFailed, res.Error)
	assert.NotContains(t, res.Error, "API key")
	assert.NotContains(t, res.Error, "invalid_api_key")
	assert.Len(t, sender.sent, 1)

	logged := logs.String()
	assert.Contains(t, logged, "invalid_api_key")
	assert.Contains(t, logged, `"provider_status":403`)
	assert.Contains(t, logged, "submission_id")
}

func TestSubmitTransportFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("dial tcp: connection refused")}
	res := newTestHandler(sender).Submit(context.Background(), models.ContactMessage{
		Name:    "Jane",
		Email:   "jane@example.com",
		Message: "hi",
	})

	assert.Equal(t, MsgSendFailed, res.Error)
}

func TestSubmitRecoversFromPanics(t *testing.T) {
	res := newTestHandler(&fakeSender{panic: true}).Submit(context.Background(), models.ContactMessage{
		Name:    "Jane",
		Email:   "jane@example.com",
		Message: "hi",
	})

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, MsgUnexpected, res.Error)
}
