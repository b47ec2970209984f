package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/backoffice/internal/auth"
	jobmetrics "github.com/odyssey-erp/backoffice/internal/jobs"
)

// ResetIssuer issues reset tickets and purges expired ones.
type ResetIssuer interface {
	RequestReset(ctx context.Context, email string) (auth.ResetTicket, error)
	PurgeExpiredResets(ctx context.Context) (int64, error)
}

// ResetJob turns queued forgot-password requests into reset mails.
type ResetJob struct {
	Issuer  ResetIssuer
	Mailer  Mailer
	LinkURL string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// HandleRequest processes TaskResetRequest tasks. Unknown addresses finish
// silently so the queue carries no signal about registered users.
func (j *ResetJob) HandleRequest(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Issuer == nil || j.Mailer == nil {
		return errors.New("reset request: dependencies not configured")
	}
	var payload ResetRequestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("reset request: decode payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskResetRequest)
	ticket, err := j.Issuer.RequestReset(ctx, payload.Email)
	if err != nil {
		jobLogger(j.Logger, TaskResetRequest).Error("issue reset token", slog.Any("error", err))
		return tracker.End(err)
	}
	if !ticket.Issued() {
		return tracker.End(nil)
	}

	link, err := ResetLink(j.LinkURL, ticket.Token)
	if err != nil {
		return tracker.End(fmt.Errorf("reset request: %v: %w", err, asynq.SkipRetry))
	}
	err = j.Mailer.Send(ctx, resetMail(ticket, link))
	if err != nil {
		jobLogger(j.Logger, TaskResetRequest).Error("send reset mail", slog.Any("error", err))
	}
	return tracker.End(err)
}

// HandlePurge processes TaskResetPurge tasks.
func (j *ResetJob) HandlePurge(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Issuer == nil {
		return errors.New("reset purge: issuer not configured")
	}
	tracker := j.Metrics.Track(TaskResetPurge)
	purged, err := j.Issuer.PurgeExpiredResets(ctx)
	if err != nil {
		jobLogger(j.Logger, TaskResetPurge).Error("purge expired resets", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Metrics.AddPurgedResets(purged)
	if purged > 0 {
		jobLogger(j.Logger, TaskResetPurge).Info("purged expired resets", slog.Int64("count", purged))
	}
	return tracker.End(nil)
}

// ResetLink appends the token as a query parameter to base.
func ResetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid reset url %q", base)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func resetMail(ticket auth.ResetTicket, link string) SendEmailPayload {
	name := ticket.Name
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf(`Hi %s,

A password reset was requested for your back-office account.
Use the link below to choose a new password. It expires at %s.

%s

If you did not request this, you can ignore this message.
`, name, ticket.ExpiresAt.UTC().Format(time.RFC1123), link)
	return SendEmailPayload{
		To:      ticket.Email,
		Subject: "Reset your password",
		Body:    body,
	}
}
