package jobs

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskResetRequest issues a reset token for an email and mails the link.
	TaskResetRequest = "auth:reset-request"
	// TaskResetPurge clears expired reset tokens.
	TaskResetPurge = "auth:reset-purge"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ResetRequestPayload carries the address a reset was requested for.
type ResetRequestPayload struct {
	Email string `json:"email"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.Queue(QueueDefault)), nil
}

// NewResetRequestTask builds the task queued by forgot-password.
func NewResetRequestTask(email string) (*asynq.Task, error) {
	data, err := json.Marshal(ResetRequestPayload{Email: strings.TrimSpace(email)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskResetRequest, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// NewResetPurgeTask builds the periodic purge task.
func NewResetPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskResetPurge, nil, asynq.Queue(QueueDefault))
}
