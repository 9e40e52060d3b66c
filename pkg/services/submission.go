package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"shore-hockey/pkg/apperrors"
	"shore-hockey/pkg/clients/airtable"
	"shore-hockey/pkg/config"
	"shore-hockey/pkg/metrics"
	"shore-hockey/pkg/models"
	"shore-hockey/pkg/notify"
	"shore-hockey/pkg/validation"
)

const (
	campSuccessMessage     = "Thanks, your camp inquiry was submitted successfully."
	businessSuccessMessage = "Thanks, your inquiry was submitted successfully."
	airtableFailureMessage = "Failed to store lead in Airtable."
)

// Receipt is what the caller learns about a stored lead.
type Receipt struct {
	ID      string
	Message string
}

// LeadSubmissionService defines the interface for handling form submissions
type LeadSubmissionService interface {
	ProcessCampSubmission(ctx context.Context, requestID string, input map[string]any) (Receipt, error)
	ProcessBusinessSubmission(ctx context.Context, requestID string, input map[string]any) (Receipt, error)
}

type leadSubmissionServiceImpl struct {
	airtableClient airtable.Client
	notifier       notify.Notifier
	config         *config.Config
	metrics        *metrics.Metrics
	now            func() time.Time
}

type Option func(*leadSubmissionServiceImpl)

// WithClock sets the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *leadSubmissionServiceImpl) { s.now = now }
}

// NewLeadSubmissionService creates a new submission service
func NewLeadSubmissionService(
	airtableClient airtable.Client,
	notifier notify.Notifier,
	config *config.Config,
	m *metrics.Metrics,
	opts ...Option,
) LeadSubmissionService {
	s := &leadSubmissionServiceImpl{
		airtableClient: airtableClient,
		notifier:       notifier,
		config:         config,
		metrics:        m,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// submission is one validated lead on its way to Airtable and the inbox.
type submission struct {
	kind    string
	table   string
	fields  models.Fields
	message string
}

// ProcessCampSubmission validates, stores and announces a camp inquiry.
func (s *leadSubmissionServiceImpl) ProcessCampSubmission(ctx context.Context, requestID string, input map[string]any) (Receipt, error) {
	atomic.AddInt64(&s.metrics.LeadsReceivedTotal, 1)

	lead, err := validation.ValidateCampLead(input)
	if err != nil {
		return Receipt{}, s.fail(err)
	}

	return s.process(ctx, requestID, submission{
		kind:    "Camp",
		table:   s.config.AirtableCampTable,
		fields:  lead.Fields(s.now()),
		message: campSuccessMessage,
	})
}

// ProcessBusinessSubmission validates, stores and announces a business inquiry.
func (s *leadSubmissionServiceImpl) ProcessBusinessSubmission(ctx context.Context, requestID string, input map[string]any) (Receipt, error) {
	atomic.AddInt64(&s.metrics.LeadsReceivedTotal, 1)

	lead, err := validation.ValidateBusinessLead(input)
	if err != nil {
		return Receipt{}, s.fail(err)
	}

	return s.process(ctx, requestID, submission{
		kind:    "Business",
		table:   s.config.AirtableBusinessTable,
		fields:  lead.Fields(s.now()),
		message: businessSuccessMessage,
	})
}

// process stores the lead, then sends the notification. A lead that was
// stored but not announced is reported as EMAIL_ERROR; nothing is retried.
func (s *leadSubmissionServiceImpl) process(ctx context.Context, requestID string, sub submission) (Receipt, error) {
	id, err := s.persist(ctx, sub)
	if err != nil {
		return Receipt{}, s.fail(err)
	}
	atomic.AddInt64(&s.metrics.LeadsStoredTotal, 1)
	if id == "" {
		id = requestID
	}

	log.Info().
		Str("request_id", requestID).
		Str("kind", sub.kind).
		Str("record_id", id).
		Msg("lead stored")

	err = s.notifier.Notify(ctx, notify.Message{
		Subject: fmt.Sprintf("New %s Lead - Shore Hockey Academy", sub.kind),
		Text:    formatPairs(sub.fields),
		HTML: fmt.Sprintf(`<h2>New %s Lead</h2><p>Request ID: %s</p><table style="border-collapse:collapse;">%s</table>`,
			sub.kind, html.EscapeString(requestID), htmlPairs(sub.fields)),
	})
	if err != nil {
		log.Warn().
			Str("request_id", requestID).
			Str("record_id", id).
			Msg("lead stored but notification failed")
		return Receipt{}, s.fail(err)
	}
	atomic.AddInt64(&s.metrics.LeadsNotifiedTotal, 1)

	return Receipt{ID: id, Message: sub.message}, nil
}

func (s *leadSubmissionServiceImpl) persist(ctx context.Context, sub submission) (string, error) {
	if !s.config.AirtableConfigured() {
		return "", apperrors.Config("Airtable configuration is missing.")
	}

	id, err := s.airtableClient.CreateRecord(ctx, sub.table, sub.fields)
	if err != nil {
		message := airtableFailureMessage
		var apiErr *airtable.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			message = apiErr.Message
		}
		return "", apperrors.Airtable(message, err)
	}
	return id, nil
}

func (s *leadSubmissionServiceImpl) fail(err error) error {
	appErr := apperrors.From(err)
	s.metrics.IncFailure(string(appErr.Code))
	return appErr
}

func formatPairs(fields models.Fields) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s: %v", f.Key, f.Value))
	}
	return strings.Join(lines, "\n")
}

func htmlPairs(fields models.Fields) string {
	var sb strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&sb,
			`<tr><td style="padding:6px 10px;font-weight:700;border:1px solid #ddd;">%s</td><td style="padding:6px 10px;border:1px solid #ddd;">%s</td></tr>`,
			html.EscapeString(f.Key), html.EscapeString(fmt.Sprint(f.Value)))
	}
	return sb.String()
}
