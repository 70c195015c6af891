// Package wizard drives the guided complaint intake: a linear walk over a
// department's question catalog that ends in a classified CompletionRecord.
//
// A Controller owns one session. States are step indices 0..N where N is the
// catalog length; N is terminal and only Start leaves it. Transitions only
// move forward by one.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"grievanceportal/internal/catalog"
	"grievanceportal/internal/classifier"
	"grievanceportal/internal/model"
)

var (
	ErrBusy         = errors.New("a submission is already being processed")
	ErrCompleted    = errors.New("intake session is already complete")
	ErrNotStarted   = errors.New("intake session not started")
	ErrCorruptState = errors.New("inconsistent intake session state")
)

// Question ids whose answers feed the classifier
const (
	issueTypeID    = "issueType"
	issueDetailsID = "additionalDetails"
)

// ValidationError reports a rejected answer. The session stays on the same step.
type ValidationError struct {
	QuestionID string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid answer for %s: %s", e.QuestionID, e.Message)
}

// Classifier assigns a priority to the collected issue description
type Classifier interface {
	Classify(ctx context.Context, department, rubric, issueType, issueDetails string) classifier.Classification
}

// Outcome describes what one accepted SubmitAnswer call appended
type Outcome struct {
	Appended []model.TranscriptEntry
	Record   *model.CompletionRecord
}

// Option configures a Controller
type Option func(*Controller)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithSuffixSource overrides the random part of generated complaint ids
func WithSuffixSource(suffix func() string) Option {
	return func(c *Controller) { c.suffix = suffix }
}

// Controller is the state machine for one intake session. It is safe for
// concurrent use; at most one classification is in flight at a time.
type Controller struct {
	mu sync.Mutex

	catalog    *catalog.Catalog
	classifier Classifier
	now        func() time.Time
	suffix     func() string

	dept       *catalog.Department
	lang       string
	step       int
	responses  model.Responses
	transcript model.Transcript
	record     *model.CompletionRecord
	busy       bool
	startedAt  time.Time
	updatedAt  time.Time
}

// New creates an idle controller. Call Start before submitting answers.
func New(cat *catalog.Catalog, cls Classifier, opts ...Option) *Controller {
	c := &Controller{
		catalog:    cat,
		classifier: cls,
		now:        time.Now,
		suffix:     RandomSuffix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start resets the session for a department and language and seeds the
// transcript with the first prompt. An empty language selects the default.
func (c *Controller) Start(departmentID, language string) error {
	dept, err := c.catalog.Department(departmentID)
	if err != nil {
		return err
	}
	lang, err := c.catalog.ResolveLanguage(language)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}

	c.dept = dept
	c.lang = lang
	c.step = 0
	c.responses = model.Responses{}
	c.transcript = model.Transcript{c.promptEntry(0)}
	c.record = nil
	c.startedAt = c.now()
	c.updatedAt = c.startedAt
	return nil
}

// Restart starts over with the current department and language
func (c *Controller) Restart() error {
	c.mu.Lock()
	dept, lang := c.dept, c.lang
	c.mu.Unlock()
	if dept == nil {
		return ErrNotStarted
	}
	return c.Start(dept.ID, lang)
}

// SubmitAnswer validates raw against the active question. On success the
// trimmed value is recorded, an Answer entry is appended and the session
// advances, which on the last question runs classification and completion.
// A call made while a classification is outstanding returns ErrBusy.
func (c *Controller) SubmitAnswer(ctx context.Context, raw string) (*Outcome, error) {
	c.mu.Lock()
	if err := c.checkAnswerable(); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	q := c.dept.Questions[c.step]
	value, shown, err := c.accept(q, raw)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	c.responses = append(c.responses, model.Response{QuestionID: q.ID, Value: value})
	answer := model.TranscriptEntry{Kind: model.EntryAnswer, QuestionID: q.ID, Text: shown}
	c.transcript = append(c.transcript, answer)
	c.updatedAt = c.now()

	if c.step < c.dept.Len()-1 {
		c.step++
		prompt := c.promptEntry(c.step)
		c.transcript = append(c.transcript, prompt)
		c.mu.Unlock()
		return &Outcome{Appended: []model.TranscriptEntry{answer, prompt}}, nil
	}

	// Last question: classify outside the lock with the busy flag raised.
	c.busy = true
	dept := c.dept
	issueType := c.responses.Value(issueTypeID)
	details := fmt.Sprintf("%s. %s", issueType, c.responses.Value(issueDetailsID))
	c.mu.Unlock()

	result := c.classify(ctx, dept, issueType, details)

	c.mu.Lock()
	defer c.mu.Unlock()
	completion := c.complete(result)
	c.busy = false
	return &Outcome{
		Appended: []model.TranscriptEntry{answer, completion},
		Record:   completion.Record,
	}, nil
}

func (c *Controller) checkAnswerable() error {
	switch {
	case c.dept == nil:
		return ErrNotStarted
	case c.busy:
		return ErrBusy
	case c.record != nil:
		return ErrCompleted
	}
	return nil
}

// accept returns the value to store and the text to show in the transcript
func (c *Controller) accept(q *catalog.Question, raw string) (string, string, error) {
	value := strings.TrimSpace(raw)
	if q.Optional && value == "" {
		return "", c.catalog.Message(catalog.MsgNoInformation, c.lang), nil
	}

	ok := value != ""
	if v := q.Validator(); v != nil && ok {
		ok = v(value)
	}
	if ok && q.Kind == catalog.KindSingleSelect {
		ok = c.catalog.Localize(q, c.lang).HasOption(value)
	}
	if !ok {
		return "", "", &ValidationError{
			QuestionID: q.ID,
			Message:    c.catalog.Message(catalog.MsgInvalidAnswer, c.lang),
		}
	}
	return value, value, nil
}

func (c *Controller) classify(ctx context.Context, dept *catalog.Department, issueType, details string) (result classifier.Classification) {
	if c.classifier == nil {
		return classifier.Classification{Priority: model.DefaultPriority, Fallback: true, Err: classifier.ErrNoGenerator}
	}
	// A faulty classifier must not leave the session stuck busy.
	defer func() {
		if r := recover(); r != nil {
			result = classifier.Classification{
				Priority: model.DefaultPriority,
				Fallback: true,
				Err:      fmt.Errorf("classifier panic: %v", r),
			}
		}
	}()
	return c.classifier.Classify(ctx, dept.ID, dept.Rubric, issueType, details)
}

// complete synthesizes the record and enters the terminal state. Caller holds mu.
func (c *Controller) complete(result classifier.Classification) model.TranscriptEntry {
	now := c.now()
	window := c.dept.ResponseWindows.For(result.Priority)

	record := &model.CompletionRecord{
		ID:                     ComplaintID(c.dept.Prefix, now, c.suffix()),
		Department:             c.dept.ID,
		Language:               c.lang,
		Responses:              c.responses.Clone(),
		Priority:               result.Priority,
		PriorityFallback:       result.Fallback,
		CreatedAt:              now,
		ExpectedResponseWindow: FormatWindow(window),
		RespondBy:              now.Add(window),
		Status:                 model.StatusRegistered,
		UpdatedAt:              now,
	}

	subtitle := strings.NewReplacer(
		"{priority}", string(record.Priority),
		"{window}", record.ExpectedResponseWindow,
	).Replace(c.catalog.Message(catalog.MsgCompletionSubtitle, c.lang))

	entry := model.TranscriptEntry{
		Kind:   model.EntryCompletion,
		Title:  c.catalog.Message(catalog.MsgCompletionTitle, c.lang),
		Text:   subtitle,
		Record: record,
	}
	c.transcript = append(c.transcript, entry)
	c.record = record
	c.step = c.dept.Len()
	c.updatedAt = now
	return entry
}

func (c *Controller) promptEntry(step int) model.TranscriptEntry {
	q := c.dept.Questions[step]
	text := c.catalog.Localize(q, c.lang)
	entry := model.TranscriptEntry{
		Kind:        model.EntryPrompt,
		QuestionID:  q.ID,
		Text:        text.Prompt,
		Placeholder: text.Placeholder,
	}
	if q.Kind == catalog.KindSingleSelect {
		entry.Options = append([]string(nil), text.Options...)
	}
	return entry
}

// Step returns the current step index; Total() means complete
func (c *Controller) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Total returns the number of questions in the active flow
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dept == nil {
		return 0
	}
	return c.dept.Len()
}

// Busy reports whether a classification is outstanding
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Complete reports whether the session reached its terminal state
func (c *Controller) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record != nil
}

// Record returns the completion record, or nil before completion
func (c *Controller) Record() *model.CompletionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

// Responses returns a copy of the collected answers
func (c *Controller) Responses() model.Responses {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.responses.Clone()
}

// Transcript returns a copy of the message log
func (c *Controller) Transcript() model.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(model.Transcript(nil), c.transcript...)
}

// Department returns the active department id
func (c *Controller) Department() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dept == nil {
		return ""
	}
	return c.dept.ID
}

// Language returns the active language
func (c *Controller) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lang
}
