package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"support-intake-go/internal/aggregator"
	"support-intake-go/internal/faq"
	"support-intake-go/internal/logger"
	"support-intake-go/internal/notify"
	"support-intake-go/internal/schedule"
	"support-intake-go/internal/sentiment"
	"support-intake-go/internal/transcription"
	"support-intake-go/internal/triage"
	"support-intake-go/internal/types"
)

// Validation messages surfaced to callers verbatim.
const (
	MsgNoFile       = "No selected file"
	MsgNoMessage    = "No message provided"
	MsgNoStatus     = "No status provided"
	MsgFAQRequired  = "Question and answer are required"
	MsgNotFound     = "Schedule not found"
	callbackSubject = "Callback Scheduled"
)

// FAQStore is the persisted question->answer mapping.
type FAQStore interface {
	List() (faq.List, error)
	Add(question, answer string) error
}

// Replier produces the conversational reply. It never fails.
type Replier interface {
	Generate(ctx context.Context, text string) string
}

// Notifier accepts notifications for asynchronous delivery.
type Notifier interface {
	Enqueue(n notify.Notification) bool
}

// Deps are the collaborators built once at startup.
type Deps struct {
	Transcriber transcription.Transcriber
	Classifier  sentiment.Classifier
	FAQ         FAQStore
	Schedules   schedule.Store
	Replies     Replier
	Notifier    Notifier
	// UploadsDir keeps a copy of every uploaded recording when non-empty.
	UploadsDir string
	Now        func() time.Time
	Log        *logger.Logger
}

// Processor runs the intake pipeline: text -> sentiment -> FAQ
// short-circuit -> callback decision -> reply -> notification.
type Processor struct {
	d   Deps
	log *logger.Logger
}

func New(d Deps) *Processor {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	return &Processor{d: d, log: d.Log.Component("processor")}
}

// Result is the structured outcome of one intake request. Exactly one of
// Transcription (audio) or Message (text) is set.
type Result struct {
	Transcription string          `json:"transcription,omitempty"`
	Message       string          `json:"message,omitempty"`
	Sentiment     types.Sentiment `json:"sentiment"`
	IsFAQ         bool            `json:"is_faq"`
	Response      string          `json:"response"`
	Schedule      *types.Schedule `json:"schedule,omitempty"`
}

type source struct {
	origLabel string // how the email refers to the input
	audio     bool
}

var (
	audioSource = source{origLabel: "Original Transcription", audio: true}
	textSource  = source{origLabel: "Your message"}
)

// ProcessAudio transcribes a recording and runs the pipeline on the text.
func (p *Processor) ProcessAudio(ctx context.Context, a transcription.Audio) (Result, error) {
	if strings.TrimSpace(a.Filename) == "" {
		return Result{}, invalid(MsgNoFile)
	}
	if err := p.saveUpload(a); err != nil {
		return Result{}, err
	}

	text, err := p.d.Transcriber.Transcribe(ctx, a)
	if err != nil {
		return Result{}, fail(KindUpstream, "transcribe", err)
	}
	return p.run(ctx, text, false, audioSource)
}

// ProcessText runs the pipeline on a chat message. skipSchedule disables
// callback creation.
func (p *Processor) ProcessText(ctx context.Context, message string, skipSchedule bool) (Result, error) {
	if message == "" {
		return Result{}, invalid(MsgNoMessage)
	}
	return p.run(ctx, message, skipSchedule, textSource)
}

func (p *Processor) run(ctx context.Context, text string, skipSchedule bool, src source) (Result, error) {
	log := logger.FromContext(ctx, p.log)
	res := Result{}
	if src.audio {
		res.Transcription = text
	} else {
		res.Message = text
	}

	sent, err := p.d.Classifier.Classify(ctx, text)
	if err != nil {
		return Result{}, fail(KindUpstream, "classify sentiment", err)
	}
	res.Sentiment = sent

	faqs, err := p.d.FAQ.List()
	if err != nil {
		return Result{}, fail(KindStorage, "load faq", err)
	}
	if answer, ok := faq.Match(text, faqs); ok {
		log.WithField("sentiment", sent.Label).Info("faq matched")
		res.IsFAQ = true
		res.Response = answer
		return res, nil
	}

	if !skipSchedule && triage.ShouldSchedule(text) {
		rec, err := p.d.Schedules.Append(ctx, schedule.New(text, sent.Label, p.d.Now()))
		if err != nil {
			return Result{}, fail(KindStorage, "create schedule", err)
		}
		res.Schedule = &rec
		log.WithField("schedule_id", rec.ID).WithField("priority", rec.Priority).Info("callback scheduled")
	}

	res.Response = p.d.Replies.Generate(ctx, text)

	if res.Schedule != nil && p.d.Notifier != nil {
		sched := *res.Schedule
		p.d.Notifier.Enqueue(notify.Notification{
			Subject:  callbackSubject,
			BodyHTML: notify.CallbackBody(res.Response, src.origLabel, text),
			Schedule: &sched,
		})
	}
	return res, nil
}

func (p *Processor) saveUpload(a transcription.Audio) error {
	name := filepath.Base(a.Filename)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return invalid(fmt.Sprintf("Invalid file name %q", a.Filename))
	}
	if p.d.UploadsDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.d.UploadsDir, 0o755); err != nil {
		return fail(KindStorage, "save upload", err)
	}
	if err := os.WriteFile(filepath.Join(p.d.UploadsDir, name), a.Data, 0o644); err != nil {
		return fail(KindStorage, "save upload", err)
	}
	return nil
}

// Schedules returns every schedule in creation order.
func (p *Processor) Schedules(ctx context.Context) ([]types.Schedule, error) {
	all, err := p.d.Schedules.List(ctx)
	if err != nil {
		return nil, fail(KindStorage, "list schedules", err)
	}
	return all, nil
}

// Stats summarizes the schedule backlog.
func (p *Processor) Stats(ctx context.Context) (aggregator.Insight, error) {
	all, err := p.Schedules(ctx)
	if err != nil {
		return aggregator.Insight{}, err
	}
	return aggregator.Aggregate(all), nil
}

// UpdateSchedule sets status and notes on schedule id and stamps the update
// time. Other fields are never touched.
func (p *Processor) UpdateSchedule(ctx context.Context, id, status, notes string) error {
	if status == "" {
		return invalid(MsgNoStatus)
	}
	stamp := p.d.Now().Format(types.TimestampLayout)
	ok, err := p.d.Schedules.Update(ctx, id, schedule.Patch{
		Status:    &status,
		Notes:     &notes,
		UpdatedAt: &stamp,
	})
	if err != nil {
		return fail(KindStorage, "update schedule", err)
	}
	if !ok {
		return &Error{Kind: KindNotFound, Err: errors.New(MsgNotFound)}
	}
	p.log.WithField("schedule_id", id).WithField("status", status).Info("schedule updated")
	return nil
}

// FAQs returns the FAQ mapping in insertion order.
func (p *Processor) FAQs() (faq.List, error) {
	l, err := p.d.FAQ.List()
	if err != nil {
		return nil, fail(KindStorage, "load faq", err)
	}
	return l, nil
}

// AddFAQ adds or replaces a FAQ entry.
func (p *Processor) AddFAQ(question, answer string) error {
	if question == "" || answer == "" {
		return invalid(MsgFAQRequired)
	}
	if err := p.d.FAQ.Add(question, answer); err != nil {
		return fail(KindStorage, "add faq", err)
	}
	return nil
}
