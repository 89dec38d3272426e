package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hexsyn/intake/internal/email"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/validation"
)

// Common pipeline errors
var (
	ErrUnknownKind         = errors.New("unknown submission kind")
	ErrUnknownNotification = errors.New("unknown notification")
	// ErrNotificationsUnavailable means no notification could be attempted
	// because the mail transport is not available.
	ErrNotificationsUnavailable = errors.New("notification subsystem unavailable")
)

// ValidationError is returned when a submission is rejected by the validator
type ValidationError struct {
	Kind   model.Kind
	Errors validation.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Kind, e.Errors.Error())
}

func (e *ValidationError) Unwrap() error {
	return e.Errors
}

// Options tune a Pipeline
type Options struct {
	Mode Mode
	// AwaitRowLog makes Submit wait for the spreadsheet append before
	// notifying. The append never affects the response either way.
	AwaitRowLog   bool
	AdminAddress  string
	UploadTimeout time.Duration
	RowLogTimeout time.Duration
	Now           func() time.Time
}

// Request is one raw submission as received by the transport layer
type Request struct {
	Kind       model.Kind
	Fields     map[string]any
	Attachment *model.Attachment
}

// Result is what the transport layer needs to build a response
type Result struct {
	Submission *model.Submission
	// Report is nil in async mode.
	Report  *model.DispatchReport
	Outcome Outcome
	Mode    Mode
}

// Pipeline orchestrates validation, storage, logging and notification of
// submissions.
type Pipeline struct {
	validator Validator
	uploader  FileUploader
	rows      RowLogger
	sender    EmailSender
	sink      Sink
	log       *logger.Logger
	specs     map[model.Kind]KindSpec
	opts      Options
	tracer    trace.Tracer
	tasks     sync.WaitGroup
}

// New creates a Pipeline. uploader and rows may be nil when no file
// provider or spreadsheet is configured.
func New(
	validator Validator,
	uploader FileUploader,
	rows RowLogger,
	sender EmailSender,
	sink Sink,
	log *logger.Logger,
	opts Options,
) *Pipeline {
	if opts.Mode == "" {
		opts.Mode = ModeSync
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Pipeline{
		validator: validator,
		uploader:  uploader,
		rows:      rows,
		sender:    sender,
		sink:      sink,
		log:       log.WithComponent("pipeline"),
		specs:     DefaultSpecs(),
		opts:      opts,
		tracer:    otel.Tracer("github.com/hexsyn/intake/internal/pipeline"),
	}
}

// Mode returns the configured dispatch mode
func (p *Pipeline) Mode() Mode {
	return p.opts.Mode
}

// Submit runs one submission through every stage and reports the outcome.
// A *ValidationError is returned when the payload is rejected; nothing
// downstream runs in that case.
func (p *Pipeline) Submit(ctx context.Context, req Request) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Submit", trace.WithAttributes(
		attribute.String("intake.kind", req.Kind.String()),
		attribute.String("intake.mode", string(p.opts.Mode)),
	))
	defer span.End()

	sub, spec, err := p.accept(req.Kind, req.Fields)
	if err != nil {
		span.SetStatus(codes.Error, "rejected")
		return nil, err
	}
	span.SetAttributes(attribute.String("intake.submission_id", sub.ID.String()))
	log := p.log.WithSubmission(sub.Kind.String(), sub.ID.String())

	if req.Attachment != nil && spec.AcceptsAttachment {
		sub.Attachment = req.Attachment
		p.upload(ctx, spec, sub, log)
	}

	var rowLog *model.RowLogOutcome
	if p.rows != nil {
		if p.opts.AwaitRowLog {
			outcome := p.appendRow(context.WithoutCancel(ctx), sub, log)
			rowLog = &outcome
		} else {
			p.spawn(ctx, "row_log", sub, func(ctx context.Context) {
				p.appendRow(ctx, sub, log)
			})
		}
	}

	ops := p.operations(spec.Notifications, sub)

	if p.opts.Mode == ModeAsync {
		p.spawn(ctx, "notifications", sub, func(ctx context.Context) {
			report := Aggregate(ctx, ops)
			p.settle(sub, ModeAsync, report, log)
		})
		return &Result{Submission: sub, Outcome: OutcomeProcessing, Mode: ModeAsync}, nil
	}

	report, errs := p.notify(ctx, ops)
	report.RowLog = rowLog
	p.settle(sub, ModeSync, report, log)

	result := &Result{Submission: sub, Report: &report, Outcome: OutcomeOf(report), Mode: ModeSync}
	if unavailable(errs) {
		span.SetStatus(codes.Error, "notifications unavailable")
		return result, fmt.Errorf("%w: %v", ErrNotificationsUnavailable, errs[0])
	}
	if result.Outcome == OutcomeFailed {
		span.SetStatus(codes.Error, "notifications failed")
	}
	return result, nil
}

// Notify validates fields and sends a single named notification, always
// awaiting the result regardless of the dispatch mode.
func (p *Pipeline) Notify(ctx context.Context, kind model.Kind, name string, fields map[string]any) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Notify", trace.WithAttributes(
		attribute.String("intake.kind", kind.String()),
		attribute.String("intake.notification", name),
	))
	defer span.End()

	spec, ok := p.specs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	n, ok := spec.Notification(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownNotification, kind, name)
	}

	sub, _, err := p.accept(kind, fields)
	if err != nil {
		return nil, err
	}
	log := p.log.WithSubmission(sub.Kind.String(), sub.ID.String())

	report, errs := p.notify(ctx, p.operations([]Notification{n}, sub))
	p.settle(sub, ModeSync, report, log)

	result := &Result{Submission: sub, Report: &report, Outcome: OutcomeOf(report), Mode: ModeSync}
	if unavailable(errs) {
		span.SetStatus(codes.Error, "notifications unavailable")
		return result, fmt.Errorf("%w: %v", ErrNotificationsUnavailable, errs[0])
	}
	return result, nil
}

// Wait blocks until every background task has finished or ctx is done
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}

func (p *Pipeline) accept(kind model.Kind, fields map[string]any) (*model.Submission, KindSpec, error) {
	spec, ok := p.specs[kind]
	if !ok {
		return nil, KindSpec{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	form, err := p.validator.Validate(kind, fields)
	if err != nil {
		var fieldErrs validation.FieldErrors
		if errors.As(err, &fieldErrs) {
			return nil, spec, &ValidationError{Kind: kind, Errors: fieldErrs}
		}
		return nil, spec, fmt.Errorf("validate %s: %w", kind, err)
	}
	return model.NewSubmission(form, p.opts.Now()), spec, nil
}

// upload stores the attachment. Failure leaves an empty UploadResult so
// the submission continues without a resume link.
func (p *Pipeline) upload(ctx context.Context, spec KindSpec, sub *model.Submission, log *logger.Logger) {
	if p.uploader == nil {
		log.Debug().Msg("no file provider configured, attachment not stored")
		sub.Upload = &model.UploadResult{}
		return
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.upload")
	defer span.End()
	if p.opts.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.UploadTimeout)
		defer cancel()
	}

	ownerName, label := sub.Form.SubmitterName(), sub.Kind.Label()
	if spec.UploadNames != nil {
		ownerName, label = spec.UploadNames(sub.Form)
	}

	result, err := p.uploader.Upload(ctx, sub.Attachment, ownerName, label)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		log.Error().Err(err).Str("file_name", sub.Attachment.FileName).Msg("Attachment upload failed")
		p.sink.UploadFailed(sub, err)
		sub.Upload = &model.UploadResult{}
		return
	}
	sub.Upload = &result
}

func (p *Pipeline) appendRow(ctx context.Context, sub *model.Submission, log *logger.Logger) model.RowLogOutcome {
	if p.opts.RowLogTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.RowLogTimeout)
		defer cancel()
	}

	err := p.rows.Append(ctx, sub)
	p.sink.RowLogged(sub, err)
	if err != nil {
		log.Error().Err(err).Msg("Failed to append submission to spreadsheet")
		return model.RowLogOutcome{Attempted: true, Error: err.Error()}
	}
	return model.RowLogOutcome{Attempted: true, Success: true}
}

func (p *Pipeline) operations(notifications []Notification, sub *model.Submission) []Operation {
	ops := make([]Operation, 0, len(notifications))
	for _, n := range notifications {
		recipient := n.Recipient(sub, p.opts.AdminAddress)
		ops = append(ops, Operation{
			Name:      n.Name,
			ErrorType: n.ErrorType,
			Role:      n.Role,
			Recipient: recipient,
			Run: func(ctx context.Context) (string, error) {
				return p.sender.Send(ctx, n.Role, recipient, sub)
			},
		})
	}
	return ops
}

// notify runs ops detached from the caller's cancellation so a client
// disconnect cannot leave one of a pair of emails half sent. Each send
// carries its own timeout.
func (p *Pipeline) notify(ctx context.Context, ops []Operation) (model.DispatchReport, []error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.notify", trace.WithAttributes(
		attribute.Int("intake.notifications", len(ops)),
	))
	defer span.End()
	return aggregate(context.WithoutCancel(ctx), ops)
}

func (p *Pipeline) settle(sub *model.Submission, mode Mode, report model.DispatchReport, log *logger.Logger) {
	p.sink.Dispatched(sub, mode, report)
	log.SubmissionOutcome(sub.Kind.String(), sub.ID.String(), string(OutcomeOf(report)), report.Failures())
}

// spawn runs fn as a tracked background task. Panics are reported to the
// sink instead of crashing the process.
func (p *Pipeline) spawn(ctx context.Context, task string, sub *model.Submission, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	p.tasks.Add(1)
	go func() {
		defer p.tasks.Done()
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				p.log.Error().Err(err).Str("task", task).Str("submission_id", sub.ID.String()).Msg("Background task failed")
				p.sink.TaskFailed(sub, task, err)
			}
		}()
		fn(ctx)
	}()
}

// unavailable reports whether every operation failed because the mail
// transport could not be used at all.
func unavailable(errs []error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		if !errors.Is(err, email.ErrTransportUnavailable) {
			return false
		}
	}
	return true
}
