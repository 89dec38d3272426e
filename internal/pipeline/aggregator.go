package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hexsyn/intake/internal/model"
)

// Operation is one named, independently failing unit of work.
type Operation struct {
	// Name keys the operation in responses, e.g. "ownerNotification".
	Name string
	// ErrorType names the operation in error entries, e.g. "owner_notification".
	ErrorType string
	Role      model.Role
	Recipient string
	Run       func(ctx context.Context) (string, error)
}

// Aggregate runs every operation concurrently and waits for all of them to
// settle. One failure never cancels or hides another.
func Aggregate(ctx context.Context, ops []Operation) model.DispatchReport {
	report, _ := aggregate(ctx, ops)
	return report
}

// aggregate also returns the raw error of each operation, by index.
func aggregate(ctx context.Context, ops []Operation) (model.DispatchReport, []error) {
	outcomes := make([]model.NotificationOutcome, len(ops))
	errs := make([]error, len(ops))

	var g errgroup.Group
	for i, op := range ops {
		g.Go(func() error {
			id, err := run(ctx, op)
			outcomes[i] = model.NotificationOutcome{
				Name:      op.Name,
				Role:      op.Role,
				Success:   err == nil,
				MessageID: id,
				Recipient: op.Recipient,
			}
			if err != nil {
				outcomes[i].Error = err.Error()
				errs[i] = err
			}
			// Failures are reported through outcomes so siblings keep running.
			return nil
		})
	}
	_ = g.Wait()

	report := model.DispatchReport{
		Outcomes:     outcomes,
		AllSucceeded: true,
		Errors:       []model.DispatchError{},
	}
	for i, o := range outcomes {
		if o.Success {
			report.AnySucceeded = true
			continue
		}
		report.AllSucceeded = false
		report.Errors = append(report.Errors, model.DispatchError{
			Type:    ops[i].ErrorType,
			Message: o.Error,
		})
	}
	return report, errs
}

func run(ctx context.Context, op Operation) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", op.Name, r)
		}
	}()
	return op.Run(ctx)
}
