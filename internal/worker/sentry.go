package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
)

// SentryMiddleware wraps asynq job handlers with Sentry error capture. A
// panicking handler is reported and turned into a task error.
func SentryMiddleware(h asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) (err error) {
		taskID, _ := asynq.GetTaskID(ctx)
		queueName, _ := asynq.GetQueueName(ctx)

		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetTag("task_type", t.Type())
		hub.Scope().SetTag("task_id", taskID)
		hub.Scope().SetTag("queue", queueName)

		ctx = sentry.SetHubOnContext(ctx, hub)

		defer func() {
			if r := recover(); r != nil {
				hub.RecoverWithContext(ctx, r)
				err = fmt.Errorf("task %s panicked: %v", t.Type(), r)
			}
		}()

		err = h.ProcessTask(ctx, t)
		if err != nil && !errors.Is(err, asynq.SkipRetry) {
			hub.CaptureException(err)
		}
		return err
	})
}
