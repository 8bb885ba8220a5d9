package worker

import (
	"github.com/hibiken/asynq"
)

// NewServer creates a new Asynq server for processing tasks
func NewServer(redisURL string) (*asynq.Server, error) {
	opt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}

	return asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
		},
	), nil
}

// NewScheduler creates the scheduler that enqueues periodic tasks.
func NewScheduler(redisURL string) (*asynq.Scheduler, error) {
	opt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	return asynq.NewScheduler(opt, nil), nil
}

// NewMux registers the task handlers behind the Sentry and tracing middleware.
func NewMux(janitor *AudioJanitor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(SentryMiddleware)
	mux.Use(OTelMiddleware)
	mux.HandleFunc(TypeCleanupAudio, janitor.HandleCleanupAudio)
	return mux
}
