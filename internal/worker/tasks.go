package worker

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeCleanupAudio = "cleanup:audio"
)

// CleanupAudioPayload is the payload for temp audio cleanup tasks
type CleanupAudioPayload struct {
	Dir    string        `json:"dir"`
	MaxAge time.Duration `json:"max_age"`
}

// NewCleanupAudioTask creates a new cleanup task. A failed sweep is not
// retried; the next scheduled run covers it.
func NewCleanupAudioTask(payload CleanupAudioPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCleanupAudio, data, asynq.MaxRetry(0)), nil
}
