package client

import "time"

const (
	// ShowDelay separates un-hiding the modal root from starting its
	// entrance transition.
	ShowDelay = 10 * time.Millisecond
	// HideDelay lets the exit transition finish before the root is hidden.
	HideDelay = 300 * time.Millisecond
)

// Scheduler runs f once after d. Scheduled work cannot be cancelled.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
