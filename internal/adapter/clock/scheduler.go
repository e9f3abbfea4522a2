package clock

import "time"

// TimerScheduler runs callbacks on their own goroutine after a wall-clock
// delay.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
