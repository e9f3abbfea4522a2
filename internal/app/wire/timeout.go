package wire

import "time"

// Timeout is the optional third slot: absent, explicit null, or an epoch
// millisecond deadline.
type Timeout struct {
	present bool
	at      time.Time
}

var (
	OmitTimeout = Timeout{}
	NullTimeout = Timeout{present: true}
)

func TimeoutAt(at time.Time) Timeout {
	return Timeout{present: true, at: at}
}

// TurnTimeout is the slot for a submission applied at: omitted without a
// turn limit, null once the game has ended, otherwise at plus limit.
func TurnTimeout(limit time.Duration, at time.Time, ended bool) Timeout {
	switch {
	case limit <= 0:
		return OmitTimeout
	case ended:
		return NullTimeout
	default:
		return TimeoutAt(at.Add(limit))
	}
}

func (t Timeout) Present() bool {
	return t.present
}

// At returns the deadline, false when absent or null.
func (t Timeout) At() (time.Time, bool) {
	if !t.present || t.at.IsZero() {
		return time.Time{}, false
	}
	return t.at, true
}

func (t Timeout) value() any {
	at, ok := t.At()
	if !ok || at.UnixMilli() == 0 {
		return nil
	}
	return at.UnixMilli()
}
