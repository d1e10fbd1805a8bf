package claims

import "time"

// Clock returns the current unix time in seconds.
type Clock interface {
	Now() int64
}

type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().Unix() }
