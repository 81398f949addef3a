package service

import "time"

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
