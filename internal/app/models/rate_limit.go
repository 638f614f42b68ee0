package models

import "time"

// RateLimitInput configures a fixed window limiter evaluation.
type RateLimitInput struct {
	ResourceName      string
	LimiterGroupName  string
	WindowDurationSec int
	MaxQuota          int

	// NowUTC is optional, time.Now().UTC() is used when zero.
	NowUTC time.Time
}

type RateLimitDecision struct {
	Allowed        bool
	RetryAfterSecs int
}
