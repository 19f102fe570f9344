package auditor

import (
	"context"
	"time"
)

// SetSleep replaces the pause between URLs.
func (a *Auditor) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	a.sleep = fn
}
