package syncer

import "time"

// SetClock overrides the orchestrator's time source.
func (o *Orchestrator) SetClock(fn func() time.Time) { o.now = fn }
