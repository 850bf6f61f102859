package domain

import "time"

// maxStaleDays stands in for "never updated as far as we know".
// Records whose timestamp failed to parse classify as maximally stale
// rather than fresh.
const maxStaleDays = 1 << 30

// DaysSince returns whole days elapsed from last to now, floored.
// A nil or future timestamp never goes negative; nil means the update
// time is unknown and is treated as maximally stale.
func DaysSince(now time.Time, last *time.Time) int {
    if last == nil { return maxStaleDays }
    d := now.Sub(*last)
    if d < 0 { return 0 }
    return int(d.Hours() / 24)
}

// Classify computes the health state for one initiative. It is a pure
// total function of (status, priority, daysSinceUpdate): every input
// combination maps to a defined state, first matching rule wins.
//
//  1. done/closed          -> green, regardless of anything else
//  2. canceled             -> canceled, regardless of anything else
//  3. at_risk              -> red
//  4. in_progress          -> red if critical and stale >7d,
//                             yellow if stale >14d, else green
//  5. new/committed        -> yellow if critical, else green
//  6. anything unmapped    -> yellow (unknown states need attention,
//                             never silently green)
func Classify(status Status, priority Priority, daysSinceUpdate int) HealthState {
    switch status {
    case StatusDone, StatusClosed:
        return HealthGreen
    case StatusCanceled:
        return HealthCanceled
    case StatusAtRisk:
        return HealthRed
    case StatusInProgress:
        if priority == PriorityCritical && daysSinceUpdate > 7 { return HealthRed }
        if daysSinceUpdate > 14 { return HealthYellow }
        return HealthGreen
    case StatusNew, StatusCommitted:
        if priority == PriorityCritical { return HealthYellow }
        return HealthGreen
    }
    return HealthYellow
}
