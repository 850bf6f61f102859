package domain

import (
    "testing"
    "time"
)

var allStatuses = []Status{
    StatusNew, StatusCommitted, StatusInProgress, StatusAtRisk,
    StatusDone, StatusClosed, StatusCanceled, StatusUnmapped,
}

var allPriorities = []Priority{
    PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow, PriorityNone,
}

var allHealth = map[HealthState]bool{
    HealthGreen: true, HealthYellow: true, HealthRed: true,
    HealthCanceled: true, HealthUnmapped: true,
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
    days := []int{0, 1, 7, 8, 14, 15, 30, maxStaleDays}
    for _, st := range allStatuses {
        for _, pr := range allPriorities {
            for _, d := range days {
                h := Classify(st, pr, d)
                if !allHealth[h] { t.Fatalf("Classify(%s,%s,%d) = %q not a defined state", st, pr, d, h) }
                if h2 := Classify(st, pr, d); h2 != h {
                    t.Fatalf("Classify(%s,%s,%d) not deterministic: %q vs %q", st, pr, d, h, h2)
                }
            }
        }
    }
}

func TestClassify_DoneAlwaysGreen(t *testing.T) {
    for _, st := range []Status{StatusDone, StatusClosed} {
        for _, pr := range allPriorities {
            for _, d := range []int{0, 8, 15, maxStaleDays} {
                if h := Classify(st, pr, d); h != HealthGreen {
                    t.Fatalf("Classify(%s,%s,%d) = %q, want green", st, pr, d, h)
                }
            }
        }
    }
}

func TestClassify_CanceledOverridesEverything(t *testing.T) {
    for _, pr := range allPriorities {
        for _, d := range []int{0, 1, 100} {
            if h := Classify(StatusCanceled, pr, d); h != HealthCanceled {
                t.Fatalf("Classify(canceled,%s,%d) = %q, want canceled", pr, d, h)
            }
        }
    }
}

func TestClassify_InProgress(t *testing.T) {
    cases := []struct {
        pr   Priority
        days int
        want HealthState
    }{
        {PriorityCritical, 8, HealthRed},
        {PriorityCritical, 10, HealthRed},
        {PriorityCritical, 7, HealthGreen},
        {PriorityHigh, 15, HealthYellow},
        {PriorityCritical, 15, HealthRed},
        {PriorityLow, 14, HealthGreen},
        {PriorityNone, 0, HealthGreen},
    }
    for _, c := range cases {
        if h := Classify(StatusInProgress, c.pr, c.days); h != c.want {
            t.Fatalf("Classify(in_progress,%s,%d) = %q, want %q", c.pr, c.days, h, c.want)
        }
    }
}

func TestClassify_NewCommitted(t *testing.T) {
    for _, st := range []Status{StatusNew, StatusCommitted} {
        if h := Classify(st, PriorityCritical, 0); h != HealthYellow {
            t.Fatalf("Classify(%s,critical,0) = %q, want yellow", st, h)
        }
        // non-critical stays green no matter how stale
        if h := Classify(st, PriorityLow, 30); h != HealthGreen {
            t.Fatalf("Classify(%s,low,30) = %q, want green", st, h)
        }
    }
}

func TestClassify_UnmappedIsYellow(t *testing.T) {
    if h := Classify(StatusUnmapped, PriorityNone, 0); h != HealthYellow {
        t.Fatalf("unmapped status = %q, want yellow", h)
    }
    if h := Classify(Status("weird"), PriorityHigh, 3); h != HealthYellow {
        t.Fatalf("unknown status = %q, want yellow", h)
    }
}

func TestClassify_Scenarios(t *testing.T) {
    now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
    ago := func(days int) *time.Time { t := now.AddDate(0, 0, -days); return &t }

    // X-1: in_progress + critical + 10 days stale
    if h := Classify(StatusInProgress, PriorityCritical, DaysSince(now, ago(10))); h != HealthRed {
        t.Fatalf("X-1 = %q, want red", h)
    }
    // X-2: new + low + 30 days stale
    if h := Classify(StatusNew, PriorityLow, DaysSince(now, ago(30))); h != HealthGreen {
        t.Fatalf("X-2 = %q, want green", h)
    }
    // X-3: canceled + critical + 1 day
    if h := Classify(StatusCanceled, PriorityCritical, DaysSince(now, ago(1))); h != HealthCanceled {
        t.Fatalf("X-3 = %q, want canceled", h)
    }
}

func TestDaysSince(t *testing.T) {
    now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
    half := now.Add(-36 * time.Hour)
    if d := DaysSince(now, &half); d != 1 { t.Fatalf("36h = %d days, want 1 (floor)", d) }
    future := now.Add(2 * time.Hour)
    if d := DaysSince(now, &future); d != 0 { t.Fatalf("future timestamp = %d, want 0", d) }
    if d := DaysSince(now, nil); d != maxStaleDays { t.Fatalf("nil timestamp = %d, want maximally stale", d) }
}

func TestParseStatus(t *testing.T) {
    cases := map[string]Status{
        "In Progress": StatusInProgress,
        "in-progress": StatusInProgress,
        "Completed":   StatusDone,
        "ABANDONED":   StatusCanceled,
        "cancelled":   StatusCanceled,
        "At Risk":     StatusAtRisk,
        "committed":   StatusCommitted,
        "Blocked":     StatusUnmapped,
        "":            StatusUnmapped,
    }
    for raw, want := range cases {
        if got := ParseStatus(raw); got != want {
            t.Fatalf("ParseStatus(%q) = %q, want %q", raw, got, want)
        }
    }
}

func TestParsePriority(t *testing.T) {
    cases := map[string]Priority{
        "Blocker": PriorityCritical,
        "Highest": PriorityCritical,
        "high":    PriorityHigh,
        "Medium":  PriorityMedium,
        "Lowest":  PriorityLow,
        "P4":      PriorityNone,
        "":        PriorityNone,
    }
    for raw, want := range cases {
        if got := ParsePriority(raw); got != want {
            t.Fatalf("ParsePriority(%q) = %q, want %q", raw, got, want)
        }
    }
}
