package domain

import (
    "strings"
    "time"
)

// Status is the canonical lifecycle state of an initiative. Source
// strings that do not map onto a known state keep StatusUnmapped and
// the verbatim value travels on Initiative.RawStatus.
type Status string

const (
    StatusNew        Status = "new"
    StatusCommitted  Status = "committed"
    StatusInProgress Status = "in_progress"
    StatusAtRisk     Status = "at_risk"
    StatusDone       Status = "done"
    StatusClosed     Status = "closed"
    StatusCanceled   Status = "canceled"
    StatusUnmapped   Status = "unmapped"
)

// ParseStatus maps a raw tracker status onto the canonical enum.
// "completed" and "abandoned" are accepted as source aliases.
func ParseStatus(raw string) Status {
    s := strings.ToLower(strings.TrimSpace(raw))
    s = strings.ReplaceAll(s, " ", "_")
    s = strings.ReplaceAll(s, "-", "_")
    switch s {
    case "new", "open", "backlog", "to_do", "todo":
        return StatusNew
    case "committed":
        return StatusCommitted
    case "in_progress", "doing":
        return StatusInProgress
    case "at_risk", "flagged":
        return StatusAtRisk
    case "done", "completed", "resolved":
        return StatusDone
    case "closed":
        return StatusClosed
    case "canceled", "cancelled", "abandoned":
        return StatusCanceled
    }
    return StatusUnmapped
}

type Priority string

const (
    PriorityCritical Priority = "critical"
    PriorityHigh     Priority = "high"
    PriorityMedium   Priority = "medium"
    PriorityLow      Priority = "low"
    PriorityNone     Priority = "none"
)

// ParsePriority maps tracker priority names, including the usual Jira
// spellings (Blocker/Highest/Lowest). Unknown names come back as
// PriorityNone; the verbatim value is kept on Initiative.RawPriority.
func ParsePriority(raw string) Priority {
    switch strings.ToLower(strings.TrimSpace(raw)) {
    case "critical", "blocker", "highest":
        return PriorityCritical
    case "high":
        return PriorityHigh
    case "medium":
        return PriorityMedium
    case "low", "lowest", "minor":
        return PriorityLow
    }
    return PriorityNone
}

type HealthState string

const (
    HealthUnmapped HealthState = "unmapped"
    HealthGreen    HealthState = "green"
    HealthYellow   HealthState = "yellow"
    HealthRed      HealthState = "red"
    HealthCanceled HealthState = "canceled"
)

// Initiative is the typed record produced by one extraction run. It is
// built once from a raw tracker record, classified, and then treated
// as immutable for the rest of the run.
type Initiative struct {
    Key         string      `json:"key"`
    Title       string      `json:"title"`
    ParentKey   string      `json:"parent_key,omitempty"`
    Assignee    string      `json:"assignee,omitempty"`
    Status      Status      `json:"status"`
    RawStatus   string      `json:"raw_status,omitempty"`
    Priority    Priority    `json:"priority"`
    RawPriority string      `json:"raw_priority,omitempty"`
    LastUpdated *time.Time  `json:"last_updated,omitempty"`
    Health      HealthState `json:"health"`
}

// PiiMatch records one masked span in a redacted text field.
type PiiMatch struct {
    Category string `json:"category"`
    Index    int    `json:"index"`
    Length   int    `json:"length"`
}

// ExtractionSummary is the run-level accounting handed to the report
// renderer alongside the initiative list.
type ExtractionSummary struct {
    RecordsRequested int      `json:"records_requested"`
    RecordsReturned  int      `json:"records_returned"`
    RecordsSkipped   int      `json:"records_skipped"`
    Warnings         []string `json:"warnings,omitempty"`
}
