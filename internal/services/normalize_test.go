package services

import (
    "errors"
    "testing"
    "time"

    "github.com/chriscantu/initiative-health/internal/domain"
)

func rec(key string, fields map[string]any) map[string]any {
    return map[string]any{"key": key, "fields": fields}
}

func TestNormalizeRecord_FullRecord(t *testing.T) {
    ini, err := normalizeRecord(rec("PLAT-42", map[string]any{
        "summary":  "Ship the billing migration",
        "status":   map[string]any{"name": "In Progress"},
        "priority": map[string]any{"name": "Highest"},
        "assignee": map[string]any{"displayName": "Dana K", "accountId": "abc123"},
        "parent":   map[string]any{"key": "PLAT-1"},
        "updated":  "2025-06-10T08:30:00.000+0000",
    }))
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if ini.Key != "PLAT-42" { t.Fatalf("key = %q", ini.Key) }
    if ini.Status != domain.StatusInProgress { t.Fatalf("status = %q", ini.Status) }
    if ini.Priority != domain.PriorityCritical { t.Fatalf("priority = %q", ini.Priority) }
    if ini.Assignee != "Dana K" { t.Fatalf("assignee = %q", ini.Assignee) }
    if ini.ParentKey != "PLAT-1" { t.Fatalf("parent = %q", ini.ParentKey) }
    if ini.LastUpdated == nil { t.Fatal("expected parsed timestamp") }
    want := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
    if !ini.LastUpdated.Equal(want) { t.Fatalf("updated = %v, want %v", ini.LastUpdated, want) }
}

func TestNormalizeRecord_MissingKeyFatal(t *testing.T) {
    _, err := normalizeRecord(map[string]any{"fields": map[string]any{"summary": "x"}})
    if !errors.Is(err, errMissingKey) { t.Fatalf("expected errMissingKey, got %v", err) }
}

func TestNormalizeRecord_MissingStatusIsUnmapped(t *testing.T) {
    ini, err := normalizeRecord(rec("PLAT-7", map[string]any{"summary": "no status"}))
    if err != nil { t.Fatalf("missing status must not be fatal: %v", err) }
    if ini.Status != domain.StatusUnmapped { t.Fatalf("status = %q, want unmapped", ini.Status) }
    if ini.RawStatus != "" { t.Fatalf("raw status should be empty, got %q", ini.RawStatus) }
}

func TestNormalizeRecord_UnknownStatusPreserved(t *testing.T) {
    ini, err := normalizeRecord(rec("PLAT-8", map[string]any{
        "status": map[string]any{"name": "Blocked Upstream"},
    }))
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if ini.Status != domain.StatusUnmapped { t.Fatalf("status = %q, want unmapped", ini.Status) }
    if ini.RawStatus != "Blocked Upstream" { t.Fatalf("raw status = %q, want verbatim", ini.RawStatus) }
}

func TestNormalizeRecord_UnknownPriorityPreserved(t *testing.T) {
    ini, err := normalizeRecord(rec("PLAT-9", map[string]any{
        "status":   map[string]any{"name": "New"},
        "priority": map[string]any{"name": "P4"},
    }))
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if ini.Priority != domain.PriorityNone { t.Fatalf("priority = %q, want none", ini.Priority) }
    if ini.RawPriority != "P4" { t.Fatalf("raw priority = %q, want verbatim", ini.RawPriority) }
}

func TestNormalizeRecord_BadTimestampStaysNil(t *testing.T) {
    ini, err := normalizeRecord(rec("PLAT-10", map[string]any{
        "status":  map[string]any{"name": "In Progress"},
        "updated": "last tuesday",
    }))
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if ini.LastUpdated != nil { t.Fatalf("unparsable timestamp must stay nil, got %v", ini.LastUpdated) }
    // nil lastUpdated classifies as maximally stale, not fresh
    h := domain.Classify(ini.Status, domain.PriorityHigh, domain.DaysSince(time.Now(), ini.LastUpdated))
    if h != domain.HealthYellow { t.Fatalf("stale in_progress high = %q, want yellow", h) }
}

func TestNormalizeRecord_StatusAsOptionObject(t *testing.T) {
    ini, err := normalizeRecord(rec("PLAT-11", map[string]any{
        "status": map[string]any{"value": "Committed"},
    }))
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if ini.Status != domain.StatusCommitted { t.Fatalf("status = %q, want committed", ini.Status) }
}

func TestNormalizeRecord_AssigneeFallsBackToAccountID(t *testing.T) {
    ini, err := normalizeRecord(rec("PLAT-12", map[string]any{
        "assignee": map[string]any{"accountId": "acct-9"},
    }))
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if ini.Assignee != "acct-9" { t.Fatalf("assignee = %q", ini.Assignee) }
}
