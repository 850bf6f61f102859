package services

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/chriscantu/initiative-health/internal/domain"
)

var errMissingKey = errors.New("record has no key")

// normalizeRecord maps one raw search record onto the typed initiative
// entity. A missing key is fatal for the record; a missing status is
// not, it normalizes to unmapped and the classifier applies its
// conservative default.
func normalizeRecord(raw map[string]any) (domain.Initiative, error) {
    key := strings.TrimSpace(toStrAny(raw["key"]))
    if key == "" { return domain.Initiative{}, errMissingKey }
    fields, _ := raw["fields"].(map[string]any)

    ini := domain.Initiative{Key: key}
    ini.Title = toStrAny(fields["summary"])

    rawStatus := ""
    if st, ok := fields["status"].(map[string]any); ok {
        rawStatus = toStrAny(st["name"])
        if rawStatus == "" { rawStatus = optionToString(st) }
    } else {
        rawStatus = optionToString(fields["status"])
    }
    ini.Status = domain.ParseStatus(rawStatus)
    if ini.Status == domain.StatusUnmapped && strings.TrimSpace(rawStatus) != "" {
        ini.RawStatus = rawStatus
    }

    rawPriority := ""
    if pr, ok := fields["priority"].(map[string]any); ok {
        rawPriority = toStrAny(pr["name"])
        if rawPriority == "" { rawPriority = optionToString(pr) }
    } else {
        rawPriority = optionToString(fields["priority"])
    }
    ini.Priority = domain.ParsePriority(rawPriority)
    if ini.Priority == domain.PriorityNone && strings.TrimSpace(rawPriority) != "" {
        ini.RawPriority = rawPriority
    }

    if as, ok := fields["assignee"].(map[string]any); ok {
        ini.Assignee = toStrAny(as["displayName"])
        if ini.Assignee == "" { ini.Assignee = toStrAny(as["accountId"]) }
        if ini.Assignee == "" { ini.Assignee = toStrAny(as["name"]) }
    }
    if p, ok := fields["parent"].(map[string]any); ok {
        ini.ParentKey = toStrAny(p["key"])
    }
    ini.LastUpdated = parseTimeUTC(fields["updated"])
    return ini, nil
}

func parseTimeUTC(v any) *time.Time {
    s, _ := v.(string)
    if s == "" { return nil }
    layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700", "2006-01-02"}
    for _, l := range layouts {
        if t, err := time.Parse(l, s); err == nil {
            tt := t.UTC(); return &tt
        }
    }
    return nil
}

func toStrAny(v any) string {
    if v == nil { return "" }
    if s, ok := v.(string); ok { return s }
    return fmt.Sprintf("%v", v)
}

// optionToString extracts tracker option value objects: maps carrying
// value/name keys, or lists of them.
func optionToString(v any) string {
    if v == nil { return "" }
    switch t := v.(type) {
    case string:
        return t
    case map[string]any:
        if s, ok := t["value"].(string); ok { return s }
        if name, ok := t["name"].(string); ok { return name }
        return toStrAny(v)
    case []any:
        vals := make([]string, 0, len(t))
        for _, it := range t {
            switch m := it.(type) {
            case map[string]any:
                if s, ok := m["value"].(string); ok { vals = append(vals, s); continue }
                if name, ok := m["name"].(string); ok { vals = append(vals, name); continue }
            case string:
                vals = append(vals, m)
            }
        }
        return strings.Join(vals, ", ")
    default:
        return toStrAny(v)
    }
}
