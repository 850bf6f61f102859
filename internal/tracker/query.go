package tracker

import (
    "errors"
    "strings"
)

// ErrEmptyAssignees rejects queries with no assignee scope. An
// unbounded query would scan the whole project, so it fails before any
// network call.
var ErrEmptyAssignees = errors.New("tracker: assignee set is empty, refusing unbounded query")

// Filter is the inbound search specification.
type Filter struct {
    Project          string
    Assignees        []string
    ExcludedStatuses []string
}

// BuildQuery constructs the JQL search expression: project scope AND
// assignee set AND status exclusions, sorted so stale high-priority
// items surface first. All literals are quoted.
func BuildQuery(f Filter) (string, error) {
    if len(f.Assignees) == 0 { return "", ErrEmptyAssignees }
    var clauses []string
    if p := strings.TrimSpace(f.Project); p != "" {
        clauses = append(clauses, "project = "+quoteJQL(p))
    }
    clauses = append(clauses, "assignee in ("+quoteList(f.Assignees)+")")
    if len(f.ExcludedStatuses) > 0 {
        clauses = append(clauses, "status not in ("+quoteList(f.ExcludedStatuses)+")")
    }
    return strings.Join(clauses, " AND ") + " ORDER BY priority DESC, updated ASC", nil
}

func quoteList(vals []string) string {
    out := make([]string, 0, len(vals))
    for _, v := range vals {
        v = strings.TrimSpace(v)
        if v == "" { continue }
        out = append(out, quoteJQL(v))
    }
    return strings.Join(out, ", ")
}

func quoteJQL(s string) string {
    s = strings.ReplaceAll(s, `\`, `\\`)
    s = strings.ReplaceAll(s, `"`, `\"`)
    return `"` + s + `"`
}
