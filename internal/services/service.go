/* Copyright (c) 2025 initiative-health contributors
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    "github.com/chriscantu/initiative-health/internal/config"
    "github.com/chriscantu/initiative-health/internal/domain"
    "github.com/chriscantu/initiative-health/internal/repo"
    "github.com/chriscantu/initiative-health/internal/tracker"
    "github.com/rs/zerolog"
    "golang.org/x/sync/errgroup"
)

type TrackerClient interface {
    Search(ctx context.Context, jql string, startAt, max int) (map[string]any, error)
}

// RunSpec is one extraction request: which initiatives to pull and how
// far to paginate. Zero PageSize/MaxResults fall back to config.
type RunSpec struct {
    Project          string   `json:"project"`
    Assignees        []string `json:"assignees"`
    ExcludedStatuses []string `json:"excluded_statuses,omitempty"`
    PageSize         int      `json:"page_size,omitempty"`
    MaxResults       int      `json:"max_results,omitempty"`
}

// RunResult is what the report renderer consumes: classified
// initiatives in page-arrival order (priority desc, staleness asc per
// the query sort) plus the run accounting. The renderer must not
// re-derive health state.
type RunResult struct {
    Initiatives []domain.Initiative      `json:"initiatives"`
    Summary     domain.ExtractionSummary `json:"summary"`
}

type Service struct {
    cfg     config.Config
    log     zerolog.Logger
    repo    *repo.Repository
    tracker TrackerClient
}

func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, tc TrackerClient) *Service {
    return &Service{cfg: cfg, log: log, repo: r, tracker: tc}
}

// Run executes the whole pipeline for one spec: build query, paginate,
// normalize, classify against the injected now, redact. The caller
// gets a complete result, a partial result with explicit warnings, or
// a single fatal error - never a silent empty success.
func (s *Service) Run(ctx context.Context, spec RunSpec, now time.Time) (*RunResult, error) {
    jql, err := tracker.BuildQuery(tracker.Filter{
        Project:          spec.Project,
        Assignees:        spec.Assignees,
        ExcludedStatuses: spec.ExcludedStatuses,
    })
    if err != nil { return nil, err }

    pageSize := spec.PageSize
    if pageSize <= 0 { pageSize = s.cfg.PageSize }
    maxResults := spec.MaxResults
    if maxResults <= 0 { maxResults = s.cfg.MaxResults }

    raw, err := tracker.NewExtractor(s.tracker, s.log).ExtractAll(ctx, jql, pageSize, maxResults)
    if err != nil { return nil, err }

    out := &RunResult{}
    out.Summary.RecordsRequested = raw.Requested
    out.Summary.Warnings = append(out.Summary.Warnings, raw.Warnings...)

    seen := make(map[string]struct{}, len(raw.Records))
    skipped := 0
    for _, rec := range raw.Records {
        ini, err := normalizeRecord(rec)
        if err != nil {
            // key and count only, never the payload
            skipped++
            s.log.Warn().Err(err).Msg("record skipped")
            continue
        }
        if _, dup := seen[ini.Key]; dup {
            skipped++
            s.log.Warn().Str("key", ini.Key).Msg("duplicate key skipped")
            continue
        }
        seen[ini.Key] = struct{}{}
        ini.Health = domain.Classify(ini.Status, ini.Priority, domain.DaysSince(now, ini.LastUpdated))
        s.redactTitle(&ini, out)
        out.Initiatives = append(out.Initiatives, ini)
    }
    out.Summary.RecordsSkipped = skipped
    out.Summary.RecordsReturned = len(out.Initiatives)
    s.log.Info().
        Int("requested", out.Summary.RecordsRequested).
        Int("returned", out.Summary.RecordsReturned).
        Int("skipped", skipped).
        Int("warnings", len(out.Summary.Warnings)).
        Msg("extraction run complete")
    return out, nil
}

// redactFn is swappable so the degrade path stays testable.
var redactFn = RedactText

// redactTitle applies PII redaction. A pattern-engine panic degrades
// to the original text with a warning; a missing report is a worse
// outcome than an unredacted title flagged for operator review.
func (s *Service) redactTitle(ini *domain.Initiative, out *RunResult) {
    defer func() {
        if r := recover(); r != nil {
            s.log.Warn().Str("key", ini.Key).Interface("panic", r).Msg("redaction failed, keeping original text")
            out.Summary.Warnings = append(out.Summary.Warnings, "redaction failed for "+ini.Key)
        }
    }()
    redacted, matches := redactFn(ini.Title)
    if len(matches) > 0 {
        s.log.Info().Str("key", ini.Key).Int("matches", len(matches)).Msg("pii masked")
    }
    ini.Title = redacted
}

// RunAll executes independent extractions concurrently, recording each
// one when a run store is configured. Each run owns its own
// accumulator; nothing is shared beyond the tracker client's internal
// rate budget. The first fatal error cancels the rest.
func (s *Service) RunAll(ctx context.Context, specs []RunSpec, now time.Time) ([]*RunResult, error) {
    results := make([]*RunResult, len(specs))
    g, gctx := errgroup.WithContext(ctx)
    for i, spec := range specs {
        g.Go(func() error {
            res, err := s.RunAndRecord(gctx, spec, now)
            if err != nil { return err }
            results[i] = res
            return nil
        })
    }
    if err := g.Wait(); err != nil { return nil, err }
    return results, nil
}

// RunAndRecord wraps Run with job-run bookkeeping and the per-run
// snapshot feed for the renderer. Recording failures are logged, not
// fatal; the extraction result stands on its own.
func (s *Service) RunAndRecord(ctx context.Context, spec RunSpec, now time.Time) (*RunResult, error) {
    var runID int64
    if s.repo != nil {
        specJSON, _ := json.Marshal(spec)
        id, err := s.repo.StartJobRun(ctx, string(specJSON))
        if err != nil { s.log.Error().Err(err).Msg("start job run failed") } else { runID = id }
    }
    res, err := s.Run(ctx, spec, now)
    if s.repo != nil && runID != 0 {
        var sum domain.ExtractionSummary
        if res != nil { sum = res.Summary }
        errStr := ""
        if err != nil { errStr = err.Error() }
        if ferr := s.repo.FinishJobRun(ctx, runID, sum, err == nil, errStr); ferr != nil {
            s.log.Error().Err(ferr).Int64("run", runID).Msg("finish job run failed")
        }
        if res != nil {
            if serr := s.repo.InsertSnapshots(ctx, runID, res.Initiatives); serr != nil {
                s.log.Error().Err(serr).Int64("run", runID).Msg("snapshot insert failed")
            }
        }
    }
    return res, err
}

// runSpecs expands the configured filter into one spec per tracker
// project. No configured projects means one unscoped spec.
func (s *Service) runSpecs() []RunSpec {
    projects := s.cfg.TrackerProjects
    if len(projects) == 0 { projects = []string{""} }
    specs := make([]RunSpec, 0, len(projects))
    for _, p := range projects {
        specs = append(specs, RunSpec{
            Project:          p,
            Assignees:        s.cfg.TrackerAssignees,
            ExcludedStatuses: s.cfg.TrackerExcludedStatuses,
            PageSize:         s.cfg.PageSize,
            MaxResults:       s.cfg.MaxResults,
        })
    }
    return specs
}

// RunScheduled is the entry point used by cron and the HTTP trigger:
// the configured filters fan out concurrently, the wall clock as now.
func (s *Service) RunScheduled(ctx context.Context) error {
    _, err := s.RunAll(ctx, s.runSpecs(), time.Now().UTC())
    return err
}

func (s *Service) GetLastRun(ctx context.Context) (any, error) {
    if s.repo == nil { return nil, errors.New("no run store configured") }
    return s.repo.GetLastRun(ctx)
}
