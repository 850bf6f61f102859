/* Copyright (c) 2025 initiative-health contributors
 * SPDX-License-Identifier: BSD-3-Clause */
package repo

import (
    "context"
    "errors"
    "time"

    "github.com/chriscantu/initiative-health/internal/config"
    "github.com/chriscantu/initiative-health/internal/domain"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

// Repository records run bookkeeping and the per-run classified
// snapshot consumed by the report renderer. The pipeline itself never
// reads initiative state back; classification stays run-scoped.
type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

func (r *Repository) StartJobRun(ctx context.Context, spec string) (int64, error) {
    const q = `INSERT INTO job_runs(started_at, spec, success) VALUES(now(), $1, false) RETURNING id`
    var id int64
    if err := r.db.Pool.QueryRow(ctx, q, spec).Scan(&id); err != nil { return 0, err }
    return id, nil
}

func (r *Repository) FinishJobRun(ctx context.Context, id int64, sum domain.ExtractionSummary, success bool, errStr string) error {
    const q = `UPDATE job_runs SET finished_at=now(),
        records_requested=$2, records_returned=$3, records_skipped=$4,
        warnings=$5, success=$6, error=$7 WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, sum.RecordsRequested, sum.RecordsReturned, sum.RecordsSkipped, sum.Warnings, success, errStr)
    return err
}

type LastRun struct {
    StartedAt        time.Time  `json:"started_at"`
    FinishedAt       *time.Time `json:"finished_at"`
    Spec             string     `json:"spec"`
    RecordsRequested int        `json:"records_requested"`
    RecordsReturned  int        `json:"records_returned"`
    RecordsSkipped   int        `json:"records_skipped"`
    Warnings         []string   `json:"warnings"`
    Success          bool       `json:"success"`
    Error            string     `json:"error"`
}

func (r *Repository) GetLastRun(ctx context.Context) (*LastRun, error) {
    const q = `SELECT started_at, finished_at, spec::text,
        coalesce(records_requested,0), coalesce(records_returned,0), coalesce(records_skipped,0),
        coalesce(warnings,'{}'), coalesce(success,false), coalesce(error,'')
        FROM job_runs ORDER BY id DESC LIMIT 1`
    row := r.db.Pool.QueryRow(ctx, q)
    lr := &LastRun{}
    if err := row.Scan(&lr.StartedAt, &lr.FinishedAt, &lr.Spec, &lr.RecordsRequested, &lr.RecordsReturned, &lr.RecordsSkipped, &lr.Warnings, &lr.Success, &lr.Error); err != nil {
        return nil, err
    }
    return lr, nil
}

// InsertSnapshots writes the classified initiative rows for one run.
// Write-only from the pipeline's point of view; the renderer reads
// them by run_id.
func (r *Repository) InsertSnapshots(ctx context.Context, runID int64, inis []domain.Initiative) error {
    if len(inis) == 0 { return nil }
    batch := &pgx.Batch{}
    const q = `INSERT INTO initiative_snapshots(run_id, key, title, parent_key, assignee,
            status, raw_status, priority, raw_priority, last_updated, health)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (run_id, key) DO NOTHING`
    for _, i := range inis {
        batch.Queue(q, runID, i.Key, i.Title, i.ParentKey, i.Assignee,
            string(i.Status), i.RawStatus, string(i.Priority), i.RawPriority, i.LastUpdated, string(i.Health))
    }
    br := r.db.Pool.SendBatch(ctx, batch)
    defer br.Close()
    for range inis { if _, err := br.Exec(); err != nil { return err } }
    return nil
}
