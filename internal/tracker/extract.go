/* Copyright (c) 2025 initiative-health contributors
 * SPDX-License-Identifier: BSD-3-Clause */
package tracker

import (
    "context"
    "fmt"

    "github.com/rs/zerolog"
)

type Searcher interface {
    Search(ctx context.Context, jql string, startAt, max int) (map[string]any, error)
}

// Result carries the raw records gathered by one extraction plus any
// partial-result warnings. A non-empty Warnings slice means the run
// stopped early (page failure or cancellation) and Records holds
// everything gathered up to that point.
type Result struct {
    Records   []map[string]any
    Warnings  []string
    Requested int
    Pages     int
}

type Extractor struct {
    client Searcher
    log    zerolog.Logger
}

func NewExtractor(client Searcher, log zerolog.Logger) *Extractor {
    return &Extractor{client: client, log: log}
}

// ExtractAll drives the search page by page until the server reports
// no further results or maxResults is reached. Pagination is
// sequential; each request depends on the offset advanced by the
// previous response.
//
// If a page fails after the client's retry budget and earlier pages
// succeeded, the records gathered so far are returned with a warning
// instead of being discarded. Auth failures abort regardless.
func (e *Extractor) ExtractAll(ctx context.Context, jql string, pageSize, maxResults int) (*Result, error) {
    if pageSize <= 0 { pageSize = 50 }
    res := &Result{Requested: maxResults}
    startAt := 0
    for {
        if maxResults > 0 && len(res.Records) >= maxResults { break }
        if err := ctx.Err(); err != nil {
            res.Warnings = append(res.Warnings, fmt.Sprintf("partial result: canceled after %d records: %v", len(res.Records), err))
            e.log.Warn().Int("records", len(res.Records)).Msg("extraction canceled between pages")
            return res, nil
        }
        max := pageSize
        if maxResults > 0 && maxResults-len(res.Records) < max { max = maxResults - len(res.Records) }
        page, err := e.client.Search(ctx, jql, startAt, max)
        if err != nil {
            if IsAuth(err) || len(res.Records) == 0 { return nil, err }
            res.Warnings = append(res.Warnings, fmt.Sprintf("partial result: page at offset %d failed after retries: %v", startAt, err))
            e.log.Warn().Err(err).Int("offset", startAt).Int("records", len(res.Records)).Msg("page fetch failed, returning partial result")
            return res, nil
        }
        arr, _ := page["issues"].([]any)
        for _, it := range arr {
            if im, _ := it.(map[string]any); im != nil { res.Records = append(res.Records, im) }
        }
        res.Pages++
        if total, ok := page["total"].(float64); ok && total >= 0 {
            req := int(total)
            if maxResults > 0 && req > maxResults { req = maxResults }
            res.Requested = req
        }
        if len(arr) == 0 { break }
        next := startAt + len(arr)
        if total, ok := page["total"].(float64); ok && float64(next) >= total { break }
        if len(arr) < max { break }
        startAt = next
    }
    if res.Requested < len(res.Records) { res.Requested = len(res.Records) }
    return res, nil
}
