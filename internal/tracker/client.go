/* Copyright (c) 2025 initiative-health contributors
 * SPDX-License-Identifier: BSD-3-Clause */
package tracker

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "math/rand/v2"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/chriscantu/initiative-health/internal/config"
    "github.com/rs/zerolog"
    "golang.org/x/time/rate"
)

// searchFields is the projection requested from the search endpoint.
// Everything the pipeline consumes, nothing more.
const searchFields = "summary,status,priority,assignee,parent,updated"

type Client struct {
    baseURL string
    token   string
    user    string
    pass    string
    http    *http.Client
    log     zerolog.Logger
    limiter *rate.Limiter

    maxAttempts   int
    baseWait      time.Duration
    maxRetryAfter time.Duration
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    rps := rate.Limit(cfg.RequestRate)
    if cfg.RequestRate <= 0 { rps = rate.Inf }
    burst := cfg.RequestBurst
    if burst <= 0 { burst = 1 }
    attempts := cfg.MaxAttempts
    if attempts <= 0 { attempts = 3 }
    baseWait := cfg.RetryBaseWait
    if baseWait <= 0 { baseWait = 300 * time.Millisecond }
    maxRA := cfg.MaxRetryAfter
    if maxRA <= 0 { maxRA = 2 * time.Minute }
    return &Client{
        baseURL:       cfg.TrackerBaseURL,
        token:         cfg.TrackerPAT,
        user:          cfg.TrackerUsername,
        pass:          cfg.TrackerPassword,
        http:          &http.Client{ Timeout: cfg.HTTPTimeout },
        log:           log,
        limiter:       rate.NewLimiter(rps, burst),
        maxAttempts:   attempts,
        baseWait:      baseWait,
        maxRetryAfter: maxRA,
    }
}

// Search runs one page of the initiative search.
func (c *Client) Search(ctx context.Context, jql string, startAt, max int) (map[string]any, error) {
    if jql == "" { return nil, errors.New("tracker: empty query") }
    q := url.Values{}
    q.Set("jql", jql)
    q.Set("fields", searchFields)
    if startAt > 0 { q.Set("startAt", strconv.Itoa(startAt)) }
    if max > 0 { q.Set("maxResults", strconv.Itoa(max)) }
    u := c.apiURL("/rest/api/2/search", q)
    return c.doJSON(ctx, http.MethodGet, u, nil)
}

func (c *Client) apiURL(path string, q url.Values) string {
    base := strings.TrimRight(c.baseURL, "/")
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := base + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body any) (map[string]any, error) {
    if c.baseURL == "" { return nil, errors.New("tracker: empty baseURL") }
    var payload []byte
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return nil, err }
        payload = b
    }
    var lastErr error
    for attempt := 0; attempt < c.maxAttempts; attempt++ {
        if err := c.limiter.Wait(ctx); err != nil { return nil, err }
        var r io.Reader
        if payload != nil { r = bytes.NewReader(payload) }
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return nil, err }
        if payload != nil { req.Header.Set("Content-Type", "application/json") }
        if c.token != "" {
            req.Header.Set("Authorization", "Bearer "+c.token)
        } else if c.user != "" && c.pass != "" {
            req.SetBasicAuth(c.user, c.pass)
        }
        resp, err := c.http.Do(req)
        if err != nil {
            lastErr = &APIError{Kind: KindTransient, Err: err}
            if err := c.sleep(ctx, c.backoffWait(attempt)); err != nil { return nil, err }
            continue
        }
        out, apiErr := c.decode(resp)
        if apiErr == nil { return out, nil }
        if !apiErr.Retryable() { return nil, apiErr }
        lastErr = apiErr
        wait := c.backoffWait(attempt)
        if apiErr.Kind == KindRateLimit {
            // rate-limit waits honor Retry-After, bounded separately
            // from the transient schedule
            if ra, ok := retryAfter(resp); ok {
                if ra > c.maxRetryAfter { ra = c.maxRetryAfter }
                wait = ra
            }
            c.log.Warn().Dur("wait", wait).Int("attempt", attempt+1).Msg("tracker rate limited")
        }
        if err := c.sleep(ctx, wait); err != nil { return nil, err }
    }
    return nil, lastErr
}

func (c *Client) decode(resp *http.Response) (map[string]any, *APIError) {
    defer resp.Body.Close()
    if resp.StatusCode < 300 {
        var out map[string]any
        if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
            return nil, &APIError{Kind: KindTransient, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
        }
        return out, nil
    }
    b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
    apiErr := &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
    switch {
    case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
        apiErr.Kind = KindAuth
    case resp.StatusCode == http.StatusNotFound:
        apiErr.Kind = KindNotFound
    case resp.StatusCode == http.StatusTooManyRequests:
        apiErr.Kind = KindRateLimit
    case resp.StatusCode >= 500:
        apiErr.Kind = KindTransient
    default:
        apiErr.Kind = KindClient
    }
    return nil, apiErr
}

// backoffWait doubles per attempt with +/-20% jitter.
func (c *Client) backoffWait(attempt int) time.Duration {
    wait := c.baseWait << uint(attempt)
    jitter := 0.8 + 0.4*rand.Float64()
    return time.Duration(float64(wait) * jitter)
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-t.C:
        return nil
    }
}

// retryAfter parses a Retry-After header, either delta-seconds or an
// HTTP date.
func retryAfter(resp *http.Response) (time.Duration, bool) {
    v := strings.TrimSpace(resp.Header.Get("Retry-After"))
    if v == "" { return 0, false }
    if secs, err := strconv.Atoi(v); err == nil {
        if secs < 0 { secs = 0 }
        return time.Duration(secs) * time.Second, true
    }
    if at, err := http.ParseTime(v); err == nil {
        d := time.Until(at)
        if d < 0 { d = 0 }
        return d, true
    }
    return 0, false
}
