// Package api is the HTTP client for the nstil REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/logger"
)

const (
	entriesPath  = "/api/v1/entries"
	journalsPath = "/api/v1/journals"

	maxErrorBody = 4 << 10
)

// Client talks to the API. It implements journal.Backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logger.Logger

	onUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout on a copy of the client's
// *http.Client, so a client passed to WithHTTPClient is left alone.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithUnauthorizedHook registers fn to run whenever the API answers 401.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Entries() journal.EntriesAPI { return entries{c} }

func (c *Client) Journals() journal.JournalsAPI { return journals{c} }

// do sends one request. in is encoded as JSON when non-nil; out is decoded
// from the response when non-nil and the response has a body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
		if apiErr.IsUnauthorized() && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func pageQuery(cursor string, limit int, journalID string) url.Values {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if journalID != "" {
		q.Set("journal_id", journalID)
	}
	return q
}

type entries struct{ c *Client }

func (e entries) Create(ctx context.Context, in journal.EntryCreate) (journal.Entry, error) {
	var out journal.Entry
	err := e.c.do(ctx, http.MethodPost, entriesPath, nil, in, &out)
	return out, err
}

func (e entries) Get(ctx context.Context, id string) (journal.Entry, error) {
	var out journal.Entry
	err := e.c.do(ctx, http.MethodGet, entriesPath+"/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (e entries) Update(ctx context.Context, id string, patch journal.EntryUpdate) (journal.Entry, error) {
	var out journal.Entry
	err := e.c.do(ctx, http.MethodPatch, entriesPath+"/"+url.PathEscape(id), nil, patch, &out)
	return out, err
}

func (e entries) Delete(ctx context.Context, id string) error {
	return e.c.do(ctx, http.MethodDelete, entriesPath+"/"+url.PathEscape(id), nil, nil, nil)
}

func (e entries) List(ctx context.Context, p journal.ListParams) (journal.Page[journal.Entry], error) {
	var out journal.Page[journal.Entry]
	err := e.c.do(ctx, http.MethodGet, entriesPath, pageQuery(p.Cursor, p.Limit, p.JournalID), nil, &out)
	return out, err
}

func (e entries) Search(ctx context.Context, p journal.SearchParams) (journal.Page[journal.Entry], error) {
	q := pageQuery(p.Cursor, p.Limit, p.JournalID)
	q.Set("q", p.Query)
	var out journal.Page[journal.Entry]
	err := e.c.do(ctx, http.MethodGet, entriesPath+"/search", q, nil, &out)
	return out, err
}

type journals struct{ c *Client }

type spaceList struct {
	Items []journal.Space `json:"items"`
}

func (j journals) List(ctx context.Context) ([]journal.Space, error) {
	var out spaceList
	if err := j.c.do(ctx, http.MethodGet, journalsPath, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (j journals) Create(ctx context.Context, in journal.SpaceCreate) (journal.Space, error) {
	var out journal.Space
	err := j.c.do(ctx, http.MethodPost, journalsPath, nil, in, &out)
	return out, err
}

func (j journals) Get(ctx context.Context, id string) (journal.Space, error) {
	var out journal.Space
	err := j.c.do(ctx, http.MethodGet, journalsPath+"/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (j journals) Update(ctx context.Context, id string, patch journal.SpaceUpdate) (journal.Space, error) {
	var out journal.Space
	err := j.c.do(ctx, http.MethodPatch, journalsPath+"/"+url.PathEscape(id), nil, patch, &out)
	return out, err
}

func (j journals) Delete(ctx context.Context, id string) error {
	return j.c.do(ctx, http.MethodDelete, journalsPath+"/"+url.PathEscape(id), nil, nil, nil)
}
