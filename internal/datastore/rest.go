package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RESTBackend talks to a PostgREST-compatible HTTP API such as the one a
// Supabase project exposes under /rest/v1.
type RESTBackend struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRESTBackend(baseURL, apiKey string, timeout time.Duration) *RESTBackend {
	return &RESTBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (b *RESTBackend) tableURL(table string) string {
	return b.baseURL + "/rest/v1/" + url.PathEscape(table)
}

func (b *RESTBackend) Select(ctx context.Context, q Query, dest interface{}) error {
	params := url.Values{}
	columns := q.Columns
	if columns == "" {
		columns = "*"
	}
	params.Set("select", columns)
	for _, f := range q.Filters {
		params.Add(f.Column, "eq."+formatValue(f.Value))
	}
	if q.Order != nil {
		direction := "desc"
		if q.Order.Ascending {
			direction = "asc"
		}
		params.Set("order", q.Order.Column+"."+direction)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.tableURL(q.Table)+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	b.setHeaders(req)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("datastore: select %s: %w", q.Table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("datastore: decode %s rows: %w", q.Table, err)
	}
	return nil
}

func (b *RESTBackend) Insert(ctx context.Context, table string, rows []json.RawMessage) error {
	if len(rows) == 0 {
		return ErrNoRecords
	}
	body, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.tableURL(table), bytes.NewReader(body))
	if err != nil {
		return err
	}
	b.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("datastore: insert %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (b *RESTBackend) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if b.apiKey != "" {
		req.Header.Set("apikey", b.apiKey)
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	storeErr := &Error{Status: resp.StatusCode}
	if err := json.Unmarshal(data, storeErr); err != nil || storeErr.Message == "" {
		storeErr.Message = strings.TrimSpace(string(data))
		if storeErr.Message == "" {
			storeErr.Message = resp.Status
		}
	}
	return storeErr
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "null"
	default:
		return fmt.Sprint(val)
	}
}
