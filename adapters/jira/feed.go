package jira

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"leadtime/domain/core"
	"leadtime/domain/work"
)

// Open returns a reader for a feed source: a local file path or an
// http(s) URL pointing at a Jira XML export.
func Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrFeedUnreadable, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch %s: %v", core.ErrFeedUnreadable, source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: fetch %s: status %d", core.ErrFeedUnreadable, source, resp.StatusCode)
		}
		return resp.Body, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrFeedUnreadable, err)
	}
	return f, nil
}

// ParseSource opens and parses a feed source in one step
func (p *Parser) ParseSource(ctx context.Context, source string) ([]*work.Item, error) {
	r, err := Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return p.Parse(r)
}

// parseFeedTime parses a feed timestamp
func parseFeedTime(raw, layout string) (core.Timestamp, error) {
	t, err := time.Parse(layout, raw)
	if err != nil {
		return core.Timestamp{}, err
	}
	return core.NewTimestamp(t), nil
}
