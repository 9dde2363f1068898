package revopt

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hotelkit/revopt-go/pkg/core"
)

// HistoryService reads the persisted optimize runs of the current user.
type HistoryService struct {
	client *Client
}

// List returns one page of history, newest first.
func (s *HistoryService) List(ctx context.Context, limit, offset int) (*HistoryPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		return nil, core.NewInvalidRequestError("offset must not be negative")
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("offset", fmt.Sprintf("%d", offset))

	var page HistoryPage
	if err := s.client.doJSON(ctx, http.MethodGet, historyPath+"?"+query.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one persisted run by id.
func (s *HistoryService) Get(ctx context.Context, id int64) (*HistoryRecord, error) {
	if id <= 0 {
		return nil, core.NewInvalidRequestError("record id must be positive")
	}

	var record HistoryRecord
	if err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/%d", historyPath, id), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
