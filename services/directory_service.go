package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OccupantInfo is the denormalized display/contact snapshot the directory
// returns. The core never validates occupant existence beyond this lookup.
type OccupantInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// OccupantResolver is the capability interface over the external occupant
// directory (visitor/travel record store).
type OccupantResolver interface {
	Resolve(ctx context.Context, occupantID string) (*OccupantInfo, error)
}

// EventResolver maps an occupant to the event they belong to, if any. An
// empty event id means the occupant has no event association and booking
// counters are not maintained for their allotments.
type EventResolver interface {
	ResolveEventID(ctx context.Context, occupantID string) (string, error)
}

// DirectoryClient talks to the occupant directory service over HTTP. Lookups
// are time-bounded and retried; a failed event lookup degrades to "no event
// scope" rather than failing the caller.
type DirectoryClient struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewDirectoryClient(baseURL string, logger *zap.Logger) *DirectoryClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Accept", "application/json")

	return &DirectoryClient{http: client, logger: logger}
}

func (c *DirectoryClient) Resolve(ctx context.Context, occupantID string) (*OccupantInfo, error) {
	var info OccupantInfo
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&info).
		SetPathParam("id", occupantID).
		Get("/occupants/{id}")
	if err != nil {
		return nil, fmt.Errorf("occupant lookup failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("occupant lookup failed: status %d", resp.StatusCode())
	}
	return &info, nil
}

func (c *DirectoryClient) ResolveEventID(ctx context.Context, occupantID string) (string, error) {
	var body struct {
		EventID string `json:"eventId"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		SetPathParam("id", occupantID).
		Get("/occupants/{id}/event")
	if err != nil {
		c.logger.Debug("event association lookup failed", zap.String("occupant_id", occupantID), zap.Error(err))
		return "", nil
	}
	if resp.IsError() {
		return "", nil
	}
	return body.EventID, nil
}
