package client

import (
	"context"
	"fmt"
	"net/url"

	"darassa/pkg/model"
)

type ScheduledItemClient struct {
	httpClient *HttpClient
	basePath   string
}

func NewScheduledItemClient(httpClient *HttpClient, kind model.Kind) *ScheduledItemClient {
	return &ScheduledItemClient{
		httpClient: httpClient,
		basePath:   "/api/v1/" + kind.Plural(),
	}
}

func (c *ScheduledItemClient) Create(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.POST(ctx, c.basePath, body)
}

func (c *ScheduledItemClient) CreateIdempotent(ctx context.Context, body any, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, c.basePath, body, map[string]string{"Idempotency-Key": key})
}

func (c *ScheduledItemClient) GetAll(ctx context.Context, limit int, offset int64) (*Response, error) {
	return c.httpClient.GET(ctx, fmt.Sprintf("%s?limit=%d&offset=%d", c.basePath, limit, offset))
}

func (c *ScheduledItemClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, c.basePath+"/id/"+url.PathEscape(id))
}

func (c *ScheduledItemClient) Update(ctx context.Context, id string, body any) (*Response, error) {
	return c.httpClient.PATCH(ctx, c.basePath+"/id/"+url.PathEscape(id), body)
}

func (c *ScheduledItemClient) Delete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.DELETE(ctx, c.basePath+"/id/"+url.PathEscape(id))
}
