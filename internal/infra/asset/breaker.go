package asset

import (
	"context"
	"io"
	"time"

	"github.com/sony/gobreaker/v2"
)

type uploadResult struct {
	url      string
	publicID string
}

// アセットホストが落ちているときに連続で叩かないようにする。
type BreakerClient struct {
	inner  *Client
	upload *gobreaker.CircuitBreaker[uploadResult]
	remove *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerClient(inner *Client) *BreakerClient {
	settings := gobreaker.Settings{
		Name:    "asset-host",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &BreakerClient{
		inner:  inner,
		upload: gobreaker.NewCircuitBreaker[uploadResult](settings),
		remove: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (b *BreakerClient) Upload(ctx context.Context, filename string, content io.Reader) (string, string, error) {
	res, err := b.upload.Execute(func() (uploadResult, error) {
		u, id, err := b.inner.Upload(ctx, filename, content)
		return uploadResult{url: u, publicID: id}, err
	})
	if err != nil {
		return "", "", err
	}
	return res.url, res.publicID, nil
}

func (b *BreakerClient) Delete(ctx context.Context, publicID string) error {
	_, err := b.remove.Execute(func() (struct{}, error) {
		return struct{}{}, b.inner.Delete(ctx, publicID)
	})
	return err
}
