package webclient

import "context"

// WebClient executes HTTP requests and returns fully read responses.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	Get(ctx context.Context, url string) (*Response, error)
	Close() error
}
