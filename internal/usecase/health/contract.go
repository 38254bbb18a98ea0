package health

import "context"

// CachePinger checks availability of the insight cache backend.
type CachePinger interface {
	Ping(ctx context.Context) error
}
