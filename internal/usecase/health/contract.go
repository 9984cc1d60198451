package health

import "context"

// DBPinger checks listings store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks city cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
