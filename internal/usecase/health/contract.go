package health

import "context"

// DBPinger checks metadata store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an external model provider (embedding or completion).
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// DirChecker checks that a data directory is usable.
type DirChecker interface {
	Check(ctx context.Context) error
}
