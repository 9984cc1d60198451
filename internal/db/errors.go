package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrNotFound          = errors.New("db: not found")
	ErrUnsupported       = errors.New("db: unsupported predicate")
	ErrKeyNotFound       = errors.New("db: key not found")
	ErrUnknownDimension  = errors.New("db: unknown dimension")
	ErrInvalidFindParams = errors.New("db: invalid find parameters")
)

// Op constants name the failing operation for error context.
// Cache ops use Valkey command names.
const (
	OpFindMany    = "find_many"
	OpCount       = "count"
	OpGroupBy     = "group_by"
	OpAggregate   = "aggregate"
	OpCatalog     = "catalog"
	OpPing        = "PING"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
	OpExists      = "EXISTS"
	OpZAdd        = "ZADD"
	OpZRem        = "ZREM"
	OpZRangeByLex = "ZRANGEBYLEX"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
