package db

import "errors"

// Sentinel errors for storage operations.
var (
	ErrDocumentNotFound = errors.New("db: document not found")
	ErrCorruptValue     = errors.New("db: corrupt stored value")
)

// Op constants map to Valkey/Redis command names for error context.
const (
	OpPing     = "PING"
	OpSAdd     = "SADD"
	OpSRem     = "SREM"
	OpSMembers = "SMEMBERS"
	OpHSet     = "HSET"
	OpHDel     = "HDEL"
	OpHGetAll  = "HGETALL"
	OpDel      = "DEL"
	OpRPush    = "RPUSH"
	OpLRange   = "LRANGE"
	OpWatch    = "WATCH"
	OpMulti    = "MULTI"
	OpExec     = "EXEC"
	OpWrite    = "WRITE"
	OpDelete   = "DELETE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
