package db

import "errors"

var (
	// ErrKeyNotFound is returned for reads of absent keys.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexNotFound is returned when dropping an index that does not exist.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned when another process created the index first.
	ErrIndexExists = errors.New("db: index already exists")
)

// Op names the backend command that failed.
type Op string

// Ops reported in Error.
const (
	OpCreateIndex Op = "FT.CREATE"
	OpDropIndex   Op = "FT.DROPINDEX"
	OpIndexInfo   Op = "FT.INFO"
	OpSearch      Op = "FT.SEARCH"
	OpHSet        Op = "HSET"
	OpHGetAll     Op = "HGETALL"
	OpDel         Op = "DEL"
	OpExists      Op = "EXISTS"
	OpGet         Op = "GET"
	OpSet         Op = "SET"
	OpJSONSet     Op = "JSON.SET"
	OpJSONGet     Op = "JSON.GET"
)

// Error is a backend failure tagged with the command that caused it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string { return "db " + string(e.Op) + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// FailedOp returns the Op of the first *Error in err's chain.
func FailedOp(err error) (Op, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Op, true
	}
	return "", false
}
