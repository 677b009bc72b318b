package matching

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidParam = errors.New("the param is invalid")
	ErrTimeout      = errors.New("timeout")
	ErrShutdown     = errors.New("engine is shutting down")
)
