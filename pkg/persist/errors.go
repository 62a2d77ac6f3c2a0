package persist

import "fmt"

// Op names the persistence step that failed.
type Op string

const (
	OpHydrate Op = "hydrate"
	OpSave    Op = "save"
	OpWatch   Op = "watch"
	OpRemove  Op = "remove"
	OpEncode  Op = "encode"
	OpDecode  Op = "decode"
)

// Error describes a failed persistence operation on one key.
// Errors raised after construction are reported on the store's error side
// channel rather than returned.
type Error struct {
	Op  Op
	Key string
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("persist: %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}
