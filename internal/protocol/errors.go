package protocol

import "errors"

var (
	ErrLineTooLong   = errors.New("protocol: line exceeds size limit")
	ErrNotJSONObject = errors.New("protocol: payload is not a json object")
	ErrInvalidRange  = errors.New("protocol: invalid command id range")
)
