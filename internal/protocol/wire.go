package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Terminator ends every message on the DREAM wire.
const Terminator = "\r\n"

// MaxLineBytes bounds one wire line, terminator included.
const MaxLineBytes = 128 * 1024

// WriteLine marshals v and writes it as one terminated wire line.
func WriteLine(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if len(payload)+len(Terminator) > MaxLineBytes {
		return ErrLineTooLong
	}
	payload = append(payload, Terminator...)
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// ReadLine reads one terminated wire line and decodes it as a json object.
// Responses and telemetry share the stream, so the caller inspects the
// returned map to tell them apart.
func ReadLine(r *bufio.Reader) (map[string]any, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	if len(line) > MaxLineBytes {
		return nil, ErrLineTooLong
	}
	var data map[string]any
	if err := json.Unmarshal(line, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSONObject, err)
	}
	if data == nil {
		return nil, ErrNotJSONObject
	}
	return data, nil
}
