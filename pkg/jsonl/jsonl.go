// Package jsonl reads and writes single-line JSON documents.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxLineSize bounds a single line accepted by ReadLine.
const MaxLineSize = 16 * 1024 * 1024

// ErrEmpty is returned by ReadLine when the stream holds no line.
var ErrEmpty = errors.New("jsonl: empty input")

// Marshal encodes v as one line of JSON terminated by a newline. HTML
// characters are not escaped.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("jsonl: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteLine writes v to w as one line of JSON.
func WriteLine(w io.Writer, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadLine decodes the first line of r into v. Anything after the first
// newline is ignored.
func ReadLine(r io.Reader, v any) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("jsonl: read: %w", err)
		}
		return ErrEmpty
	}

	line := bytes.TrimSpace(scanner.Bytes())
	if len(line) == 0 {
		return ErrEmpty
	}
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("jsonl: decode: %w", err)
	}
	return nil
}
