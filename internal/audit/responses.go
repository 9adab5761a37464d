// Package audit keeps the side files written during a classification run: the
// raw response log and the JSONL interaction log.
package audit

import (
	"fmt"
	"os"
	"strings"
)

var newlineEscaper = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// ResponseLog writes one raw model response per line, in call order.
type ResponseLog struct {
	f *os.File
}

// CreateResponseLog truncates or creates path.
func CreateResponseLog(path string) (*ResponseLog, error) {
	f, err := os.Create(path) // #nosec G304 -- user-supplied audit path
	if err != nil {
		return nil, fmt.Errorf("failed to create response log: %w", err)
	}
	return &ResponseLog{f: f}, nil
}

// Record appends a response. Line breaks inside the response are written as a
// literal \n so each response stays on one line. The whole line goes out in a
// single write, unbuffered, so the log survives an interrupted run. A short
// write can still leave a partial line behind; Record then returns an error
// and the caller skips the item.
func (l *ResponseLog) Record(response string) error {
	line := newlineEscaper.Replace(response) + "\n"
	if _, err := l.f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write response log: %w", err)
	}
	return nil
}

// Close closes the file.
func (l *ResponseLog) Close() error {
	return l.f.Close()
}
