package xlog

import (
	"encoding/json"
	"fmt"
)

// Message is the contract every loggable value implements: a short
// human line for text mode, a JSON document for -json mode. Logging call
// sites never format strings directly; they build one of these.
type Message interface {
	fmt.Stringer
	JSON() string
}

func asJSON(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// TaskMessage reports a run-generation or merge task's outcome.
type TaskMessage struct {
	Stage   string `json:"stage"`
	TaskID  string `json:"task_id"`
	Detail  string `json:"detail,omitempty"`
	Success bool   `json:"success"`
}

func (m TaskMessage) String() string {
	if m.Detail == "" {
		return fmt.Sprintf("%s %s", m.Stage, m.TaskID)
	}
	return fmt.Sprintf("%s %s: %s", m.Stage, m.TaskID, m.Detail)
}

func (m TaskMessage) JSON() string { return asJSON(m) }

// ErrorMessage reports a fatal or non-fatal error encountered by a stage.
type ErrorMessage struct {
	Stage string `json:"stage"`
	Err   string `json:"error"`
}

func (m ErrorMessage) String() string {
	return fmt.Sprintf("%s: %v", m.Stage, m.Err)
}

func (m ErrorMessage) JSON() string { return asJSON(m) }

// PlainMessage wraps a preformatted string as a Message, for call sites
// that have nothing structured to report.
type PlainMessage string

func (m PlainMessage) String() string { return string(m) }

func (m PlainMessage) JSON() string {
	return asJSON(struct {
		Message string `json:"message"`
	}{string(m)})
}
