// Package audit records sensitive gateway actions to an external collector.
// Entries are write-once and best-effort: the gateway has no read path and
// never blocks a response on the audit channel.
package audit

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"bff-gateway/internal/identity"
)

// Entry is one audit record. Client fields carry only coarse, anonymized
// metadata, never raw addresses or user agents.
type Entry struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	SubjectID     string    `json:"subject_id"`
	Role          string    `json:"role"`
	Action        string    `json:"action"`
	ResourceID    string    `json:"resource_id,omitempty"`
	ResultStatus  int       `json:"result_status"`
	ClientIP      string    `json:"client_ip,omitempty"`
	ClientOS      string    `json:"client_os,omitempty"`
	ClientBrowser string    `json:"client_browser,omitempty"`
}

// NewEntry builds an entry for a completed request.
func NewEntry(caller identity.Identity, method, path string, resultStatus int) Entry {
	return Entry{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		SubjectID:    caller.SubjectID,
		Role:         string(caller.Role),
		Action:       method + " " + path,
		ResourceID:   resourceID(path),
		ResultStatus: resultStatus,
	}
}

// sensitivePrefixes are audited regardless of HTTP method.
var sensitivePrefixes = []string{
	"/api/safety-incidents",
	"/api/identity-verification",
}

// Critical reports whether an action must be audited: any mutating method,
// or any access to a sensitive sub-tree.
func Critical(method, path string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
	default:
		return true
	}
	for _, prefix := range sensitivePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// resourceID extracts the trailing path segment when it looks like a record
// identifier (numeric or UUID). Collection paths yield no resource ID.
func resourceID(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return ""
	}
	last := trimmed[idx+1:]
	if last == "" {
		return ""
	}
	if isNumeric(last) {
		return last
	}
	if _, err := uuid.Parse(last); err == nil {
		return last
	}
	return ""
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
