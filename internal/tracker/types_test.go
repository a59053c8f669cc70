package tracker

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestIssueSerializesAttachmentsCamelCase(t *testing.T) {
	issue := Issue{
		ID:     "i1",
		Status: StatusDone,
		AuditLog: []AuditLogEntry{
			{ID: "a1", IssueID: "i1", Action: ActionUpdate, Changes: []byte(`{}`), CreatedAt: time.Now()},
		},
		WorkLogs: []WorkLog{
			{ID: "w1", IssueID: "i1", UserID: "u1", TimeSpentMinutes: 30, LogDate: time.Now()},
		},
	}

	data, err := json.Marshal(issue)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	body := string(data)

	for _, key := range []string{`"auditLog"`, `"workLogs"`} {
		if !strings.Contains(body, key) {
			t.Errorf("serialized issue is missing %s: %s", key, body)
		}
	}
	for _, key := range []string{`"AuditLog"`, `"WorkLogs"`} {
		if strings.Contains(body, key) {
			t.Errorf("serialized issue leaks exported field name %s: %s", key, body)
		}
	}
}
