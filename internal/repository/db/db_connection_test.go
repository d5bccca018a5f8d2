package db

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestInitDB_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oven.db")

	conn, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	for _, table := range []string{"oven_state", "oven_events", "operators"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}

	if _, err := conn.Exec(`INSERT INTO oven_state (id, state, time_left, door_open, display, panel, can_start, start_ready, angle, updated_at) VALUES (2, 'WAITING', 0, 0, '00:00', '', 0, 0, 0, CURRENT_TIMESTAMP)`); err == nil {
		t.Fatalf("expected single-row constraint on oven_state")
	}
	if _, err := conn.Exec(`INSERT INTO oven_state (id, state, time_left, door_open, display, panel, can_start, start_ready, angle, updated_at) VALUES (1, 'WAITING', -1, 0, '00:00', '', 0, 0, 0, CURRENT_TIMESTAMP)`); err == nil {
		t.Fatalf("expected non-negative time_left constraint")
	}
}

func TestInitDB_OperatorConstraints(t *testing.T) {
	conn, err := InitDB(filepath.Join(t.TempDir(), "oven.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	const insertOperator = `INSERT INTO operators (username, password_hash, created_at) VALUES (?, 'h', CURRENT_TIMESTAMP)`
	if _, err := conn.Exec(insertOperator, "alice"); err != nil {
		t.Fatalf("insert operator: %v", err)
	}
	_, err = conn.Exec(insertOperator, "alice")
	if err == nil || !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		t.Fatalf("expected unique violation on username, got %v", err)
	}

	const insertEvent = `INSERT INTO oven_events (id, occurred_at, type, message, operator_id, operator) VALUES (?, CURRENT_TIMESTAMP, 'START', 'm', ?, ?)`
	if _, err := conn.Exec(insertEvent, "e1", 1, "alice"); err != nil {
		t.Fatalf("event by known operator: %v", err)
	}
	if _, err := conn.Exec(insertEvent, "e2", nil, nil); err != nil {
		t.Fatalf("timer event without operator: %v", err)
	}
	if _, err := conn.Exec(insertEvent, "e3", 99, "ghost"); err == nil {
		t.Fatalf("expected foreign key violation for unknown operator")
	}
}

func TestInitDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oven.db")
	for i := 0; i < 2; i++ {
		conn, err := InitDB(path)
		if err != nil {
			t.Fatalf("InitDB #%d: %v", i+1, err)
		}
		_ = conn.Close()
	}
}
