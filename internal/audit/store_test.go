package audit

import (
	"errors"
	"testing"
	"time"

	formfillErrors "formfill/internal/errors"
	"formfill/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), true, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func testRecord(source types.AnswerSource, action types.Action) Record {
	return Record{
		Question:  "Are you willing to relocate?",
		Options:   []string{"Yes", "No"},
		FieldType: "select",
		Answer: types.FieldAnswer{
			Action: action,
			Value:  "Yes",
			Source: source,
		},
		Model:    "gemini-2.0-flash",
		Duration: 120 * time.Millisecond,
		Tokens:   240,
	}
}

func TestWriteAndRead(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Write(testRecord(types.SourceAI, types.ActionSelect))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !idPattern.MatchString(id) {
		t.Fatalf("generated ID %q does not match the expected shape", id)
	}

	record, err := store.Read(id)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if record.ID != id {
		t.Errorf("ID = %q, want %q", record.ID, id)
	}
	if record.Question != "Are you willing to relocate?" {
		t.Errorf("question = %q", record.Question)
	}
	if record.Answer.Source != types.SourceAI {
		t.Errorf("source = %q, want ai", record.Answer.Source)
	}
	if record.Timestamp.IsZero() {
		t.Error("timestamp should be set on write")
	}
}

func TestListNewestFirstWithCounts(t *testing.T) {
	store := newTestStore(t)

	var ids []string
	for _, source := range []types.AnswerSource{types.SourceHeuristic, types.SourceAI, types.SourceAI} {
		id, err := store.Write(testRecord(source, types.ActionSelect))
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		ids = append(ids, id)
		time.Sleep(time.Millisecond) // distinct nanosecond prefixes
	}

	records, stats, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0].ID != ids[2] {
		t.Errorf("first record = %q, want newest %q", records[0].ID, ids[2])
	}
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.BySource["ai"] != 2 || stats.BySource["heuristic"] != 1 {
		t.Errorf("bySource = %v", stats.BySource)
	}
	if stats.ByAction["select"] != 3 {
		t.Errorf("byAction = %v", stats.ByAction)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Write(testRecord(types.SourceFallback, types.ActionType))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err = store.Read(id)
	var appErr *formfillErrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != formfillErrors.ErrCodeLogNotFound {
		t.Errorf("Read after delete = %v, want LOG_NOT_FOUND", err)
	}

	err = store.Delete(id)
	if !errors.As(err, &appErr) || appErr.Code != formfillErrors.ErrCodeLogNotFound {
		t.Errorf("second Delete = %v, want LOG_NOT_FOUND", err)
	}
}

func TestDeleteAll(t *testing.T) {
	store := newTestStore(t)

	for range 4 {
		if _, err := store.Write(testRecord(types.SourceAI, types.ActionType)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	deleted, err := store.DeleteAll()
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if deleted != 4 {
		t.Errorf("deleted = %d, want 4", deleted)
	}

	_, stats, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("total after DeleteAll = %d, want 0", stats.Total)
	}
}

func TestInvalidIDsRejected(t *testing.T) {
	store := newTestStore(t)

	// IDs outside the generated shape are rejected before the filesystem is
	// touched, which blocks path traversal.
	invalid := []string{
		"",
		"../../../etc/passwd",
		"123-not-a-uuid",
		"..",
		"123456789-11111111-2222-3333-4444-555555555555/../../x",
	}

	for _, id := range invalid {
		var appErr *formfillErrors.AppError
		if _, err := store.Read(id); !errors.As(err, &appErr) || appErr.Code != formfillErrors.ErrCodeInvalidRequest {
			t.Errorf("Read(%q) = %v, want INVALID_REQUEST", id, err)
		}
		if err := store.Delete(id); !errors.As(err, &appErr) || appErr.Code != formfillErrors.ErrCodeInvalidRequest {
			t.Errorf("Delete(%q) = %v, want INVALID_REQUEST", id, err)
		}
	}
}

func TestDisabledStore(t *testing.T) {
	store, err := NewStore(t.TempDir(), false, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.Enabled() {
		t.Error("store should report disabled")
	}

	id, err := store.Write(testRecord(types.SourceAI, types.ActionType))
	if err != nil {
		t.Fatalf("Write on disabled store: %v", err)
	}
	if id != "" {
		t.Errorf("disabled Write returned ID %q, want empty", id)
	}

	_, stats, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("total = %d, want 0", stats.Total)
	}
}
