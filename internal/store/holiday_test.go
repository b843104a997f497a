package store

import (
	"context"
	"testing"
)

func TestHolidayCRUD(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	task := mustTask(t, s, "Trash", 7, mustDate(t, "2025-01-10"), nil)
	other := mustTask(t, s, "Dust", 7, mustDate(t, "2025-01-10"), nil)

	h, err := s.Holidays.Create(ctx, task.ID, mustDate(t, "2025-12-25"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.TaskID != task.ID || h.Date != mustDate(t, "2025-12-25") {
		t.Errorf("holiday = %+v", h)
	}
	if _, err := s.Holidays.Create(ctx, task.ID, mustDate(t, "2025-01-01")); err != nil {
		t.Fatalf("create second: %v", err)
	}

	if _, err := s.Holidays.Create(ctx, task.ID, mustDate(t, "2025-12-25")); err == nil {
		t.Error("expected unique constraint error")
	}

	ok, err := s.Holidays.Exists(ctx, task.ID, mustDate(t, "2025-12-25"))
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Error("expected holiday to exist")
	}
	ok, _ = s.Holidays.Exists(ctx, other.ID, mustDate(t, "2025-12-25"))
	if ok {
		t.Error("holiday leaked to another task")
	}

	list, err := s.Holidays.ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Date != mustDate(t, "2025-01-01") {
		t.Errorf("list = %+v, want two sorted by date", list)
	}

	on, err := s.Holidays.TaskIDsOn(ctx, mustDate(t, "2025-12-25"))
	if err != nil {
		t.Fatalf("task ids on: %v", err)
	}
	if !on[task.ID] || on[other.ID] {
		t.Errorf("task ids on = %v", on)
	}

	if err := s.Holidays.Delete(ctx, h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.Holidays.GetByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected holiday to be gone")
	}

	if err := s.Holidays.DeleteByTask(ctx, task.ID); err != nil {
		t.Fatalf("delete by task: %v", err)
	}
	list, _ = s.Holidays.ListByTask(ctx, task.ID)
	if len(list) != 0 {
		t.Errorf("expected no holidays, got %d", len(list))
	}
}
