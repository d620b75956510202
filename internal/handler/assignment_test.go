package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/georgec/tidybloom/internal/database"
	"github.com/georgec/tidybloom/internal/model"
	"github.com/georgec/tidybloom/internal/store"
)

type testEnv struct {
	db          *sql.DB
	users       *store.UserStore
	tasks       *store.TaskStore
	assignments *store.AssignmentStore
	plants      *store.PlantStore
	goals       *store.GoalStore
	handler     *AssignmentHandler
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	tasks := store.NewTaskStore(db)
	assignments := store.NewAssignmentStore(db)
	plants := store.NewPlantStore(db)
	goals := store.NewGoalStore(db)

	return &testEnv{
		db:          db,
		users:       users,
		tasks:       tasks,
		assignments: assignments,
		plants:      plants,
		goals:       goals,
		handler:     NewAssignmentHandler(assignments, users, tasks, goals, nil, slog.Default()),
	}
}

func (e *testEnv) seedAssignment(t *testing.T) *model.Assignment {
	t.Helper()
	user, err := e.users.Create("carol", "carol@example.com", "hunter2!x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := e.plants.GetOrCreateDefault(user.ID); err != nil {
		t.Fatalf("create plant: %v", err)
	}
	task, err := e.tasks.Create("Handler test task", model.RoomKitchen, model.SubcategoryHomeCare, model.FrequencyDaily, 5, true)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	a, err := e.assignments.Create(user.ID, task.ID)
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	return a
}

// routed builds a mux with just the assignment routes so path values resolve.
func (e *testEnv) routed() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/assignments", e.handler.Create)
	mux.HandleFunc("POST /api/assignments/{id}/complete", e.handler.Complete)
	mux.HandleFunc("POST /api/assignments/{id}/uncomplete", e.handler.Uncomplete)
	mux.HandleFunc("GET /api/users/{id}/assignments", e.handler.ListByUser)
	return mux
}

func TestCompleteEndpoint(t *testing.T) {
	env := setupEnv(t)
	a := env.seedAssignment(t)
	mux := env.routed()

	r := httptest.NewRequest("POST", "/api/assignments/1/complete", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var got model.Assignment
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("id = %d, want %d", got.ID, a.ID)
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("status = %q, want COMPLETED", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at should be set")
	}
	if got.XPAwarded != 5 {
		t.Errorf("xp_awarded = %d, want 5", got.XPAwarded)
	}
}

func TestCompleteEndpointConflict(t *testing.T) {
	env := setupEnv(t)
	env.seedAssignment(t)
	mux := env.routed()

	first := httptest.NewRecorder()
	mux.ServeHTTP(first, httptest.NewRequest("POST", "/api/assignments/1/complete", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first complete status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	mux.ServeHTTP(second, httptest.NewRequest("POST", "/api/assignments/1/complete", nil))
	if second.Code != http.StatusConflict {
		t.Errorf("second complete status = %d, want 409", second.Code)
	}
}

func TestCompleteEndpointSucceedsWhenGoalCheckFails(t *testing.T) {
	env := setupEnv(t)
	env.seedAssignment(t)
	mux := env.routed()

	// Break the goal evaluation path only; the completion transaction itself
	// does not read category_goals.
	if _, err := env.db.Exec(`ALTER TABLE category_goals RENAME COLUMN required_tasks TO broken`); err != nil {
		t.Fatalf("rename goals column: %v", err)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/api/assignments/1/complete", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var got model.Assignment
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("status = %q, want COMPLETED", got.Status)
	}
	if got.XPAwarded != 5 {
		t.Errorf("xp_awarded = %d, want 5", got.XPAwarded)
	}
}

func TestCompleteEndpointNotFound(t *testing.T) {
	env := setupEnv(t)
	mux := env.routed()

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/api/assignments/999/complete", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUncompleteEndpoint(t *testing.T) {
	env := setupEnv(t)
	a := env.seedAssignment(t)
	mux := env.routed()

	if _, err := env.assignments.Complete(a.ID, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/api/assignments/1/uncomplete", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var got model.Assignment
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != model.StatusPending {
		t.Errorf("status = %q, want PENDING", got.Status)
	}
	if got.XPAwarded != 0 {
		t.Errorf("xp_awarded = %d, want 0", got.XPAwarded)
	}
}

func TestUncompleteEndpointPendingConflict(t *testing.T) {
	env := setupEnv(t)
	env.seedAssignment(t)
	mux := env.routed()

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/api/assignments/1/uncomplete", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestCreateEndpointValidation(t *testing.T) {
	env := setupEnv(t)
	mux := env.routed()

	body := bytes.NewBufferString(`{"user_id": 999, "task_id": 1}`)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/api/assignments", body))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListByUserEndpointStatusFilter(t *testing.T) {
	env := setupEnv(t)
	a := env.seedAssignment(t)
	mux := env.routed()

	if _, err := env.assignments.Complete(a.ID, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/users/1/assignments?status=COMPLETED", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got []model.Assignment
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d assignments, want 1", len(got))
	}
	if got[0].Status != model.StatusCompleted {
		t.Errorf("status = %q, want COMPLETED", got[0].Status)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/users/1/assignments?status=BOGUS", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bogus status filter = %d, want 400", w.Code)
	}
}
