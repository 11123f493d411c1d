package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emberhollow/villagesim/internal/broadcast"
	"github.com/emberhollow/villagesim/internal/engine"
	"github.com/emberhollow/villagesim/internal/villager"
	"github.com/emberhollow/villagesim/internal/world"
)

func testServer(t *testing.T, adminKey string) (*Server, *http.ServeMux) {
	t.Helper()
	grid, err := world.Generate(world.SmallTestConfig())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	pop := villager.NewSpawner(42).SpawnPopulation(grid, 4)
	eng := engine.New(engine.DefaultConfig(), grid, pop, 42)
	s := &Server{Eng: eng, Hub: broadcast.NewHub(), AdminKey: adminKey}
	return s, s.routes()
}

func do(mux *http.ServeMux, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	_, mux := testServer(t, "")

	rec := do(mux, http.MethodGet, "/api/v1/status", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Villagers int `json:"villagers"`
		Observers int `json:"observers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Villagers != 4 {
		t.Fatalf("villagers = %d, want 4", resp.Villagers)
	}
	if resp.Observers != 0 {
		t.Fatalf("observers = %d, want 0", resp.Observers)
	}
}

func TestVillagerLookup(t *testing.T) {
	_, mux := testServer(t, "")

	rec := do(mux, http.MethodGet, "/api/v1/villagers", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("villagers status = %d, want 200", rec.Code)
	}
	var views []engine.VillagerView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 4 {
		t.Fatalf("views = %d, want 4", len(views))
	}

	rec = do(mux, http.MethodGet, "/api/v1/villager/"+views[0].ID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup status = %d, want 200", rec.Code)
	}
	var resp struct {
		Villager engine.VillagerView `json:"villager"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Villager.ID != views[0].ID {
		t.Fatalf("villager id = %s, want %s", resp.Villager.ID, views[0].ID)
	}

	rec = do(mux, http.MethodGet, "/api/v1/villager/no-such-id", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing villager status = %d, want 404", rec.Code)
	}
}

func TestControlRequiresBearer(t *testing.T) {
	s, mux := testServer(t, "secret")

	if rec := do(mux, http.MethodPost, "/api/v1/control/start", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", rec.Code)
	}
	if rec := do(mux, http.MethodPost, "/api/v1/control/start", "wrong", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}

	rec := do(mux, http.MethodPost, "/api/v1/control/start", "secret", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("good token status = %d, want 200", rec.Code)
	}
	if st := s.Eng.ClockState(); st.Paused {
		t.Fatal("start did not unpause the engine")
	}

	// Read endpoints stay open regardless of the admin key.
	if rec := do(mux, http.MethodGet, "/api/v1/status", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("public status = %d, want 200", rec.Code)
	}
}

func TestSpeedEndpoint(t *testing.T) {
	s, mux := testServer(t, "")

	if rec := do(mux, http.MethodPost, "/api/v1/control/speed", "", "not json"); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", rec.Code)
	}
	if rec := do(mux, http.MethodPost, "/api/v1/control/speed", "", `{"speed": -1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative speed status = %d, want 400", rec.Code)
	}

	rec := do(mux, http.MethodPost, "/api/v1/control/speed", "", `{"speed": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("speed status = %d, want 200", rec.Code)
	}
	if st := s.Eng.ClockState(); st.Speed != 2 {
		t.Fatalf("speed = %.1f, want 2", st.Speed)
	}
}

func TestTimeEndpoint(t *testing.T) {
	s, mux := testServer(t, "")

	if rec := do(mux, http.MethodPost, "/api/v1/control/time", "", `{"day": 1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing hour status = %d, want 400", rec.Code)
	}
	if rec := do(mux, http.MethodPost, "/api/v1/control/time", "", `{"day": 0, "hour": 99}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("out of range hour status = %d, want 400", rec.Code)
	}

	rec := do(mux, http.MethodPost, "/api/v1/control/time", "", `{"day": 1, "hour": 6}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("time status = %d, want 200", rec.Code)
	}
	if st := s.Eng.ClockState(); st.Day != 1 || st.Tick != 60 {
		t.Fatalf("time = day %d tick %d, want 1/60", st.Day, st.Tick)
	}
}
