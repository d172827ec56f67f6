package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raysh454/georisk/internal/app"
	"github.com/raysh454/georisk/internal/lore"
	"github.com/raysh454/georisk/internal/server"
	"github.com/raysh454/georisk/internal/testutil"
)

const referenceBody = `{
	"slope_deg": 35, "curvature": -0.5, "lith_class": 3, "rain_exceed": 0.8,
	"lore_signal": 0.6, "exposure": 0.75, "fragility": 0.6,
	"compute_uncertainty": false
}`

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	appCfg := app.DefaultConfig()
	appCfg.StorageRoot = t.TempDir()
	cfg := server.Config{
		ListenAddr: ":0",
		AppConfig:  appCfg,
		Logger:     &testutil.DummyLogger{},
	}

	s, err := server.NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

func createSite(t *testing.T, s http.Handler, slug string) string {
	t.Helper()
	rec := doJSON(t, s, "POST", "/api/sites", `{"slug":"`+slug+`","name":"Test","hazard_type":"debris_flow"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create site: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var site struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	decodeJSON(t, rec, &site)
	return site.Slug
}

// ─── CORS / health ─────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/health", "")

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_Preflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "OPTIONS", "/api/calculate-risk", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "POST" {
		t.Errorf("expected allow methods POST, got %q", got)
	}
}

func TestServer_Health(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body server.HealthResponse
	decodeJSON(t, rec, &body)
	if body.Status != "healthy" || body.Service != "georisk" {
		t.Errorf("unexpected health body: %+v", body)
	}
}

// ─── Calculate risk ────────────────────────────────────────────────────

func TestServer_CalculateRisk_Reference(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/calculate-risk", referenceBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			R          float64 `json:"R_score"`
			Level      string  `json:"risk_level"`
			GatePassed bool    `json:"gate_passed"`
			EventType  string  `json:"event_type"`
		} `json:"data"`
	}
	decodeJSON(t, rec, &body)

	if !body.Success || body.Message != "Risk calculated successfully" {
		t.Errorf("unexpected envelope: %+v", body)
	}
	if body.Data.R != 0.281 {
		t.Errorf("expected R_score 0.281, got %v", body.Data.R)
	}
	if body.Data.Level != "low" || !body.Data.GatePassed {
		t.Errorf("expected low level with gate passed, got %+v", body.Data)
	}
	if body.Data.EventType != "landslide" {
		t.Errorf("expected default event type landslide, got %q", body.Data.EventType)
	}
}

func TestServer_CalculateRisk_MissingField(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/calculate-risk", `{"slope_deg": 35}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var body server.ErrorResponse
	decodeJSON(t, rec, &body)
	if !strings.Contains(body.Error, "curvature") {
		t.Errorf("expected error to name curvature, got %q", body.Error)
	}
}

func TestServer_CalculateRisk_OutOfRange(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	bad := strings.Replace(referenceBody, `"slope_deg": 35`, `"slope_deg": 95`, 1)
	rec := doJSON(t, s, "POST", "/api/calculate-risk", bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServer_CalculateRisk_InvalidJSON(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/calculate-risk", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServer_RisksStoredAndCompared(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	slug := createSite(t, s, "ridge")

	withSite := func(body string) string {
		return strings.Replace(body, "{", `{"site_id":"`+slug+`",`, 1)
	}

	var ids []string
	for _, body := range []string{
		withSite(referenceBody),
		withSite(strings.Replace(referenceBody, `"rain_exceed": 0.8`, `"rain_exceed": 1.0`, 1)),
	} {
		rec := doJSON(t, s, "POST", "/api/calculate-risk", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("calculate: expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Data struct {
				ID string `json:"assessment_id"`
			} `json:"data"`
		}
		decodeJSON(t, rec, &resp)
		if resp.Data.ID == "" {
			t.Fatalf("expected assessment id when site is set")
		}
		ids = append(ids, resp.Data.ID)
	}

	rec := doJSON(t, s, "GET", "/api/risks?site="+slug, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list []json.RawMessage
	decodeJSON(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(list))
	}

	rec = doJSON(t, s, "GET", "/api/risks/"+ids[0], "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, s, "GET", "/api/risks/compare?base="+ids[0]+"&head="+ids[1], "")
	if rec.Code != http.StatusOK {
		t.Fatalf("compare: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var diff struct {
		RDelta float64 `json:"R_delta"`
	}
	decodeJSON(t, rec, &diff)
	if diff.RDelta <= 0 {
		t.Errorf("expected positive R_delta with more rain, got %v", diff.RDelta)
	}
}

func TestServer_GetRisk_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/risks/does-not-exist", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServer_Compare_RequiresBoth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/risks/compare?base=x", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// ─── Sites ─────────────────────────────────────────────────────────────

func TestServer_Sites(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	slug := createSite(t, s, "mill-creek")

	rec := doJSON(t, s, "GET", "/api/sites/"+slug, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var site struct {
		HazardType string `json:"hazard_type"`
	}
	decodeJSON(t, rec, &site)
	if site.HazardType != "debris_flow" {
		t.Errorf("expected debris_flow, got %q", site.HazardType)
	}

	rec = doJSON(t, s, "GET", "/api/sites", "")
	var sites []json.RawMessage
	decodeJSON(t, rec, &sites)
	if len(sites) != 1 {
		t.Errorf("expected 1 site, got %d", len(sites))
	}

	rec = doJSON(t, s, "GET", "/api/sites/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown site, got %d", rec.Code)
	}
}

func TestServer_CreateSite_RequiresName(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/sites", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// ─── Lore ──────────────────────────────────────────────────────────────

func TestServer_ScoreLore_Stateless(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/lore/score",
		`{"event_narrative":"The hill slid in the storm","years_ago":0,"source_type":"scientific","distance_to_report":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Score struct {
			Recent      float64 `json:"recent_score"`
			Credibility float64 `json:"credibility_score"`
			Spatial     float64 `json:"spatial_score"`
			L           float64 `json:"l_score"`
		} `json:"score"`
	}
	decodeJSON(t, rec, &body)
	if body.Score.Recent != 1 || body.Score.Spatial != 1 {
		t.Errorf("expected fresh nearby record to score 1, got %+v", body.Score)
	}
	if body.Score.L <= 0 || body.Score.L > 1 {
		t.Errorf("l_score out of range: %v", body.Score.L)
	}
}

func TestServer_ScoreLore_WeightsOverride(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/lore/score",
		`{"event_narrative":"Mudslide","years_ago":50,"source_type":"newspaper","weights":{"w1":0,"w2":0,"w3":1}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Score struct {
			L           float64            `json:"l_score"`
			WeightsUsed map[string]float64 `json:"weights_used"`
		} `json:"score"`
	}
	decodeJSON(t, rec, &body)
	// unknown distance scores 0.5 spatially
	if body.Score.L != 0.5 || body.Score.WeightsUsed["w3"] != 1 {
		t.Errorf("expected spatial-only score 0.5, got %+v", body.Score)
	}

	rec = doJSON(t, s, "POST", "/api/lore/score",
		`{"event_narrative":"Mudslide","years_ago":50,"weights":{"w1":-1}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative weight: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServer_ScoreLore_MissingNarrative(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/lore/score", `{"years_ago": 3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServer_LoreLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	slug := createSite(t, s, "canyon")

	rec := doJSON(t, s, "POST", "/api/sites/"+slug+"/lore",
		`{"event_narrative":"Mud came down the canyon","years_ago":50,"source_type":"newspaper"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var rec1 struct {
		ID     string  `json:"id"`
		LScore float64 `json:"l_score"`
	}
	decodeJSON(t, rec, &rec1)
	if rec1.ID == "" || rec1.LScore <= 0 {
		t.Fatalf("expected stored scored record, got %+v", rec1)
	}

	rec = doJSON(t, s, "GET", "/api/sites/"+slug+"/lore-signal", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("signal: expected 200, got %d", rec.Code)
	}
	var sig app.LoreSignal
	decodeJSON(t, rec, &sig)
	if sig.Records != 1 || sig.Signal != rec1.LScore || sig.Policy != lore.ReduceMax {
		t.Errorf("unexpected signal: %+v (record l_score %v)", sig, rec1.LScore)
	}

	rec = doJSON(t, s, "PUT", "/api/lore/"+rec1.ID,
		`{"event_narrative":"Mud and boulders came down the canyon","years_ago":5,"source_type":"newspaper"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		LScore float64 `json:"l_score"`
	}
	decodeJSON(t, rec, &updated)
	if updated.LScore <= rec1.LScore {
		t.Errorf("expected more recent record to score higher: %v <= %v", updated.LScore, rec1.LScore)
	}

	rec = doJSON(t, s, "GET", "/api/lore/"+rec1.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, s, "GET", "/api/lore/"+rec1.ID+"/revisions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("revisions: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var hist struct {
		Original  string `json:"original_narrative"`
		Revisions []struct {
			Patch     string `json:"patch"`
			Narrative string `json:"narrative"`
		} `json:"revisions"`
	}
	decodeJSON(t, rec, &hist)
	if hist.Original != "Mud came down the canyon" || len(hist.Revisions) != 1 {
		t.Fatalf("unexpected history: %+v", hist)
	}
	if hist.Revisions[0].Patch == "" || hist.Revisions[0].Narrative != "Mud and boulders came down the canyon" {
		t.Errorf("unexpected revision: %+v", hist.Revisions[0])
	}

	rec = doJSON(t, s, "DELETE", "/api/lore/"+rec1.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, s, "GET", "/api/lore/"+rec1.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
	rec = doJSON(t, s, "GET", "/api/lore/"+rec1.ID+"/revisions", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("revisions after delete: expected 404, got %d", rec.Code)
	}
}

func TestServer_AddLore_UnknownSite(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/sites/nowhere/lore", `{"event_narrative":"x","years_ago":1}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// ─── Jobs ──────────────────────────────────────────────────────────────

func TestServer_BatchJob_Empty(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/jobs/batch", `{"requests":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServer_GetJob_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/jobs/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServer_BatchJob_StreamsOverWebSocket(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/jobs/batch", `{"requests":[`+referenceBody+`,`+referenceBody+`]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var job struct {
		ID    string `json:"id"`
		Total int    `json:"total"`
	}
	decodeJSON(t, rec, &job)
	if job.ID == "" || job.Total != 2 {
		t.Fatalf("unexpected job: %+v", job)
	}

	ts := httptest.NewServer(s)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/jobs/" + job.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("job never reported done: %v", err)
		}
		// Events carry job_id; snapshots carry id.
		if _, snapshot := msg["id"]; snapshot && msg["status"] == "done" {
			if got := msg["processed"]; got != float64(2) {
				t.Errorf("expected processed=2, got %v", got)
			}
			break
		}
	}

	rec = doJSON(t, s, "GET", "/api/jobs", "")
	var jobs []json.RawMessage
	decodeJSON(t, rec, &jobs)
	if len(jobs) != 1 {
		t.Errorf("expected 1 job, got %d", len(jobs))
	}
}

// ─── Ops ───────────────────────────────────────────────────────────────

func TestServer_Statistics(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/statistics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	_ = doJSON(t, s, "POST", "/api/calculate-risk", referenceBody)
	rec := doJSON(t, s, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "georisk_risk_assessments_total") {
		t.Errorf("expected georisk_risk_assessments_total in metrics output")
	}
}

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/calculate-risk") {
		t.Errorf("expected swagger doc to list /api/calculate-risk")
	}
}
