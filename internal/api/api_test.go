package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andresuchdata/autopo-proposals/internal/repository"
	"github.com/andresuchdata/autopo-proposals/internal/service"
	"github.com/gin-gonic/gin"
)

const snapshotBody = `{
	"inventory": [
		{"id": 7, "productId": 1, "warehouseId": 3, "quantity": 5, "reorderPoint": 10, "safetyStock": 20},
		{"id": 8, "productId": 2, "warehouseId": 4, "quantity": "0", "reorderPoint": 5},
		{"id": 9, "productId": 1, "warehouseId": 3, "quantity": 900, "reorderPoint": 10}
	],
	"products": [
		{"id": 1, "name": "Shampoo", "sku": "SH-1", "basePrice": 100},
		{"id": 2, "name": "Soap", "sku": "SP-2", "basePrice": "12.50"}
	],
	"suppliers": [
		{"id": 2, "name": "Harbor Supply", "isActive": true, "leadTimeDays": 14}
	]
}`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewProposalService(repository.NewMemoryRepository(), service.Options{})
	return NewRouter(&Services{ProposalService: svc}, []string{"*"})
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response %q: %v", rec.Body.String(), err)
	}
	return out
}

func generate(t *testing.T, r http.Handler) []string {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/api/v1/proposals/generate", snapshotBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var batch struct {
		FlaggedCount int `json:"flagged_count"`
		Proposals    []struct {
			ID string `json:"id"`
		} `json:"proposals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &batch); err != nil {
		t.Fatal(err)
	}
	if batch.FlaggedCount != 2 || len(batch.Proposals) != 2 {
		t.Fatalf("expected 2 proposals, got %d", batch.FlaggedCount)
	}
	return []string{batch.Proposals[0].ID, batch.Proposals[1].ID}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || decode(t, rec)["status"] != "ok" {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestGenerate_NoSourceNoBody(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/v1/proposals/generate", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenerate_InvalidBody(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/v1/proposals/generate", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBatch(t *testing.T) {
	r := newTestRouter(t)

	if rec := do(t, r, http.MethodGet, "/api/v1/proposals/batch", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before generation, got %d", rec.Code)
	}

	generate(t, r)
	rec := do(t, r, http.MethodGet, "/api/v1/proposals/batch", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if _, ok := body["proposals"]; ok {
		t.Fatalf("batch metadata must not include proposals")
	}
	if body["inventory_count"].(float64) != 3 {
		t.Fatalf("unexpected inventory count %v", body["inventory_count"])
	}
}

func TestListProposals(t *testing.T) {
	r := newTestRouter(t)
	generate(t, r)

	rec := do(t, r, http.MethodGet, "/api/v1/proposals?status=draft&warehouse_id=4", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	items := body["items"].([]any)
	if body["total"].(float64) != 1 || len(items) != 1 {
		t.Fatalf("expected one proposal in warehouse 4, got %v", body)
	}
	if items[0].(map[string]any)["sku"] != "SP-2" {
		t.Fatalf("unexpected item %v", items[0])
	}

	for _, q := range []string{"status=bogus", "page=-1", "page_size=500", "sort_direction=up"} {
		if rec := do(t, r, http.MethodGet, "/api/v1/proposals?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestProposalLifecycle(t *testing.T) {
	r := newTestRouter(t)
	ids := generate(t, r)
	path := "/api/v1/proposals/" + ids[0]

	rec := do(t, r, http.MethodGet, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	actions := decode(t, rec)["available_actions"].([]any)
	if len(actions) != 1 || actions[0] != "submit" {
		t.Fatalf("expected only submit for a draft, got %v", actions)
	}

	cases := []struct {
		body string
		code int
	}{
		{`{"action": "approve"}`, http.StatusConflict},
		{`{"action": "fly"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
		{`{"action": "SUBMIT"}`, http.StatusOK},
		{`{"action": "approve"}`, http.StatusOK},
		{`{"action": "send"}`, http.StatusOK},
		{`{"action": "reject"}`, http.StatusConflict},
	}
	for i, tc := range cases {
		rec := do(t, r, http.MethodPost, path+"/transitions", tc.body)
		if rec.Code != tc.code {
			t.Fatalf("step %d %s: expected %d, got %d: %s", i, tc.body, tc.code, rec.Code, rec.Body.String())
		}
	}

	rec = do(t, r, http.MethodGet, path, "")
	body := decode(t, rec)
	if body["proposal"].(map[string]any)["status"] != "SENT" || len(body["available_actions"].([]any)) != 0 {
		t.Fatalf("expected SENT with no actions, got %v", body)
	}

	if rec := do(t, r, http.MethodGet, "/api/v1/proposals/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/v1/proposals/nope/transitions", `{"action":"submit"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestBulkTransition(t *testing.T) {
	r := newTestRouter(t)
	ids := generate(t, r)

	body := `{"ids": ["` + ids[0] + `", "` + ids[1] + `", "missing"], "action": "submit"}`
	rec := do(t, r, http.MethodPost, "/api/v1/proposals/transitions", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["succeeded"].(float64) != 2 || resp["failed"].(float64) != 1 {
		t.Fatalf("unexpected bulk result %v", resp)
	}

	if rec := do(t, r, http.MethodPost, "/api/v1/proposals/transitions", `{"ids": [], "action": "submit"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty ids, got %d", rec.Code)
	}
}

func TestImpact(t *testing.T) {
	r := newTestRouter(t)
	ids := generate(t, r)

	rec := do(t, r, http.MethodPost, "/api/v1/proposals/impact", `{"ids": ["`+ids[0]+`", "`+ids[1]+`"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	// 50 x 50.00 + 50 x 6.25
	if body["total_cash_impact"] != "2812.5" {
		t.Fatalf("unexpected cash impact %v", body["total_cash_impact"])
	}
	if body["total_lead_time_days"].(float64) != 14 || body["affected_products"].(float64) != 2 {
		t.Fatalf("unexpected summary %v", body)
	}

	rec = do(t, r, http.MethodPost, "/api/v1/proposals/impact", `{"ids": []}`)
	body = decode(t, rec)
	if rec.Code != http.StatusOK || body["affected_products"].(float64) != 0 || len(body["warnings"].([]any)) != 0 {
		t.Fatalf("expected zero summary, got %d %v", rec.Code, body)
	}
}

func TestExport(t *testing.T) {
	r := newTestRouter(t)

	if rec := do(t, r, http.MethodGet, "/api/v1/proposals/export", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before generation, got %d", rec.Code)
	}

	generate(t, r)
	rec := do(t, r, http.MethodGet, "/api/v1/proposals/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected content type %s", rec.Header().Get("Content-Type"))
	}
	if lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n"); len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(lines))
	}

	if rec := do(t, r, http.MethodPost, "/api/v1/proposals/export", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without storage, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/api/v1/proposals/exports", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 listing exports without storage, got %d", rec.Code)
	}
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	if all || len(origins) != 2 {
		t.Fatalf("unexpected origins %v %v", origins, all)
	}
	if _, all := normalizeAllowedOrigins([]string{"*"}); !all {
		t.Fatalf("expected wildcard to allow all")
	}
}
