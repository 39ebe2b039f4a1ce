package router_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"claims-review/internal/router"
	"claims-review/internal/seed"
)

const (
	adminID   = "1" // John Smith
	sarahID   = "2"
	michaelID = "3"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	demo := seed.Demo()
	h, err := router.NewRouter(router.Options{AuthVerifier: nil, Seed: &demo})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_ShareFlow(t *testing.T) {
	ts := newServer(t)

	// 1) Michael NO puede ver el claim de Sarah aún
	{
		st, _ := doReq(t, ts.URL, "GET", "/claims/2", michaelID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before share, got %d", st)
		}
	}

	// 2) Sarah comparte el claim 2 con Michael
	shareID := shareClaim(t, ts.URL, sarahID, "2", michaelID)

	// 3) Michael lo ve en "shared with me", con el nombre de quien lo compartió
	{
		st, body := doReq(t, ts.URL, "GET", "/me/shared-claims", michaelID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing shared claims, got %d body=%s", st, string(body))
		}
		var items []struct {
			ShareID    string `json:"share_id"`
			SharerName string `json:"sharer_name"`
			Claim      struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"claim"`
		}
		mustUnmarshal(t, body, &items)
		if len(items) != 1 || items[0].ShareID != shareID || items[0].Claim.ID != "2" {
			t.Fatalf("unexpected shared claims: %s", string(body))
		}
		if items[0].SharerName != "Sarah Johnson" || items[0].Claim.Status != "inReview" {
			t.Fatalf("unexpected shared claim details: %+v", items[0])
		}
	}

	// 4) Michael ya puede ver el claim y cambiarle el status
	{
		st, body := doReq(t, ts.URL, "GET", "/claims/2", michaelID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get shared claim, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "POST", "/claims/2/status", michaelID, map[string]any{"status": "approved"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 status change, got %d body=%s", st, string(body))
		}
		var out struct {
			Changed bool `json:"changed"`
			Claim   struct {
				Status string `json:"status"`
			} `json:"claim"`
		}
		mustUnmarshal(t, body, &out)
		if !out.Changed || out.Claim.Status != "approved" {
			t.Fatalf("unexpected transition result: %s", string(body))
		}
	}

	// 5) Mismo status otra vez => no-op
	{
		st, body := doReq(t, ts.URL, "POST", "/claims/2/status", michaelID, map[string]any{"status": "approved"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 no-op, got %d body=%s", st, string(body))
		}
		var out struct {
			Changed bool `json:"changed"`
		}
		mustUnmarshal(t, body, &out)
		if out.Changed {
			t.Fatalf("same status must not report a change")
		}
	}

	// 6) Compartir de nuevo con el mismo agente => 409
	{
		st, body := doReq(t, ts.URL, "POST", "/claims/2/shares", sarahID, map[string]any{"recipient_id": michaelID})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate share, got %d body=%s", st, string(body))
		}
	}

	// 7) Compartir consigo mismo => 400
	{
		st, body := doReq(t, ts.URL, "POST", "/claims/2/shares", sarahID, map[string]any{"recipient_id": sarahID})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 self share, got %d body=%s", st, string(body))
		}
	}

	// 8) Michael no puede borrar un share que no hizo
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/shares/"+shareID, michaelID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 unshare by recipient, got %d", st)
		}
	}

	// 9) Sarah lo borra y Michael pierde el acceso
	{
		st, body := doReq(t, ts.URL, "DELETE", "/shares/"+shareID, sarahID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 unshare, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "GET", "/claims/2", michaelID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after unshare, got %d", st)
		}
	}
}

func TestHTTP_SharedClaimEvents_StreamsNewShare(t *testing.T) {
	ts := newServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1) Michael abre el stream
	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/me/shared-claims/events", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("X-Debug-User-ID", michaelID)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected stream response: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	lines := bufio.NewReader(resp.Body)
	readLine := func() string {
		t.Helper()
		line, err := lines.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		return strings.TrimRight(line, "\n")
	}
	if first := readLine(); first != ": connected" {
		t.Fatalf("expected connected comment, got %q", first)
	}

	// 2) Sarah comparte y el evento llega
	shareID := shareClaim(t, ts.URL, sarahID, "2", michaelID)

	var event, data string
	for event == "" || data == "" {
		line := readLine()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	if event != "share" {
		t.Fatalf("expected share event, got %q", event)
	}
	var n struct {
		ShareID     string `json:"share_id"`
		ClaimID     string `json:"claim_id"`
		SharerID    string `json:"sharer_id"`
		RecipientID string `json:"recipient_id"`
	}
	mustUnmarshal(t, []byte(data), &n)
	if n.ShareID != shareID || n.ClaimID != "2" || n.SharerID != sarahID || n.RecipientID != michaelID {
		t.Fatalf("unexpected notification %s", data)
	}
}

func TestHTTP_BulkStatus_PartialFailure(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "POST", "/claims/bulk-status", adminID, map[string]any{
		"ids":    []string{"1", "7", "missing"},
		"status": "approved",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 bulk, got %d body=%s", st, string(body))
	}

	var rep struct {
		Requested    int `json:"requested"`
		UpdatedCount int `json:"updated_count"`
		Failures     []struct {
			ID    string `json:"id"`
			Error string `json:"error"`
		} `json:"failures"`
		Summary string `json:"summary"`
	}
	mustUnmarshal(t, body, &rep)
	if rep.Requested != 3 || rep.UpdatedCount != 2 {
		t.Fatalf("unexpected bulk report: %s", string(body))
	}
	if len(rep.Failures) != 1 || rep.Failures[0].ID != "missing" || rep.Failures[0].Error != "not_found" {
		t.Fatalf("expected one not_found failure, got %s", string(body))
	}
	if rep.Summary != "Updated 2 claims to approved (1 failed)" {
		t.Fatalf("unexpected summary %q", rep.Summary)
	}

	counts := dashboardCounts(t, ts.URL, adminID)
	if counts["approved"] != 4 || counts["pending"] != 1 || counts["inReview"] != 1 || counts["total"] != 8 {
		t.Fatalf("unexpected counts after bulk: %v", counts)
	}
}

func TestHTTP_BulkStatus_AllApprovedAndTimestampsAdvance(t *testing.T) {
	ts := newServer(t)
	ids := []string{"1", "2", "4"} // pending, inReview, denied

	before := map[string]time.Time{}
	for _, id := range ids {
		before[id] = getClaim(t, ts.URL, adminID, id).UpdatedAt
	}

	st, body := doReq(t, ts.URL, "POST", "/claims/bulk-status", adminID, map[string]any{
		"ids":    ids,
		"status": "approved",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 bulk, got %d body=%s", st, string(body))
	}
	var rep struct {
		UpdatedCount int    `json:"updated_count"`
		Summary      string `json:"summary"`
	}
	mustUnmarshal(t, body, &rep)
	if rep.UpdatedCount != 3 || rep.Summary != "Updated 3 claims to approved" {
		t.Fatalf("unexpected bulk report: %s", string(body))
	}

	for _, id := range ids {
		c := getClaim(t, ts.URL, adminID, id)
		if c.Status != "approved" {
			t.Fatalf("claim %s: expected approved, got %s", id, c.Status)
		}
		if !c.UpdatedAt.After(before[id]) {
			t.Fatalf("claim %s: updated_at %s must be after %s", id, c.UpdatedAt, before[id])
		}
	}
}

func TestHTTP_AgentBulkSkipsInvisibleClaims(t *testing.T) {
	ts := newServer(t)

	// claim 1 es del admin: Sarah no lo ve
	st, body := doReq(t, ts.URL, "POST", "/claims/bulk-status", sarahID, map[string]any{
		"ids":    []string{"2", "1"},
		"status": "denied",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 bulk, got %d body=%s", st, string(body))
	}
	var rep struct {
		UpdatedCount int `json:"updated_count"`
		Failures     []struct {
			ID    string `json:"id"`
			Error string `json:"error"`
		} `json:"failures"`
	}
	mustUnmarshal(t, body, &rep)
	if rep.UpdatedCount != 1 || len(rep.Failures) != 1 || rep.Failures[0].Error != "forbidden" {
		t.Fatalf("unexpected bulk report: %s", string(body))
	}
}

func TestHTTP_AdminCreatesClaim(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "POST", "/claims", adminID, map[string]any{
		"policy_number": "CLM-2023-009",
		"claimant_name": "Liam Garcia",
		"description":   "Hail damage",
		"amount":        "2500.00",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create claim, got %d body=%s", st, string(body))
	}
	var c struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		OwnerID string `json:"owner_id"`
	}
	mustUnmarshal(t, body, &c)
	if c.ID == "" || c.Status != "pending" || c.OwnerID != adminID {
		t.Fatalf("unexpected created claim: %s", string(body))
	}

	counts := dashboardCounts(t, ts.URL, adminID)
	if counts["pending"] != 3 || counts["total"] != 9 {
		t.Fatalf("unexpected counts after create: %v", counts)
	}
}

func TestHTTP_AuthAndRoles(t *testing.T) {
	ts := newServer(t)

	if st, _ := doReq(t, ts.URL, "GET", "/claims", "", nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 anonymous, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/claims", "nobody", nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 unknown profile, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/claims", sarahID, map[string]any{
		"policy_number": "X", "claimant_name": "Y",
	}); st != http.StatusForbidden {
		t.Fatalf("expected 403 agent creating claim, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/claims/1/shares", adminID, map[string]any{
		"recipient_id": sarahID,
	}); st != http.StatusForbidden {
		t.Fatalf("expected 403 admin sharing, got %d", st)
	}

	// agente solo ve los propios
	st, body := doReq(t, ts.URL, "GET", "/claims", sarahID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
	}
	var items []struct {
		ID      string `json:"id"`
		OwnerID string `json:"owner_id"`
	}
	mustUnmarshal(t, body, &items)
	if len(items) != 2 {
		t.Fatalf("expected sarah's 2 claims, got %s", string(body))
	}
	for _, it := range items {
		if it.OwnerID != sarahID {
			t.Fatalf("agent sees foreign claim %s", it.ID)
		}
	}

	if st, _ := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}
}

func TestHTTP_MeNavigation(t *testing.T) {
	ts := newServer(t)

	cases := []struct {
		userID string
		home   string
		role   string
	}{
		{userID: adminID, home: "/dashboard", role: "admin"},
		{userID: sarahID, home: "/agent-dashboard", role: "agent"},
	}
	for _, tc := range cases {
		st, body := doReq(t, ts.URL, "GET", "/me", tc.userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 /me, got %d body=%s", st, string(body))
		}
		var me struct {
			Role       string   `json:"role"`
			Home       string   `json:"home"`
			Navigation []string `json:"navigation"`
		}
		mustUnmarshal(t, body, &me)
		if me.Role != tc.role || me.Home != tc.home || len(me.Navigation) == 0 || me.Navigation[0] != tc.home {
			t.Fatalf("user %s: unexpected /me %s", tc.userID, string(body))
		}
	}
}

// ---- helpers ----

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func mustUnmarshal(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, string(body))
	}
}

func shareClaim(t *testing.T, baseURL, sharerID, claimID, recipientID string) string {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/claims/"+claimID+"/shares", sharerID, map[string]any{
		"recipient_id": recipientID,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 share, got %d body=%s", st, string(body))
	}
	var out struct {
		ID string `json:"id"`
	}
	mustUnmarshal(t, body, &out)
	if out.ID == "" {
		t.Fatalf("missing share id: %s", string(body))
	}
	return out.ID
}

type claimView struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func getClaim(t *testing.T, baseURL, userID, claimID string) claimView {
	t.Helper()
	st, body := doReq(t, baseURL, "GET", "/claims/"+claimID, userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get claim %s, got %d body=%s", claimID, st, string(body))
	}
	var c claimView
	mustUnmarshal(t, body, &c)
	return c
}

func dashboardCounts(t *testing.T, baseURL, userID string) map[string]int {
	t.Helper()
	st, body := doReq(t, baseURL, "GET", "/dashboard", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 dashboard, got %d body=%s", st, string(body))
	}
	var out struct {
		Counts map[string]int `json:"counts"`
	}
	mustUnmarshal(t, body, &out)
	return out.Counts
}
