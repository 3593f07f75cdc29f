package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const testSecret = "handler-test-secret"

type testServer struct {
	app   *fiber.App
	db    *gorm.DB
	admin uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	admin := uuid.New()
	cfg := &config.Config{
		JWTSecret:        testSecret,
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
		AdminUserIDs:     admin.String(),
	}

	owners := services.NewDefaultOwnerResolver(services.UserEmailLookup(db, "default@example.com"))
	app := fiber.New()
	routes.Setup(app, cfg, db,
		handlers.NewAuthHandler(services.NewAuthService(db, cfg)),
		handlers.NewHealthHandler(func() error { return nil }),
		handlers.NewApplianceHandler(services.NewApplianceService(db, owners)),
	)
	return &testServer{app: app, db: db, admin: admin}
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID.String(),
		"email": userID.String()[:8] + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

// userToken creates a user row and returns a bearer token for it.
func (s *testServer) userToken(t *testing.T) string {
	t.Helper()
	return tokenFor(t, testutil.NewUser(t, s.db))
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func decode(t *testing.T, b []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
}

func applianceBody(name, brand string, purchase time.Time, months int) map[string]interface{} {
	return map[string]interface{}{
		"name":                   name,
		"brand":                  brand,
		"model":                  "M1",
		"purchaseDate":           purchase.UTC().Format(time.RFC3339),
		"warrantyDurationMonths": months,
	}
}

func TestApplianceLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.userToken(t)

	status, body := s.do(t, http.MethodPost, "/api/appliances", token,
		applianceBody("Dishwasher", "Bosch", time.Now().AddDate(0, -1, 0), 24))
	if status != http.StatusCreated {
		t.Fatalf("create: want=%d got=%d body=%s", http.StatusCreated, status, body)
	}
	var created dto.Appliance
	decode(t, body, &created)
	if created.WarrantyStatus != models.WarrantyActive || created.SupportContacts == nil {
		t.Fatalf("created: %+v", created)
	}
	base := "/api/appliances/" + created.ID.String()

	status, body = s.do(t, http.MethodGet, "/api/appliances?search=bosch", token, nil)
	var list []dto.Appliance
	decode(t, body, &list)
	if status != http.StatusOK || len(list) != 1 {
		t.Fatalf("search: status=%d body=%s", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/api/appliances/stats/overview", token, nil)
	var stats dto.ApplianceStats
	decode(t, body, &stats)
	if status != http.StatusOK || stats.Total != 1 || stats.Active != 1 {
		t.Fatalf("stats: status=%d body=%s", status, body)
	}

	status, body = s.do(t, http.MethodPut, base, token, map[string]interface{}{"name": "Quiet Dishwasher"})
	var updated dto.Appliance
	decode(t, body, &updated)
	if status != http.StatusOK || updated.Name != "Quiet Dishwasher" || updated.Brand != "Bosch" {
		t.Fatalf("update: status=%d body=%s", status, body)
	}

	status, body = s.do(t, http.MethodPost, base+"/tasks", token, map[string]interface{}{
		"taskName":      "Clean filter",
		"scheduledDate": time.Now().AddDate(0, 0, -1).UTC().Format(time.RFC3339),
		"frequency":     "Monthly",
	})
	var withTask dto.Appliance
	decode(t, body, &withTask)
	if status != http.StatusCreated || len(withTask.MaintenanceTasks) != 1 || withTask.MaintenanceTasks[0].Status != models.MaintenanceOverdue {
		t.Fatalf("add task: status=%d body=%s", status, body)
	}

	taskPath := base + "/tasks/" + withTask.MaintenanceTasks[0].ID.String()
	status, body = s.do(t, http.MethodPost, taskPath+"/complete", token, nil)
	var completed dto.Appliance
	decode(t, body, &completed)
	if status != http.StatusOK || completed.MaintenanceTasks[0].Status != models.MaintenanceCompleted {
		t.Fatalf("complete: status=%d body=%s", status, body)
	}

	if status, body = s.do(t, http.MethodDelete, taskPath, token, nil); status != http.StatusOK {
		t.Fatalf("remove task: status=%d body=%s", status, body)
	}
	if status, body = s.do(t, http.MethodDelete, taskPath, token, nil); status != http.StatusNotFound {
		t.Fatalf("remove task twice: status=%d body=%s", status, body)
	}

	if status, body = s.do(t, http.MethodDelete, base, token, nil); status != http.StatusNoContent {
		t.Fatalf("delete: status=%d body=%s", status, body)
	}
	if status, _ = s.do(t, http.MethodDelete, base, token, nil); status != http.StatusNotFound {
		t.Fatalf("delete twice: want=%d got=%d", http.StatusNotFound, status)
	}
	if status, _ = s.do(t, http.MethodGet, base, token, nil); status != http.StatusNotFound {
		t.Fatalf("get after delete: want=%d got=%d", http.StatusNotFound, status)
	}
}

func TestValidationErrorResponse(t *testing.T) {
	s := newTestServer(t)
	token := s.userToken(t)

	body := applianceBody("", "Bosch", time.Now(), 0)
	status, raw := s.do(t, http.MethodPost, "/api/appliances", token, body)
	if status != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusBadRequest, status, raw)
	}
	var resp dto.ErrorResponse
	decode(t, raw, &resp)
	got := map[string]bool{}
	for _, d := range resp.Details {
		got[d.Field] = true
	}
	if !resp.Error || !got["name"] || !got["warrantyDurationMonths"] {
		t.Fatalf("details: %+v", resp)
	}

	status, raw = s.do(t, http.MethodGet, "/api/appliances?filter=Broken", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad filter: want=%d got=%d body=%s", http.StatusBadRequest, status, raw)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/appliances", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp2, err := s.app.Test(req, -1)
	if err != nil || resp2.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body: status=%v err=%v", resp2, err)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	s := newTestServer(t)

	if status, _ := s.do(t, http.MethodGet, "/api/appliances", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("no token: want=%d got=%d", http.StatusUnauthorized, status)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/appliances", "not-a-jwt", nil); status != http.StatusUnauthorized {
		t.Fatalf("garbage token: want=%d got=%d", http.StatusUnauthorized, status)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "nobody", "exp": time.Now().Add(time.Hour).Unix()})
	signed, _ := tok.SignedString([]byte(testSecret))
	if status, _ := s.do(t, http.MethodGet, "/api/appliances", signed, nil); status != http.StatusUnauthorized {
		t.Fatalf("non-uuid subject: want=%d got=%d", http.StatusUnauthorized, status)
	}

	if status, _ := s.do(t, http.MethodGet, "/api/health", "", nil); status != http.StatusOK {
		t.Fatalf("health must be public: got=%d", status)
	}
}

func TestForeignAppliancesLookMissing(t *testing.T) {
	s := newTestServer(t)
	owner := s.userToken(t)
	other := s.userToken(t)

	_, body := s.do(t, http.MethodPost, "/api/appliances", owner, applianceBody("Oven", "Miele", time.Now(), 24))
	var created dto.Appliance
	decode(t, body, &created)
	path := "/api/appliances/" + created.ID.String()

	for _, tc := range []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, path, nil},
		{http.MethodPut, path, map[string]interface{}{"name": "x"}},
		{http.MethodDelete, path, nil},
		{http.MethodPost, path + "/documents", map[string]interface{}{"title": "t", "url": "https://example.com"}},
		{http.MethodGet, "/api/appliances/not-a-uuid", nil},
	} {
		if status, raw := s.do(t, tc.method, tc.path, other, tc.body); status != http.StatusNotFound {
			t.Fatalf("%s %s: want=%d got=%d body=%s", tc.method, tc.path, http.StatusNotFound, status, raw)
		}
	}

	status, body := s.do(t, http.MethodGet, "/api/appliances", other, nil)
	var list []dto.Appliance
	decode(t, body, &list)
	if status != http.StatusOK || len(list) != 0 {
		t.Fatalf("other's list: status=%d body=%s", status, body)
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.userToken(t)
	bob := s.userToken(t)
	admin := tokenFor(t, s.admin)

	_, body := s.do(t, http.MethodPost, "/api/appliances", alice, applianceBody("Oven", "Miele", time.Now(), 24))
	var created dto.Appliance
	decode(t, body, &created)
	s.do(t, http.MethodPost, "/api/appliances", bob, applianceBody("Fridge", "LG", time.Now().AddDate(-5, 0, 0), 12))

	if status, _ := s.do(t, http.MethodGet, "/api/admin/appliances", alice, nil); status != http.StatusForbidden {
		t.Fatalf("non-admin: want=%d got=%d", http.StatusForbidden, status)
	}

	status, body := s.do(t, http.MethodGet, "/api/admin/appliances", admin, nil)
	var all []dto.Appliance
	decode(t, body, &all)
	if status != http.StatusOK || len(all) != 2 {
		t.Fatalf("admin list: status=%d body=%s", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/api/admin/appliances/stats", admin, nil)
	var stats dto.ApplianceStats
	decode(t, body, &stats)
	if status != http.StatusOK || stats.Total != 2 || stats.Expired != 1 {
		t.Fatalf("admin stats: status=%d body=%s", status, body)
	}

	if status, _ := s.do(t, http.MethodDelete, "/api/admin/appliances/"+created.ID.String(), admin, nil); status != http.StatusNoContent {
		t.Fatalf("admin delete: want=%d got=%d", http.StatusNoContent, status)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/appliances/"+created.ID.String(), alice, nil); status != http.StatusNotFound {
		t.Fatalf("after admin delete: want=%d got=%d", http.StatusNotFound, status)
	}
}
