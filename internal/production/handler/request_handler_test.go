package handler

import (
	"net/http"
	"testing"

	identity "github.com/codigix/passion-clothing-sub000/internal/identity/entity"
	identityrepo "github.com/codigix/passion-clothing-sub000/internal/identity/repository"
	"github.com/codigix/passion-clothing-sub000/internal/middleware"
	"github.com/codigix/passion-clothing-sub000/internal/production/repository"
	"github.com/codigix/passion-clothing-sub000/internal/production/service"
	salesentity "github.com/codigix/passion-clothing-sub000/internal/sales/entity"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/codigix/passion-clothing-sub000/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRequestTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	so := &salesentity.SalesOrder{
		ID:           uuid.New().String()[:32],
		OrderNumber:  "SO-TEST-00001",
		CustomerName: "Acme Retail",
		ProductName:  "Summer Dress",
		Quantity:     100,
		Status:       salesentity.SOStatusConfirmed,
	}
	if err := db.Create(so).Error; err != nil {
		t.Fatalf("seed sales order: %v", err)
	}

	repos := repository.NewRepositories(db)
	seq := sequence.NewGenerator(db)
	notifier := notify.NewDispatcher(db, identityrepo.NewUserRepository(db), zap.NewNop())
	svc := service.NewRequestService(db, repos, seq, notifier)
	h := NewRequestHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/production-requests", h.List)
	api.GET("/production-requests/:id", h.Get)
	api.POST("/production-requests",
		middleware.RequireDepartment(identity.DeptSales, identity.DeptProcurement), h.Create)
	api.POST("/production-requests/:id/review",
		middleware.RequireDepartment(identity.DeptManufacturing), h.Review)

	return router, db
}

func createRequestPayload(salesOrderID string) map[string]interface{} {
	return map[string]interface{}{
		"sales_order_id": salesOrderID,
		"product_name":   "Summer Dress",
		"quantity":       100,
		"priority":       "high",
	}
}

func TestProductionRequestDepartmentGuard(t *testing.T) {
	router, db := setupRequestTest(t)
	var so salesentity.SalesOrder
	db.First(&so)

	mfgToken := testutil.GenerateTestToken("u-mfg", "Mfg User", identity.DeptManufacturing)
	w := testutil.DoRequest(router, "POST", "/api/v1/production-requests", createRequestPayload(so.ID), mfgToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manufacturing creating a request, got %d: %s", w.Code, w.Body.String())
	}

	salesToken := testutil.GenerateTestToken("u-sales", "Sales User", identity.DeptSales)
	w = testutil.DoRequest(router, "POST", "/api/v1/production-requests", createRequestPayload(so.ID), salesToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != "pending" {
		t.Errorf("expected pending, got %v", data["status"])
	}
	number, _ := data["request_number"].(string)
	if len(number) == 0 || number[:4] != "PRQ-" {
		t.Errorf("expected PRQ-prefixed number, got %v", data["request_number"])
	}

	// Review belongs to manufacturing, not sales.
	id := data["id"].(string)
	w = testutil.DoRequest(router, "POST", "/api/v1/production-requests/"+id+"/review",
		map[string]string{"notes": "ok"}, salesToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for sales reviewing, got %d", w.Code)
	}
	w = testutil.DoRequest(router, "POST", "/api/v1/production-requests/"+id+"/review",
		map[string]string{"notes": "capacity available"}, mfgToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["status"] != "reviewed" {
		t.Errorf("expected reviewed, got %v", data["status"])
	}
}

func TestDuplicateRequestPerSalesOrderConflicts(t *testing.T) {
	router, db := setupRequestTest(t)
	var so salesentity.SalesOrder
	db.First(&so)

	token := testutil.GenerateTestToken("u-sales", "Sales User", identity.DeptSales)
	w := testutil.DoRequest(router, "POST", "/api/v1/production-requests", createRequestPayload(so.ID), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(router, "POST", "/api/v1/production-requests", createRequestPayload(so.ID), token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second request on same sales order, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProductionRequestRequiresAuth(t *testing.T) {
	router, _ := setupRequestTest(t)

	w := testutil.DoRequest(router, "GET", "/api/v1/production-requests", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// Admin passes every department guard.
	w = testutil.DoRequest(router, "GET", "/api/v1/production-requests", nil, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}
}
