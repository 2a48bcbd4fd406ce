// Package testutil provides the postgres test harness. Each test runs in
// its own schema so parallel packages never see each other's rows; the
// schema is dropped on cleanup. Tests skip when no database is reachable.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	identity "github.com/codigix/passion-clothing-sub000/internal/identity/entity"
	inventity "github.com/codigix/passion-clothing-sub000/internal/inventory/entity"
	"github.com/codigix/passion-clothing-sub000/internal/middleware"
	procentity "github.com/codigix/passion-clothing-sub000/internal/procurement/entity"
	prodentity "github.com/codigix/passion-clothing-sub000/internal/production/entity"
	salesentity "github.com/codigix/passion-clothing-sub000/internal/sales/entity"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_erp"
	JWTSecret  = "passion-clothing-test-secret"
)

func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func loadEnv() {
	if root := projectRoot(); root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB opens a connection scoped to a fresh schema and migrates
// every workflow table into it.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "erp")
	password := getEnv("DB_PASSWORD", "erp123")
	dbname := getEnv("DB_NAME", "passion_erp")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("database not reachable, skipping: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// search_path in the DSN so every pooled connection lands in the
	// test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Skipf("database not reachable, skipping: %v", err)
	}

	err = db.AutoMigrate(
		&identity.User{},
		&sequence.Counter{},
		&notify.Notification{},
		&salesentity.SalesOrder{},
		&inventity.Inventory{},
		&inventity.InventoryTransaction{},
		&procentity.PurchaseOrder{},
		&procentity.POItem{},
		&procentity.GoodsReceiptNote{},
		&procentity.GRNItem{},
		&procentity.CreditNote{},
		&prodentity.ProductionRequest{},
		&prodentity.MaterialRequest{},
		&prodentity.MaterialRequestItem{},
		&prodentity.MaterialDispatch{},
		&prodentity.DispatchItem{},
		&prodentity.MaterialReceipt{},
		&prodentity.ReceiptItem{},
		&prodentity.MaterialVerification{},
		&prodentity.VerificationItem{},
		&prodentity.ProductionApproval{},
		&prodentity.MaterialAllocation{},
		&prodentity.ProductionOrder{},
		&prodentity.ProductionStage{},
		&prodentity.QualityCheckpoint{},
		&prodentity.StageReworkHistory{},
		&prodentity.StageRejection{},
		&prodentity.MaterialReturn{},
		&prodentity.MaterialReturnItem{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group guarded by JWT auth.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid token carrying a department claim.
func GenerateTestToken(userID, name string, dept identity.Department) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        userID,
		"uid":        userID,
		"name":       name,
		"email":      name + "@test.local",
		"department": string(dept),
		"iss":        "passion-clothing",
		"iat":        now.Unix(),
		"exp":        now.Add(24 * time.Hour).Unix(),
		"jti":        fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(JWTSecret))
	return signed
}

// AdminToken returns a token for an admin test user, which passes every
// department guard.
func AdminToken() string {
	return GenerateTestToken("test-admin-001", "Test Admin", identity.DeptAdmin)
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse decodes the envelope body into a map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedUser creates a user row for notification fan-out targets.
func SeedUser(t *testing.T, db *gorm.DB, name string, dept identity.Department) *identity.User {
	t.Helper()
	user := &identity.User{
		ID:           uuid.New().String()[:32],
		Username:     fmt.Sprintf("%s_%d", name, time.Now().UnixNano()%1000000),
		Name:         name,
		PasswordHash: "x",
		Department:   dept,
		Status:       identity.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedInventory creates a stocked material.
func SeedInventory(t *testing.T, db *gorm.DB, code string, qty float64) *inventity.Inventory {
	t.Helper()
	inv := &inventity.Inventory{
		ID:           uuid.New().String()[:32],
		MaterialCode: code,
		MaterialName: "Material " + code,
		Quantity:     qty,
		AvailableQty: qty,
		Unit:         "pcs",
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("Failed to seed inventory: %v", err)
	}
	return inv
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
