package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codigix/passion-clothing-sub000/internal/config"
	identityentity "github.com/codigix/passion-clothing-sub000/internal/identity/entity"
	identityhandler "github.com/codigix/passion-clothing-sub000/internal/identity/handler"
	identityrepo "github.com/codigix/passion-clothing-sub000/internal/identity/repository"
	identitysvc "github.com/codigix/passion-clothing-sub000/internal/identity/service"
	inventity "github.com/codigix/passion-clothing-sub000/internal/inventory/entity"
	invhandler "github.com/codigix/passion-clothing-sub000/internal/inventory/handler"
	invrepo "github.com/codigix/passion-clothing-sub000/internal/inventory/repository"
	invsvc "github.com/codigix/passion-clothing-sub000/internal/inventory/service"
	"github.com/codigix/passion-clothing-sub000/internal/middleware"
	procentity "github.com/codigix/passion-clothing-sub000/internal/procurement/entity"
	prochandler "github.com/codigix/passion-clothing-sub000/internal/procurement/handler"
	procrepo "github.com/codigix/passion-clothing-sub000/internal/procurement/repository"
	procsvc "github.com/codigix/passion-clothing-sub000/internal/procurement/service"
	prodentity "github.com/codigix/passion-clothing-sub000/internal/production/entity"
	prodhandler "github.com/codigix/passion-clothing-sub000/internal/production/handler"
	prodrepo "github.com/codigix/passion-clothing-sub000/internal/production/repository"
	prodsvc "github.com/codigix/passion-clothing-sub000/internal/production/service"
	salesentity "github.com/codigix/passion-clothing-sub000/internal/sales/entity"
	saleshandler "github.com/codigix/passion-clothing-sub000/internal/sales/handler"
	salesrepo "github.com/codigix/passion-clothing-sub000/internal/sales/repository"
	salessvc "github.com/codigix/passion-clothing-sub000/internal/sales/service"
	"github.com/codigix/passion-clothing-sub000/internal/shared/notify"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sse"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting passion-clothing ERP",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := autoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// SSE hub with optional redis bridge for multi-instance fan-out
	hub := sse.NewHub()
	var bridge *sse.Bridge
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		zapLogger.Warn("Redis unreachable, notifications stay instance-local", zap.Error(err))
	} else {
		bridge = sse.NewBridge(rdb, hub)
		go bridge.Run(ctx)
	}
	cancel()

	// shared infrastructure
	seq := sequence.NewGenerator(db)
	userRepo := identityrepo.NewUserRepository(db)
	notifier := notify.NewDispatcher(db, userRepo, zapLogger)
	if bridge != nil {
		notifier.SetBridge(bridge)
	}

	// repositories
	salesRepo := salesrepo.NewSalesOrderRepository(db)
	inventoryRepo := invrepo.NewInventoryRepository(db)
	procRepos := procrepo.NewRepositories(db)
	prodRepos := prodrepo.NewRepositories(db)

	// services
	authService := identitysvc.NewAuthService(userRepo, cfg.JWT)
	salesService := salessvc.NewSalesService(salesRepo, seq)
	inventoryService := invsvc.NewInventoryService(inventoryRepo, db)
	procurementService := procsvc.NewProcurementService(db, procRepos, inventoryService, seq, notifier)
	requestService := prodsvc.NewRequestService(db, prodRepos, seq, notifier)
	dispatchService := prodsvc.NewDispatchService(db, prodRepos, inventoryService, seq, notifier, cfg.Workflow)
	receiptService := prodsvc.NewReceiptService(db, prodRepos, seq, notifier)
	verificationService := prodsvc.NewVerificationService(db, prodRepos, seq, notifier)
	approvalService := prodsvc.NewApprovalService(db, prodRepos, seq, notifier, cfg.Workflow)
	stageService := prodsvc.NewStageService(db, prodRepos, notifier)
	returnService := prodsvc.NewReturnService(db, prodRepos, inventoryService, seq, notifier)

	// handlers
	authHandler := identityhandler.NewAuthHandler(authService)
	salesHandler := saleshandler.NewSalesHandler(salesService)
	inventoryHandler := invhandler.NewInventoryHandler(inventoryService)
	procurementHandler := prochandler.NewProcurementHandler(procurementService)
	requestHandler := prodhandler.NewRequestHandler(requestService)
	flowHandler := prodhandler.NewMaterialFlowHandler(dispatchService, receiptService, verificationService, approvalService)
	stageHandler := prodhandler.NewStageHandler(stageService, returnService)
	notifyHandler := notify.NewHandler(db)
	streamHandler := sse.NewStreamHandler(hub)

	router := buildRouter(cfg, zapLogger, routeDeps{
		auth:        authHandler,
		sales:       salesHandler,
		inventory:   inventoryHandler,
		procurement: procurementHandler,
		requests:    requestHandler,
		flow:        flowHandler,
		stages:      stageHandler,
		notify:      notifyHandler,
		stream:      streamHandler,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Forced shutdown", zap.Error(err))
	}
	zapLogger.Info("Stopped")
}

type routeDeps struct {
	auth        *identityhandler.AuthHandler
	sales       *saleshandler.SalesHandler
	inventory   *invhandler.InventoryHandler
	procurement *prochandler.ProcurementHandler
	requests    *prodhandler.RequestHandler
	flow        *prodhandler.MaterialFlowHandler
	stages      *prodhandler.StageHandler
	notify      *notify.Handler
	stream      *sse.StreamHandler
}

func buildRouter(cfg *config.Config, zapLogger *zap.Logger, d routeDeps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(zapLogger),
		gin.Recovery(),
		middleware.CORS(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/sse"})),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
	})

	api := router.Group("/api/v1")
	api.POST("/auth/login", d.auth.Login)

	authed := api.Group("", middleware.JWTAuth(cfg.JWT.Secret))

	authed.GET("/auth/me", d.auth.Me)
	authed.POST("/users", middleware.RequireDepartment(), d.auth.CreateUser) // admin only

	authed.GET("/notifications", d.notify.List)
	authed.POST("/notifications/:id/read", d.notify.MarkRead)
	authed.POST("/notifications/read-all", d.notify.MarkAllRead)
	authed.GET("/sse/events", d.stream.Stream)

	sales := middleware.RequireDepartment(identityentity.DeptSales)
	procurement := middleware.RequireDepartment(identityentity.DeptProcurement)
	inventoryDept := middleware.RequireDepartment(identityentity.DeptInventory)
	manufacturing := middleware.RequireDepartment(identityentity.DeptManufacturing)
	quality := middleware.RequireDepartment(identityentity.DeptQuality)
	finance := middleware.RequireDepartment(identityentity.DeptFinance)

	authed.GET("/sales-orders", d.sales.List)
	authed.GET("/sales-orders/:id", d.sales.Get)
	authed.POST("/sales-orders", sales, d.sales.Create)
	authed.POST("/sales-orders/:id/confirm", sales, d.sales.Confirm)
	authed.POST("/sales-orders/:id/cancel", sales, d.sales.Cancel)

	authed.GET("/inventory", d.inventory.List)
	authed.GET("/inventory/:id", d.inventory.Get)
	authed.POST("/inventory", inventoryDept, d.inventory.Create)
	authed.POST("/inventory/:id/adjust", inventoryDept, d.inventory.Adjust)
	authed.GET("/inventory/:id/transactions", d.inventory.Transactions)

	authed.GET("/production-requests", d.requests.List)
	authed.GET("/production-requests/:id", d.requests.Get)
	authed.POST("/production-requests", middleware.RequireDepartment(identityentity.DeptSales, identityentity.DeptProcurement), d.requests.Create)
	authed.POST("/production-requests/:id/review", manufacturing, d.requests.Review)
	authed.POST("/production-requests/:id/cancel", middleware.RequireDepartment(identityentity.DeptSales, identityentity.DeptManufacturing), d.requests.Cancel)

	authed.GET("/purchase-orders", d.procurement.ListPOs)
	authed.GET("/purchase-orders/:id", d.procurement.GetPO)
	authed.POST("/purchase-orders", procurement, d.procurement.CreatePO)
	authed.POST("/purchase-orders/:id/send", procurement, d.procurement.SendPO)
	authed.GET("/grns", d.procurement.ListGRNs)
	authed.GET("/grns/:id", d.procurement.GetGRN)
	authed.POST("/grns", middleware.RequireDepartment(identityentity.DeptProcurement, identityentity.DeptInventory), d.procurement.CreateGRN)
	authed.POST("/grns/:id/verify", inventoryDept, d.procurement.VerifyGRN)
	authed.GET("/credit-notes", d.procurement.ListCreditNotes)
	authed.GET("/credit-notes/:id", d.procurement.GetCreditNote)
	authed.POST("/credit-notes/:id/approve", finance, d.procurement.ApproveCreditNote)

	authed.GET("/material-requests", d.requests.ListMaterialRequests)
	authed.GET("/material-requests/:id", d.requests.GetMaterialRequest)
	authed.POST("/material-requests", manufacturing, d.requests.CreateMaterialRequest)

	authed.GET("/dispatches", d.flow.ListDispatches)
	authed.GET("/dispatches/:id", d.flow.GetDispatch)
	authed.POST("/dispatches", inventoryDept, d.flow.CreateDispatch)

	authed.GET("/receipts", d.flow.ListReceipts)
	authed.GET("/receipts/:id", d.flow.GetReceipt)
	authed.POST("/receipts", manufacturing, d.flow.CreateReceipt)

	authed.GET("/verifications", d.flow.ListVerifications)
	authed.GET("/verifications/:id", d.flow.GetVerification)
	authed.POST("/verifications", quality, d.flow.CreateVerification)

	authed.GET("/approvals", d.flow.ListApprovals)
	authed.GET("/approvals/:id", d.flow.GetApproval)
	authed.POST("/approvals", manufacturing, d.flow.CreateApproval)
	authed.POST("/approvals/:id/start-production", manufacturing, d.flow.StartProduction)

	authed.GET("/production-orders", d.stages.ListOrders)
	authed.GET("/production-orders/:id", d.stages.GetOrder)
	authed.POST("/production-orders/:id/unfreeze", manufacturing, d.stages.UnfreezeOrder)

	authed.POST("/stages/:id/start", manufacturing, d.stages.StartStage)
	authed.POST("/stages/:id/pause", manufacturing, d.stages.PauseStage)
	authed.POST("/stages/:id/resume", manufacturing, d.stages.ResumeStage)
	authed.POST("/stages/:id/hold", manufacturing, d.stages.HoldStage)
	authed.POST("/stages/:id/skip", manufacturing, d.stages.SkipStage)
	authed.POST("/stages/:id/complete", manufacturing, d.stages.CompleteStage)
	authed.POST("/stages/:id/rework", middleware.RequireDepartment(identityentity.DeptManufacturing, identityentity.DeptQuality), d.stages.ReworkStage)
	authed.GET("/stages/:id/rework-history", d.stages.ListReworkHistory)
	authed.POST("/stages/:id/checkpoints", quality, d.stages.AddCheckpoint)
	authed.POST("/checkpoints/:id/record", quality, d.stages.RecordCheckpoint)
	authed.POST("/stages/:id/rejections", quality, d.stages.RecordRejection)
	authed.GET("/stages/:id/rejections", d.stages.ListRejections)

	authed.GET("/material-returns", d.stages.ListReturns)
	authed.GET("/material-returns/:id", d.stages.GetReturn)
	authed.POST("/material-returns", manufacturing, d.stages.CreateReturn)
	authed.POST("/material-returns/:id/approve", inventoryDept, d.stages.ApproveReturn)
	authed.POST("/material-returns/:id/reject", inventoryDept, d.stages.RejectReturn)
	authed.POST("/material-returns/:id/process", inventoryDept, d.stages.ProcessReturn)

	return router
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&identityentity.User{},
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
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err == nil {
		zapCfg.Level = level
	}
	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	logLevel := logger.Warn
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}
