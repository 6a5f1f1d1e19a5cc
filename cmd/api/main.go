package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/api"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/api/handler"
	custommiddleware "github.com/sanosuguru/go-bus-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/application"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/config"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/employee"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-bus-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/pkg/metrics"
)

func main() {
	cfg := config.Load()

	logger.Set(logger.NewLogger(os.Getenv("APP_ENV")))
	defer logger.Sync()

	// データベース接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション（MIGRATIONS_PATH が設定されている場合のみ）
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		if err := postgres.RunMigrations(db.DB, path); err != nil {
			logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
		}
		logger.Info("マイグレーション完了", zap.String("path", path))
	}

	// Redis（接続できない場合はロック・キャッシュなしで起動）
	var (
		lockManager *redisinfra.LockManager
		seatCache   *redisinfra.SeatCache
	)
	redisClient := redisinfra.NewClient(&cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisinfra.Ping(ctx, redisClient); err != nil {
		logger.Warn("Redis接続に失敗しました。分散ロックとキャッシュを無効化します", zap.Error(err))
	} else {
		lockManager = redisinfra.NewLockManager(redisClient)
		seatCache = redisinfra.NewSeatCache(redisClient)
	}
	cancel()

	m := metrics.Init()

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	bookingRepo := postgres.NewBookingRepository(db)
	seatRepo := postgres.NewSeatRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	employeeRepo := postgres.NewEmployeeRepository(db)
	ruleRepo := postgres.NewRuleRepository(db)
	busRepo := postgres.NewBusRepository(db)
	busTypeRepo := postgres.NewBusTypeRepository(db)
	routeRepo := postgres.NewRouteRepository(db)

	// サービス
	bookingService := application.NewBookingService(
		txManager, bookingRepo, seatRepo, tripRepo,
		customerRepo, employeeRepo, ruleRepo,
		lockManager, seatCache, m,
	)
	tripService := application.NewTripService(txManager, tripRepo, busRepo, routeRepo, seatRepo)
	seatService := application.NewSeatService(txManager, seatRepo, tripRepo, seatCache)
	authService := application.NewAuthService(employeeRepo, cfg.JWT)
	reportService := application.NewReportService(bookingRepo)
	ticketService := application.NewTicketService(bookingRepo)

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	authHandler := handler.NewAuthHandler(authService)
	bookingHandler := handler.NewBookingHandler(bookingService, ticketService)
	tripHandler := handler.NewTripHandler(tripService)
	seatHandler := handler.NewSeatHandler(seatService)
	reportHandler := handler.NewReportHandler(reportService)
	busHandler := handler.NewBusHandler(busRepo, busTypeRepo)
	routeHandler := handler.NewRouteHandler(routeRepo)
	employeeHandler := handler.NewEmployeeHandler(employeeRepo)
	ruleHandler := handler.NewRuleHandler(ruleRepo)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")

	// 認証不要
	v1.POST("/auth/login", authHandler.Login)

	// 認証必須
	auth := v1.Group("", custommiddleware.JWTAuth(authService))
	adminOnly := custommiddleware.RequireRoles(employee.RoleAdmin)
	staff := custommiddleware.RequireRoles(employee.RoleAdmin, employee.RoleEmployee)

	auth.POST("/auth/register", authHandler.Register, adminOnly)

	auth.POST("/bookings", bookingHandler.Create, staff)
	auth.GET("/bookings/:id", bookingHandler.GetByID, staff)
	auth.POST("/bookings/:id/cancel", bookingHandler.Cancel, staff)
	auth.GET("/bookings/:id/ticket", bookingHandler.Ticket, staff)

	auth.POST("/trips", tripHandler.Create, adminOnly)
	auth.GET("/trips", tripHandler.List, staff)
	auth.GET("/trips/search", tripHandler.Search, staff)
	auth.GET("/trips/:id", tripHandler.GetByID, staff)
	auth.PUT("/trips/:id/status", tripHandler.UpdateStatus, adminOnly)
	auth.GET("/trips/:trip_id/seats", seatHandler.ListByTrip, staff)
	auth.GET("/trips/:trip_id/seats/available", seatHandler.AvailableCount, staff)

	auth.POST("/seats", seatHandler.Create, adminOnly)
	auth.POST("/seats/bulk", seatHandler.CreateBulk, adminOnly)

	auth.GET("/reports/monthly", reportHandler.Monthly, adminOnly)
	auth.GET("/reports/month", reportHandler.Month, adminOnly)
	auth.GET("/reports/day", reportHandler.Day, adminOnly)

	auth.POST("/buses", busHandler.Create, adminOnly)
	auth.GET("/buses", busHandler.List, staff)
	auth.GET("/buses/:id", busHandler.GetByID, staff)
	auth.DELETE("/buses/:id", busHandler.Delete, adminOnly)
	auth.POST("/bus-types", busHandler.CreateType, adminOnly)
	auth.GET("/bus-types", busHandler.ListTypes, staff)

	auth.POST("/routes", routeHandler.Create, adminOnly)
	auth.GET("/routes", routeHandler.List, staff)
	auth.GET("/routes/:id", routeHandler.GetByID, staff)
	auth.DELETE("/routes/:id", routeHandler.Delete, adminOnly)
	auth.POST("/routes/:id/stops", routeHandler.AddStop, adminOnly)
	auth.GET("/routes/:id/stops", routeHandler.ListStops, staff)

	auth.GET("/employees", employeeHandler.List, adminOnly)
	auth.GET("/employees/:id", employeeHandler.GetByID, adminOnly)
	auth.DELETE("/employees/:id", employeeHandler.Delete, adminOnly)

	auth.GET("/rules/discounts", ruleHandler.ListAgeDiscounts, staff)
	auth.POST("/rules/discounts", ruleHandler.CreateAgeDiscount, adminOnly)
	auth.DELETE("/rules/discounts/:id", ruleHandler.DeleteAgeDiscount, adminOnly)
	auth.GET("/rules/cancellations", ruleHandler.ListCancellations, staff)
	auth.POST("/rules/cancellations", ruleHandler.CreateCancellation, adminOnly)
	auth.DELETE("/rules/cancellations/:id", ruleHandler.DeleteCancellation, adminOnly)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバーを起動しました", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
