package e2e

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/api"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/application"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/config"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/employee"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-bus-ticket-booking/internal/pkg/metrics"
)

var (
	testServer *TestServer
	testDB     *sqlx.DB
)

// TestMain はE2Eテストのエントリポイント
// パッケージ全体で1回だけサーバーを構築することで高速化
func TestMain(m *testing.M) {
	cfg := config.Load()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		os.Exit(0) // DB未起動時はスキップ
	}
	testDB = db

	// Redisなしで起動（分散ロック・キャッシュは無効）
	mtr := metrics.NewWithRegistry(prometheus.NewRegistry())

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

	bookingService := application.NewBookingService(
		txManager, bookingRepo, seatRepo, tripRepo,
		customerRepo, employeeRepo, ruleRepo,
		nil, nil, mtr,
	)
	tripService := application.NewTripService(txManager, tripRepo, busRepo, routeRepo, seatRepo)
	seatService := application.NewSeatService(txManager, seatRepo, tripRepo, nil)
	authService := application.NewAuthService(employeeRepo, cfg.JWT)
	reportService := application.NewReportService(bookingRepo)
	ticketService := application.NewTicketService(bookingRepo)

	healthHandler := handler.NewHealthHandler()
	authHandler := handler.NewAuthHandler(authService)
	bookingHandler := handler.NewBookingHandler(bookingService, ticketService)
	tripHandler := handler.NewTripHandler(tripService)
	seatHandler := handler.NewSeatHandler(seatService)
	reportHandler := handler.NewReportHandler(reportService)
	busHandler := handler.NewBusHandler(busRepo, busTypeRepo)
	routeHandler := handler.NewRouteHandler(routeRepo)
	ruleHandler := handler.NewRuleHandler(ruleRepo)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)

	e.GET("/health", healthHandler.Check)

	v1 := e.Group("/api/v1")
	v1.POST("/auth/login", authHandler.Login)

	auth := v1.Group("", middleware.JWTAuth(authService))
	adminOnly := middleware.RequireRoles(employee.RoleAdmin)
	staff := middleware.RequireRoles(employee.RoleAdmin, employee.RoleEmployee)

	auth.POST("/auth/register", authHandler.Register, adminOnly)

	auth.POST("/bookings", bookingHandler.Create, staff)
	auth.GET("/bookings/:id", bookingHandler.GetByID, staff)
	auth.POST("/bookings/:id/cancel", bookingHandler.Cancel, staff)
	auth.GET("/bookings/:id/ticket", bookingHandler.Ticket, staff)

	auth.POST("/trips", tripHandler.Create, adminOnly)
	auth.GET("/trips", tripHandler.List, staff)
	auth.GET("/trips/search", tripHandler.Search, staff)
	auth.GET("/trips/:id", tripHandler.GetByID, staff)
	auth.GET("/trips/:trip_id/seats", seatHandler.ListByTrip, staff)
	auth.GET("/trips/:trip_id/seats/available", seatHandler.AvailableCount, staff)

	auth.GET("/reports/monthly", reportHandler.Monthly, adminOnly)
	auth.GET("/reports/month", reportHandler.Month, adminOnly)
	auth.GET("/reports/day", reportHandler.Day, adminOnly)

	auth.POST("/buses", busHandler.Create, adminOnly)
	auth.POST("/bus-types", busHandler.CreateType, adminOnly)
	auth.POST("/routes", routeHandler.Create, adminOnly)
	auth.GET("/rules/discounts", ruleHandler.ListAgeDiscounts, staff)
	auth.GET("/rules/cancellations", ruleHandler.ListCancellations, staff)

	testServer = &TestServer{Echo: e}

	code := m.Run()

	cleanupTables()
	db.Close()

	os.Exit(code)
}

// cleanupTables は予約系テーブルをクリーンアップ
func cleanupTables() {
	testDB.Exec(`TRUNCATE TABLE booking_lines, bookings, customers, seats, trips,
		route_stops, routes, buses, bus_types, employees,
		age_discount_rules, cancellation_rules RESTART IDENTITY CASCADE`)
}

// seedReferenceData は料金・違約金ルールと管理者を投入する
func seedReferenceData(t *testing.T) {
	t.Helper()

	_, err := testDB.Exec(`INSERT INTO age_discount_rules (min_age, max_age, discount_percentage, description) VALUES
		(0, 4, 100.00, '幼児無料'),
		(5, 12, 50.00, '小児半額'),
		(13, 50, 0.00, '大人'),
		(51, 150, 30.00, 'シニア割引')`)
	if err != nil {
		t.Fatalf("割引ルール投入に失敗: %v", err)
	}

	_, err = testDB.Exec(`INSERT INTO cancellation_rules (days_before_departure, penalty_percentage, description) VALUES
		(2, 0.00, '出発2日前まで無料'),
		(1, 15.00, '出発前日は15%'),
		(0, 30.00, '出発当日は30%')`)
	if err != nil {
		t.Fatalf("違約金ルール投入に失敗: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("パスワードハッシュ化に失敗: %v", err)
	}
	_, err = testDB.Exec(`INSERT INTO employees (username, password_hash, name, role) VALUES
		('admin', $1, 'Administrator', 'admin')`, string(hash))
	if err != nil {
		t.Fatalf("管理者投入に失敗: %v", err)
	}
}

// getTestServer は共有サーバーを取得（テスト前にテーブルをクリーンアップして再シード）
func getTestServer(t *testing.T) *TestServer {
	t.Helper()
	if testServer == nil {
		t.Skip("テスト環境が利用できません")
	}
	cleanupTables()
	seedReferenceData(t)
	return testServer
}
