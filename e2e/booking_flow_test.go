package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo *echo.Echo
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// loginAdmin は管理者でログインし認証ヘッダーを返す
func loginAdmin(t *testing.T, server *TestServer) map[string]string {
	t.Helper()
	rec := server.Request("POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "admin",
		"password": "admin1234",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, "ログイン失敗: %s", rec.Body.String())

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return map[string]string{"Authorization": "Bearer " + resp["token"].(string)}
}

// setupTrip は車種・バス・路線・便を作成し、便IDと座席ID一覧を返す
// 基本運賃50.00 × 倍率1.00 の便を作る
func setupTrip(t *testing.T, server *TestServer, auth map[string]string, departure time.Time) (string, []string) {
	t.Helper()

	rec := server.Request("POST", "/api/v1/bus-types", map[string]interface{}{
		"type_name": "Express", "price_multiplier": "1.00",
	}, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var typeResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &typeResp)

	rec = server.Request("POST", "/api/v1/buses", map[string]interface{}{
		"bus_code": "BUS-001", "bus_number": "品川200か1234",
		"type_id": typeResp["id"], "total_seats": 5,
	}, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var busResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &busResp)

	rec = server.Request("POST", "/api/v1/routes", map[string]interface{}{
		"route_code": "TYO-OSA", "start_location": "東京", "end_location": "大阪",
		"distance": "500", "base_price": "50.00",
	}, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var routeResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &routeResp)

	rec = server.Request("POST", "/api/v1/trips", map[string]interface{}{
		"bus_id": busResp["id"], "route_id": routeResp["id"],
		"departure_time": departure.Format(time.RFC3339),
	}, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tripResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &tripResp)
	tripID := tripResp["id"].(string)

	// 便作成時にバスの座席数分が自動生成される
	rec = server.Request("GET", fmt.Sprintf("/api/v1/trips/%s/seats", tripID), nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var seats []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &seats)
	require.Len(t, seats, 5)

	seatIDs := make([]string, len(seats))
	for i, s := range seats {
		seatIDs[i] = s["id"].(string)
	}
	return tripID, seatIDs
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request("GET", "/health", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

// TestE2E_CompleteBookingJourney は予約からキャンセルまでの完全なフローをテスト
func TestE2E_CompleteBookingJourney(t *testing.T) {
	server := getTestServer(t)
	auth := loginAdmin(t, server)

	tripID, seatIDs := setupTrip(t, server, auth, time.Now().Add(80*time.Hour))
	var bookingID string

	// 1. 空席数確認
	t.Run("空席数確認", func(t *testing.T) {
		rec := server.Request("GET", fmt.Sprintf("/api/v1/trips/%s/seats/available", tripID), nil, auth)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, float64(5), resp["available_seats"])
	})

	// 2. 予約作成（大人1名）
	t.Run("予約作成", func(t *testing.T) {
		body := map[string]interface{}{
			"lines": []map[string]interface{}{
				{
					"seat_id": seatIDs[0],
					"customer": map[string]interface{}{
						"name":          "山田太郎",
						"date_of_birth": "1990-04-01",
					},
				},
			},
		}
		rec := server.Request("POST", "/api/v1/bookings", body, auth)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		bookingID = resp["id"].(string)
		// 基本運賃50 × 倍率1.0 × 割引0% = 50.00、税10% = 5.00
		assert.Equal(t, "50.00", resp["total_amount"])
		assert.Equal(t, "5.00", resp["total_tax"])
		assert.Equal(t, "confirmed", resp["status"])
	})

	// 3. 空席数が減っていることを確認
	t.Run("空席数減少確認", func(t *testing.T) {
		rec := server.Request("GET", fmt.Sprintf("/api/v1/trips/%s/seats/available", tripID), nil, auth)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, float64(4), resp["available_seats"])
	})

	// 4. 予約詳細確認
	t.Run("予約詳細確認", func(t *testing.T) {
		rec := server.Request("GET", "/api/v1/bookings/"+bookingID, nil, auth)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, bookingID, resp["id"])
	})

	// 5. 乗車券PDF取得
	t.Run("乗車券PDF取得", func(t *testing.T) {
		rec := server.Request("GET", fmt.Sprintf("/api/v1/bookings/%s/ticket", bookingID), nil, auth)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	})

	// 6. キャンセル（出発3日前 → 違約金0%で全額払い戻し）
	t.Run("キャンセル", func(t *testing.T) {
		rec := server.Request("POST", fmt.Sprintf("/api/v1/bookings/%s/cancel", bookingID), nil, auth)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, "cancelled", resp["status"])
		assert.Equal(t, "50.00", resp["refund_amount"])
	})

	// 7. 座席が解放されている
	t.Run("空席数回復確認", func(t *testing.T) {
		rec := server.Request("GET", fmt.Sprintf("/api/v1/trips/%s/seats/available", tripID), nil, auth)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, float64(5), resp["available_seats"])
	})
}

// TestE2E_SeatConflict は座席の二重予約をテスト
func TestE2E_SeatConflict(t *testing.T) {
	server := getTestServer(t)
	auth := loginAdmin(t, server)

	_, seatIDs := setupTrip(t, server, auth, time.Now().Add(48*time.Hour))

	book := func() *httptest.ResponseRecorder {
		return server.Request("POST", "/api/v1/bookings", map[string]interface{}{
			"lines": []map[string]interface{}{
				{
					"seat_id": seatIDs[0],
					"customer": map[string]interface{}{
						"name":          "佐藤花子",
						"date_of_birth": "1985-10-20",
					},
				},
			},
		}, auth)
	}

	t.Run("1回目の予約は成功", func(t *testing.T) {
		rec := book()
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("同じ座席の2回目の予約は409", func(t *testing.T) {
		rec := book()
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	})
}

// TestE2E_AgeDiscount は年齢帯割引の適用をテスト
func TestE2E_AgeDiscount(t *testing.T) {
	server := getTestServer(t)
	auth := loginAdmin(t, server)

	_, seatIDs := setupTrip(t, server, auth, time.Now().Add(48*time.Hour))

	// 大人1名 + 小児1名（半額）
	childDOB := time.Now().AddDate(-10, 0, 0).Format("2006-01-02")
	body := map[string]interface{}{
		"lines": []map[string]interface{}{
			{
				"seat_id": seatIDs[0],
				"customer": map[string]interface{}{
					"name": "山田太郎", "date_of_birth": "1990-04-01",
				},
			},
			{
				"seat_id": seatIDs[1],
				"customer": map[string]interface{}{
					"name": "山田次郎", "date_of_birth": childDOB,
				},
			},
		},
	}

	rec := server.Request("POST", "/api/v1/bookings", body, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	// 大人50.00 + 小児25.00 = 75.00、税 7.50
	assert.Equal(t, "75.00", resp["total_amount"])
	assert.Equal(t, "7.50", resp["total_tax"])
}

// TestE2E_CancelPenalty は出発前日のキャンセル違約金をテスト
func TestE2E_CancelPenalty(t *testing.T) {
	server := getTestServer(t)
	auth := loginAdmin(t, server)

	// 出発まで30時間 → 1日前 → 違約金15%
	_, seatIDs := setupTrip(t, server, auth, time.Now().Add(30*time.Hour))

	rec := server.Request("POST", "/api/v1/bookings", map[string]interface{}{
		"lines": []map[string]interface{}{
			{
				"seat_id": seatIDs[0],
				"customer": map[string]interface{}{
					"name": "山田太郎", "date_of_birth": "1990-04-01",
				},
			},
		},
	}, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bookResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &bookResp)

	rec = server.Request("POST", fmt.Sprintf("/api/v1/bookings/%s/cancel", bookResp["id"]), nil, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	// 50.00 × (1 - 0.15) = 42.50
	assert.Equal(t, "42.50", resp["refund_amount"])
}

// TestE2E_AuthRequired は認証なしのアクセスをテスト
func TestE2E_AuthRequired(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request("GET", "/api/v1/trips", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = server.Request("POST", "/api/v1/bookings", map[string]interface{}{}, map[string]string{
		"Authorization": "Bearer invalid-token",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
