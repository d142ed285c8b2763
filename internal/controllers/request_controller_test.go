package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ride_pool/internal/config"
)

// mockDB swaps config.DB for a sqlmock-backed gorm connection so handler
// transactions can be asserted statement by statement.
func mockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	old := config.DB
	config.DB = gormDB
	t.Cleanup(func() {
		config.DB = old
		sqlDB.Close()
	})
	return mock
}

func jsonContext(t *testing.T, userID uint, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", float64(userID))
	return c, w
}

// Approving a request must read the ride and request rows with FOR UPDATE and
// decrement seats with a guarded in-database expression, so two concurrent
// resolutions serialize instead of both committing an absolute seat count.
func TestHandleRequest_ApproveLocksAndDecrementsInPlace(t *testing.T) {
	mock := mockDB(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "rides" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "driver_id", "available_seats"}).
			AddRow(10, 1, 1))
	mock.ExpectQuery(`SELECT \* FROM "passengers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ride_id", "user_id"}))
	mock.ExpectQuery(`SELECT \* FROM "customer_requests" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ride_id", "user_id", "phone", "location", "status"}).
			AddRow(77, 10, 2, "+254700000001", "Westlands", "pending"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "Wanjiru"))
	mock.ExpectQuery(`INSERT INTO "passengers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "rides" SET "available_seats"=available_seats - .* AND available_seats > 0`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "customer_requests" SET "status"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "customer_requests" SET "deleted_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, w := jsonContext(t, 1, http.MethodPost, "/rides/handle-request",
		`{"rideId":10,"action":"approve","passengerId":2}`)
	HandleRequest(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available_seats":0`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// When the guarded decrement matches no row, another booking took the last
// seat between our read and write; the whole transaction rolls back and the
// caller gets a conflict instead of a phantom seat.
func TestBookRide_LastSeatTakenConcurrently(t *testing.T) {
	mock := mockDB(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "rides" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "driver_id", "available_seats"}).
			AddRow(10, 1, 1))
	mock.ExpectQuery(`SELECT \* FROM "customer_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ride_id", "user_id", "status"}))
	mock.ExpectQuery(`SELECT \* FROM "passengers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ride_id", "user_id"}))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone"}).
			AddRow(2, "Wanjiru", "+254711111111"))
	mock.ExpectQuery(`INSERT INTO "passengers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "rides" SET "available_seats"=available_seats - `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c, w := jsonContext(t, 2, http.MethodPost, "/rides/book/10", `{}`)
	c.Params = gin.Params{{Key: "id", Value: "10"}}
	BookRide(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
