package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
	"github.com/Isba24ha/barliberty-sub000/internal/services"
)

func newTableTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	handler := NewTableHandler(services.NewTableService(repositories.NewTableRepository(db), db))

	r := gin.New()
	r.GET("/tables", handler.GetTables)
	r.POST("/tables", handler.CreateTable)
	r.PUT("/tables/:id/status", handler.SetTableStatus)
	return r, mock
}

func TestGetTablesHandler(t *testing.T) {
	r, mock := newTableTestRouter(t)

	now := time.Now()
	mock.ExpectQuery(`FROM venue_tables ORDER BY number`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "capacity", "status", "current_order_id", "created_at", "updated_at"}).
			AddRow(int64(1), 1, 4, models.TableFree, nil, now, now).
			AddRow(int64(2), 2, 6, models.TableOccupied, int64(9), now, now))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tables", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"occupied"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTableHandlerDuplicateNumber(t *testing.T) {
	r, mock := newTableTestRouter(t)

	mock.ExpectQuery(`INSERT INTO venue_tables`).
		WithArgs(5, 4, models.TableFree, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "venue_tables_number_key"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tables", strings.NewReader(`{"number":5,"capacity":4}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTableHandlerValidation(t *testing.T) {
	r, _ := newTableTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tables", strings.NewReader(`{"number":0,"capacity":4}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetTableStatusHandlerOpenOrderConflict(t *testing.T) {
	r, mock := newTableTestRouter(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM venue_tables WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "capacity", "status", "current_order_id", "created_at", "updated_at"}).
			AddRow(int64(2), 2, 6, models.TableOccupied, int64(9), now, now))
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/tables/2/status", strings.NewReader(`{"status":"free"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
