package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/rider-roster/internal/api/handlers"
	"github.com/gocomet/rider-roster/internal/config"
	"github.com/gocomet/rider-roster/internal/domain/rider"
	"github.com/gocomet/rider-roster/internal/persistence"
	"github.com/gocomet/rider-roster/internal/repository/local"
	"github.com/gocomet/rider-roster/internal/service/roster"
	"github.com/gocomet/rider-roster/pkg/logger"
)

const testBodyLimit = 64 << 10

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

type listBody struct {
	Riders []rider.Rider `json:"riders"`
	Total  int64         `json:"total"`
}

func newRouter(t *testing.T, primary persistence.Connector, timeout time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	sel := persistence.New(persistence.Options{Primary: primary, Logger: log})
	sel.Start(context.Background())
	<-sel.Ready()

	h := handlers.NewHandlers(roster.NewService(sel, log, nil), sel, log, "test")

	r := gin.New()
	SetupRoutes(r, h, Options{
		Logger:       log,
		Registry:     prometheus.NewRegistry(),
		Availability: sel,
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Origin", "Content-Type"},
		},
		BodyLimit:      testBodyLimit,
		RequestTimeout: timeout,
		RequestLogging: true,
	})
	return r
}

func setupRouter(t *testing.T) (*gin.Engine, *local.Store) {
	store := local.New()
	r := newRouter(t, func(ctx context.Context) (rider.Store, error) { return store, nil }, 5*time.Second)
	return r, store
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func payload(name, email, nric string) map[string]interface{} {
	return map[string]interface{}{
		"name":     name,
		"email":    email,
		"position": "Rider",
		"nric":     nric,
		"phone":    "12345678",
		"vehicle":  "Motorcycle",
		"license":  "ABC123",
		"status":   "active",
	}
}

func TestRiderScenario(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/riders", payload("Test Rider", "test@rider.com", "S0000000T"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]interface{}](t, w)
	assert.Equal(t, "Test Rider", created["name"])
	assert.NotEmpty(t, created["_id"])
	assert.Equal(t, rider.DefaultImage, created["image"])
	assert.Equal(t, 4.5, created["rating"])
	assert.EqualValues(t, 0, created["ridesCompleted"])
	assert.Contains(t, created, "createdAt")
	assert.Contains(t, created, "updatedAt")

	w = doJSON(r, http.MethodGet, "/api/riders?search=Test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[listBody](t, w)
	require.NotEmpty(t, list.Riders)
	assert.Contains(t, list.Riders[0].Name, "Test")
}

func TestCreateRider_Validation(t *testing.T) {
	r, store := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/riders", map[string]interface{}{"name": "Test Rider"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "Validation failed", body.Error)
	assert.Equal(t, []string{
		"Valid email is required",
		"Position must be at least 2 characters long",
		"NRIC must be at least 5 characters long",
		"Phone number must be at least 8 characters long",
		"Vehicle must be Motorcycle, Bicycle, or Car",
		"License must be at least 3 characters long",
	}, body.Details)

	p := payload("Test Rider", "test@rider.com", "S0000000T")
	p["rating"] = 5.5
	w = doJSON(r, http.MethodPost, "/api/riders", p)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Rating must be between 0 and 5"}, decode[errorBody](t, w).Details)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateRider_Duplicates(t *testing.T) {
	r, store := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/riders", payload("Test Rider", "test@rider.com", "S0000000T"))
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name  string
		email string
		nric  string
	}{
		{"same email different case", "TEST@Rider.com", "S1111111A"},
		{"same nric", "other@rider.com", "S0000000T"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/riders", payload("Other Rider", tt.email, tt.nric))
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decode[errorBody](t, w)
			assert.Equal(t, "Rider already exists", body.Error)
			assert.Equal(t, []string{"Email or NRIC already registered"}, body.Details)
		})
	}

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListRiders_Pagination(t *testing.T) {
	r, _ := setupRouter(t)

	const n = 7
	for i := 0; i < n; i++ {
		w := doJSON(r, http.MethodPost, "/api/riders",
			payload(fmt.Sprintf("Rider %02d", i), fmt.Sprintf("rider%d@example.com", i), fmt.Sprintf("S000000%dX", i)))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	tests := []struct {
		query     string
		wantCount int
	}{
		{"", 7},
		{"?limit=3&page=1", 3},
		{"?limit=3&page=3", 1},
		{"?limit=3&page=4", 0},
		{"?limit=abc&page=-2", 7},
		{"?status=all&limit=5", 5},
		{"?page=9223372036854775807&limit=2", 0},
		{"?page=3&limit=4611686018427387904", 0},
		{"?page=1&limit=9223372036854775807", 7},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := doJSON(r, http.MethodGet, "/api/riders"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			list := decode[listBody](t, w)
			assert.Len(t, list.Riders, tt.wantCount)
			assert.Equal(t, int64(n), list.Total)
		})
	}

	w := doJSON(r, http.MethodGet, "/api/riders?limit=2", nil)
	list := decode[listBody](t, w)
	assert.Equal(t, "Rider 06", list.Riders[0].Name)
	assert.Equal(t, "Rider 05", list.Riders[1].Name)

	w = doJSON(r, http.MethodGet, "/api/riders?limit=0&page=0", nil)
	assert.Contains(t, w.Body.String(), `"riders":[`)
}

func TestListRiders_SearchAndStatus(t *testing.T) {
	r, _ := setupRouter(t)

	active := payload("Test Rider", "test@rider.com", "S0000000T")
	inactive := payload("Mike Johnson", "mike@example.com", "S2345678C")
	inactive["status"] = "inactive"
	for _, p := range []map[string]interface{}{active, inactive} {
		require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/riders", p).Code)
	}

	w := doJSON(r, http.MethodGet, "/api/riders?search=test", nil)
	list := decode[listBody](t, w)
	require.Len(t, list.Riders, 1)
	assert.Equal(t, "Test Rider", list.Riders[0].Name)

	w = doJSON(r, http.MethodGet, "/api/riders?status=inactive", nil)
	list = decode[listBody](t, w)
	require.Len(t, list.Riders, 1)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, "Mike Johnson", list.Riders[0].Name)

	w = doJSON(r, http.MethodGet, "/api/riders?search=.*", nil)
	assert.Equal(t, int64(0), decode[listBody](t, w).Total)
}

func TestUpdateRider(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/riders", payload("Test Rider", "test@rider.com", "S0000000T"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[rider.Rider](t, w).ID

	other := payload("Other Rider", "other@rider.com", "S1111111A")
	require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/riders", other).Code)

	t.Run("own email and nric", func(t *testing.T) {
		p := payload("Test Rider Updated", "test@rider.com", "S0000000T")
		p["ridesCompleted"] = 12
		w := doJSON(r, http.MethodPut, "/api/riders/"+id, p)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decode[rider.Rider](t, w)
		assert.Equal(t, "Test Rider Updated", got.Name)
		assert.Equal(t, 12, got.RidesCompleted)
		assert.Equal(t, 4.5, got.Rating)
	})

	t.Run("conflict with another rider", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/api/riders/"+id, payload("Test Rider", "other@rider.com", "S0000000T"))
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode[errorBody](t, w)
		assert.Equal(t, "Duplicate field", body.Error)
		assert.Equal(t, []string{"Email or NRIC already registered by another rider"}, body.Details)
	})

	t.Run("validation", func(t *testing.T) {
		p := payload("Test Rider", "test@rider.com", "S0000000T")
		p["ridesCompleted"] = -1
		w := doJSON(r, http.MethodPut, "/api/riders/"+id, p)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"Rides completed cannot be negative"}, decode[errorBody](t, w).Details)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/api/riders/507f1f77bcf86cd799439011", payload("Test Rider", "new@rider.com", "S9999999Z"))
		require.Equal(t, http.StatusNotFound, w.Code)
		body := decode[errorBody](t, w)
		assert.Equal(t, "Rider not found", body.Error)
		assert.Equal(t, []string{}, body.Details)
	})
}

func TestDeleteRider(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/riders", payload("Test Rider", "test@rider.com", "S0000000T"))
	id := decode[rider.Rider](t, w).ID

	w = doJSON(r, http.MethodDelete, "/api/riders/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Rider deleted successfully"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/api/riders/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/api/riders/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/api/riders/not-an-id", nil).Code)
}

func TestMalformedBodies(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/riders", `{"name": "Test Rider",`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "Invalid JSON", body.Error)
	assert.Equal(t, []string{"The request body contains invalid JSON format."}, body.Details)

	valid, err := json.Marshal(payload("Test Rider", "test@rider.com", "S0000000T"))
	require.NoError(t, err)
	w = doJSON(r, http.MethodPost, "/api/riders", string(valid)+" garbage")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON", decode[errorBody](t, w).Error)
	assert.Equal(t, int64(0), decode[listBody](t, doJSON(r, http.MethodGet, "/api/riders", nil)).Total)

	p := payload("Test Rider", "test@rider.com", "S0000000T")
	p["image"] = "data:image/png;base64," + strings.Repeat("A", testBodyLimit)
	w = doJSON(r, http.MethodPost, "/api/riders", p)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	body = decode[errorBody](t, w)
	assert.Equal(t, "Request entity too large", body.Error)
	assert.Equal(t, []string{"The image file is too large. Please use a smaller image or compress it."}, body.Details)
}

func TestStoreUnavailable(t *testing.T) {
	r := newRouter(t, func(ctx context.Context) (rider.Store, error) {
		return nil, fmt.Errorf("dial tcp: connection refused")
	}, time.Second)

	w := doJSON(r, http.MethodGet, "/api/riders", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Service unavailable", decode[errorBody](t, w).Error)

	w = doJSON(r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]string](t, w)
	assert.Equal(t, "degraded", health["status"])
	assert.Equal(t, "unavailable", health["mode"])
	assert.Equal(t, "none", health["store"])
}

// blockingStore waits for the request deadline on every list call
type blockingStore struct {
	*local.Store
}

func (b blockingStore) List(ctx context.Context, q rider.ListQuery) (*rider.ListResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// panickingStore panics on every lookup
type panickingStore struct {
	*local.Store
}

func (p panickingStore) GetByID(ctx context.Context, id string) (*rider.Rider, error) {
	panic("corrupt document")
}

func TestRequestTimeout(t *testing.T) {
	r := newRouter(t, func(ctx context.Context) (rider.Store, error) {
		return blockingStore{local.New()}, nil
	}, 20*time.Millisecond)

	w := doJSON(r, http.MethodGet, "/api/riders", nil)
	require.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Equal(t, "Request timeout", decode[errorBody](t, w).Error)
}

func TestPanicRecovery(t *testing.T) {
	r := newRouter(t, func(ctx context.Context) (rider.Store, error) {
		return panickingStore{local.New()}, nil
	}, time.Second)

	w := doJSON(r, http.MethodGet, "/api/riders/abc", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, []string{"An unexpected error occurred. Please try again."}, body.Details)
	assert.NotContains(t, w.Body.String(), "corrupt document")
}

func TestHealthMetricsAndCORS(t *testing.T) {
	r, _ := setupRouter(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := doJSON(r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		health := decode[map[string]string](t, w)
		assert.Equal(t, "ok", health["status"])
		assert.Equal(t, "primary", health["mode"])
		assert.Equal(t, "local", health["store"])
		assert.Equal(t, "test", health["env"])
	}

	doJSON(r, http.MethodGet, "/api/riders", nil)
	w := doJSON(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `rider_roster_http_requests_total{method="GET",route="/api/riders",status="200"} 1`)

	req := httptest.NewRequest(http.MethodOptions, "/api/riders", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = doJSON(r, http.MethodGet, "/api/riders", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
