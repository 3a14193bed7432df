package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trellobot/internal/models"
)

const createCardPayload = `{
  "action": {
    "id": "action1",
    "type": "createCard",
    "date": "2024-05-01T10:00:00.000Z",
    "memberCreator": {"id": "m1", "fullName": "Ada Lovelace"},
    "data": {
      "card": {"id": "c1", "name": "Ship the thing", "shortLink": "abc123"},
      "board": {"id": "b1", "name": "Roadmap"},
      "list": {"id": "l1", "name": "Doing"}
    }
  },
  "model": {"id": "b1", "name": "Roadmap"}
}`

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Webhook{}, &models.Delivery{}))

	handler := &Handler{DB: db, Started: time.Now()}

	router := gin.New()
	router.POST("/webhook", handler.TrelloWebhookHandler)
	router.HEAD("/webhook", handler.TrelloWebhookHandler)
	router.GET("/webhook", handler.TrelloWebhookHandler)
	router.GET("/health", handler.HealthCheckHandler)
	router.GET("/deliveries", handler.ListDeliveriesHandler)

	return router, db
}

func TestWebhook_RecordsDelivery(t *testing.T) {
	router, db := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(createCardPayload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "recorded", body["status"])

	var delivery models.Delivery
	require.NoError(t, db.First(&delivery).Error)
	assert.Equal(t, "action1", delivery.ActionID)
	assert.Equal(t, "createCard", delivery.ActionType)
	assert.Equal(t, "b1", delivery.BoardID)
	assert.Equal(t, "Roadmap", delivery.BoardName)
	assert.Equal(t, "c1", delivery.CardID)
	assert.Equal(t, "Ship the thing", delivery.CardName)
	assert.Equal(t, "Ada Lovelace", delivery.MemberName)
	assert.Equal(t, len(createCardPayload), delivery.Bytes)
}

func TestWebhook_VerificationProbe(t *testing.T) {
	router, db := newTestRouter(t)

	// Trello sends HEAD and an empty POST when a webhook is created; both
	// must get 200 and record nothing
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/webhook", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")

	var count int64
	db.Model(&models.Delivery{}).Count(&count)
	assert.Zero(t, count)
}

func TestWebhook_MalformedBody(t *testing.T) {
	router, db := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")

	var count int64
	db.Model(&models.Delivery{}).Count(&count)
	assert.Zero(t, count)
}

func TestHealth(t *testing.T) {
	router, db := newTestRouter(t)

	require.NoError(t, db.Create(&models.Webhook{ID: "wh1", BoardID: "b1"}).Error)
	require.NoError(t, db.Create(&models.Delivery{ActionID: "a1", ReceivedAt: time.Now()}).Error)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["webhooks"])
	assert.EqualValues(t, 1, body["deliveries"])
}

func TestListDeliveries(t *testing.T) {
	router, db := newTestRouter(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&models.Delivery{
			ActionType: "createCard",
			ReceivedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/deliveries?limit=3", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var deliveries []models.Delivery
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deliveries))
	require.Len(t, deliveries, 3)
	// newest first
	assert.True(t, deliveries[0].ReceivedAt.After(deliveries[1].ReceivedAt))
}

func TestListDeliveries_BadLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, q := range []string{"limit=0", "limit=-1", "limit=abc"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/deliveries?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}
