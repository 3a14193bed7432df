package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"trellobot/internal/models"
)

type Handler struct {
	DB      *gorm.DB
	Started time.Time
}

func (h *Handler) TrelloWebhookHandler(c *gin.Context) {
	// Trello can send HEAD, GET, and POST requests to the webhook URL
	if c.Request.Method != http.MethodPost {
		log.Println("Received non-POST request to webhook endpoint; responding with 200 OK")
		c.Status(http.StatusOK)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("Error reading webhook body: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read request body"})
		return
	}

	var payload models.TrelloWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Action.Type == "" {
		// Trello sends an empty POST to verify a freshly created webhook;
		// answer 200 so the registration succeeds
		log.Printf("Ignoring webhook POST without a parseable action (%d bytes)\n", len(body))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	action := payload.Action
	delivery := models.Delivery{
		ActionID:   action.ID,
		ActionType: action.Type,
		BoardID:    action.Data.Board.ID,
		BoardName:  action.Data.Board.Name,
		CardID:     action.Data.Card.ID,
		CardName:   action.Data.Card.Name,
		MemberName: action.MemberCreator.FullName,
		Bytes:      len(body),
		ReceivedAt: time.Now().UTC(),
	}

	if result := h.DB.Create(&delivery); result.Error != nil {
		log.Printf("Error recording delivery: %v\n", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record delivery"})
		return
	}

	log.Printf("Recorded Trello delivery: action type=%s, card ID=%s\n", action.Type, action.Data.Card.ID)
	c.JSON(http.StatusOK, gin.H{"status": "recorded", "delivery_id": delivery.ID})
}

func (h *Handler) HealthCheckHandler(c *gin.Context) {
	var webhooks, deliveries int64
	h.DB.Model(&models.Webhook{}).Count(&webhooks)
	h.DB.Model(&models.Delivery{}).Count(&deliveries)

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"uptime":     time.Since(h.Started).Round(time.Second).String(),
		"webhooks":   webhooks,
		"deliveries": deliveries,
	})
}

func (h *Handler) ListDeliveriesHandler(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	var deliveries []models.Delivery
	if result := h.DB.Order("received_at desc").Limit(limit).Find(&deliveries); result.Error != nil {
		log.Printf("Error listing deliveries: %v\n", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list deliveries"})
		return
	}

	c.JSON(http.StatusOK, deliveries)
}
