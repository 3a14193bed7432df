package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trellobot/internal/models"
)

func TestInit_MigratesModels(t *testing.T) {
	db := Init(filepath.Join(t.TempDir(), "test.db"))

	require.NoError(t, db.Create(&models.Webhook{ID: "wh1", BoardID: "b1"}).Error)
	require.NoError(t, db.Create(&models.Delivery{ActionID: "a1", ActionType: "createCard", ReceivedAt: time.Now()}).Error)

	var webhook models.Webhook
	require.NoError(t, db.First(&webhook, "id = ?", "wh1").Error)
	assert.Equal(t, "b1", webhook.BoardID)

	var count int64
	db.Model(&models.Delivery{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
