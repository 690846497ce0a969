package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

func TestDBPlugin_RecordsQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	m := NewMetrics()
	core, logs := observer.New(zap.WarnLevel)
	plugin := NewDBPlugin(DBPluginConfig{SlowQueryThresh: time.Nanosecond}, m, zap.New(core))
	require.NoError(t, db.Use(plugin))
	assert.Equal(t, "seafresh:telemetry", plugin.Name())

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).AutoMigrate(&widget{}))
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "crab"}).Error)

	var got []widget
	require.NoError(t, db.WithContext(ctx).Find(&got).Error)
	require.Len(t, got, 1)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(m.dbQueryDuration), 2)
	assert.NotEmpty(t, logs.FilterMessage("Slow query").All())
}
