package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsUsesPrefix(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("shop", reg, reg)

	m.RecordOrderCreated(3)
	m.RecordCatalogOperation("product", "create")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["shop_orders_created_total"])
	assert.True(t, names["shop_order_lines_total"])
	assert.True(t, names["shop_catalog_operations_total"])
}

func TestRecordOrderCreated(t *testing.T) {
	m := NewTestMetrics()

	m.RecordOrderCreated(2)
	m.RecordOrderCreated(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersCreatedCounter))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OrderLinesCounter))
}

func TestTrackDBOperation(t *testing.T) {
	m := NewTestMetrics()

	m.TrackDBOperation("query")(time.Now())

	assert.Equal(t, 1, testutil.CollectAndCount(m.DbOperationDuration))
}
