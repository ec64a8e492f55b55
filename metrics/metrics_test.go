package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/metrics"
)

func TestCollectorsRegisterAndObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New()
	c.MustRegister(reg)

	c.ObserveScan("Order", "status")
	c.ObserveIndexProbe("status_idx", "hit")
	c.ObserveIndexUpgrade("status_idx")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	var sawScan bool
	for _, f := range families {
		if f.GetName() == "memris_column_scans_total" {
			sawScan = true
		}
	}
	assert.True(t, sawScan)
}
