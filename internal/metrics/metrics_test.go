package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors_Register(t *testing.T) {
	c := New()
	registry := prometheus.NewRegistry()
	require.NoError(t, c.Register(registry))
	require.Error(t, c.Register(registry), "double registration is rejected")
}

func TestCollectors_Observe(t *testing.T) {
	c := New()
	c.ObserveAction("RunTarget", "passed", 10*time.Millisecond)
	c.ObserveAction("RunTarget", "passed", 20*time.Millisecond)
	c.ObserveAction("RunTarget", "failed", time.Millisecond)
	c.SetProjectsLoaded(3)
	c.DiscoveryLookup(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ActionsTotal.WithLabelValues("RunTarget", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ActionsTotal.WithLabelValues("RunTarget", "failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.ProjectsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DiscoveryCache.WithLabelValues("hit")))
}

func TestCollectors_NilIsNoop(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() {
		c.ObserveAction("RunTarget", "passed", time.Second)
		c.ActionStarted()
		c.ActionFinished()
		c.ObserveRun(time.Second)
		c.SetProjectsLoaded(1)
		c.DiscoveryLookup(false)
	})
}
