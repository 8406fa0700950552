package metrics_test

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/sabouaram/corpc/metrics"
)

func TestCollectors_RegisterSucceedsOnce(t *testing.T) {
	c := metrics.New("corpc_test")
	reg := prometheus.NewRegistry()
	require.NoError(t, c.Register(reg))
}

func TestCollectors_RegisterFailsOnDuplicate(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.New("corpc_test_dup").Register(reg))

	dup := metrics.New("corpc_test_dup")
	err := dup.Register(reg)
	require.Error(t, err)
}

func TestCollectors_GaugesAndCountersAreUsable(t *testing.T) {
	c := metrics.New("corpc_test_usage")
	c.ConnectionsAccepted.Inc()
	c.ConnectionsActive.Set(3)
	c.RequestsHandled.WithLabelValues("ok").Inc()
	c.RequestDuration.WithLabelValues("echo").Observe(0.01)
	c.PoolSize.WithLabelValues("127.0.0.1:9").Set(5)
	c.PoolFreeCount.WithLabelValues("127.0.0.1:9").Set(2)
	c.PoolAcquireWait.WithLabelValues("127.0.0.1:9").Observe(0.001)

	require.Equal(t, float64(1), counterValue(t, c.ConnectionsAccepted))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	close(ch)

	var pb dto.Metric
	for metric := range ch {
		require.NoError(t, metric.Write(&pb))
	}
	return pb.GetCounter().GetValue()
}
