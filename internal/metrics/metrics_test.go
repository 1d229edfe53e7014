package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(b)
}

func TestMetrics(t *testing.T) {
	assert := require.New(t)

	m := New()
	m.Analysis("group", true)
	m.Analysis("group", true)
	m.Analysis("suggest", false)
	m.Group(43.44, 2)
	m.CatalogChannels(72)
	m.Reload(true)

	body := scrape(t, m)
	assert.Contains(body, `vtxd_analyses_total{kind="group",outcome="ok"} 2`)
	assert.Contains(body, `vtxd_analyses_total{kind="suggest",outcome="error"} 1`)
	assert.Contains(body, "vtxd_critical_pairs_total 2")
	assert.Contains(body, "vtxd_catalog_channels 72")
	assert.Contains(body, "vtxd_group_max_interference_percent_count 1")
	assert.Contains(body, `vtxd_reloads_total{outcome="ok"} 1`)
	assert.Contains(body, "go_goroutines")
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.CatalogChannels(5)
	b.CatalogChannels(9)

	require.Contains(t, scrape(t, a), "vtxd_catalog_channels 5")
	require.Contains(t, scrape(t, b), "vtxd_catalog_channels 9")
}
