package deploydebug_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valence-tools/lpdeployer/deployer"
	"github.com/valence-tools/lpdeployer/internal/deploydebug"
)

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	m := deployer.NewPrometheusMetrics()
	m.IncTxSubmitted("neutron-test", "tick")

	srv := httptest.NewServer(deploydebug.NewMux(m.Registry))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `lpdeployer_submitted_txs{chain="neutron-test",kind="tick"} 1`)
}
