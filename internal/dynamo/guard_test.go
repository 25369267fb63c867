package dynamo

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/catalog/internal/config"
	"github.com/jacentio/catalog/internal/keys"
	"github.com/jacentio/catalog/internal/memtable"
	"github.com/jacentio/catalog/internal/metrics"
	"github.com/jacentio/catalog/store"
)

func guardConfig(enabled bool) *config.Config {
	cfg := testConfig()
	cfg.BreakerEnabled = enabled
	cfg.BreakerTimeout = time.Minute
	return cfg
}

func refused(op string) error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func TestGuard_PassesThrough(t *testing.T) {
	table := memtable.New("api_data_nube", "GSI1")
	collector := metrics.NewCollector("catalog")
	s := store.New(Guard(table, guardConfig(true), collector, nil), store.DefaultConfig())

	inst, err := s.Institutions().Create(context.Background(), store.InstitutionInput{Name: "Alcaldía"})
	require.NoError(t, err)

	got, err := s.Institutions().GetByID(context.Background(), inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alcaldía", got.Name)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.DBOperations.WithLabelValues("PutItem", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.DBOperations.WithLabelValues("GetItem", "ok")))
}

func TestGuard_OpensOnUnavailability(t *testing.T) {
	table := memtable.New("api_data_nube", "GSI1")
	table.Err = refused
	collector := metrics.NewCollector("catalog")
	g := Guard(table, guardConfig(true), collector, nil)
	s := store.New(g, store.DefaultConfig())
	ctx := context.Background()

	for i := 0; i < breakerMinRequests; i++ {
		_, err := s.Institutions().GetByID(ctx, "INST-a1b2c3d4")
		require.ErrorIs(t, err, store.ErrStoreUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.BreakerState.WithLabelValues(BreakerName)))

	calls := table.Calls("GetItem")
	_, err := s.Institutions().GetByID(ctx, "INST-a1b2c3d4")
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, calls, table.Calls("GetItem"), "an open breaker must not reach the table")
}

func TestGuard_OpenBreakerOnWrite(t *testing.T) {
	table := memtable.New("api_data_nube", "GSI1")
	table.Err = refused
	g := Guard(table, guardConfig(true), nil, nil)
	s := store.New(g, store.DefaultConfig())
	ctx := context.Background()

	for i := 0; i < breakerMinRequests; i++ {
		_, _ = s.Institutions().Create(ctx, store.InstitutionInput{Name: "x"})
	}
	require.Equal(t, gobreaker.StateOpen, g.State())

	_, err := s.Institutions().Create(ctx, store.InstitutionInput{Name: "x"})
	assert.True(t, store.IsWriteError(err))
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
}

func TestGuard_ConditionalFailuresDoNotTrip(t *testing.T) {
	table := memtable.New("api_data_nube", "GSI1")
	g := Guard(table, guardConfig(true), nil, nil)
	sameID := func(keys.Kind) string { return "INST-a1b2c3d4" }
	s := store.New(g, store.DefaultConfig(), store.WithIDGenerator(sameID))
	ctx := context.Background()

	_, err := s.Institutions().Create(ctx, store.InstitutionInput{Name: "Alcaldía"})
	require.NoError(t, err)
	for i := 0; i < 2*breakerMinRequests; i++ {
		_, err := s.Institutions().Create(ctx, store.InstitutionInput{Name: "Alcaldía"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestGuard_Disabled(t *testing.T) {
	table := memtable.New("api_data_nube", "GSI1")
	table.Err = refused
	g := Guard(table, guardConfig(false), nil, nil)
	s := store.New(g, store.DefaultConfig())

	for i := 0; i < 2*breakerMinRequests; i++ {
		_, err := s.Institutions().GetByID(context.Background(), "INST-a1b2c3d4")
		require.ErrorIs(t, err, store.ErrStoreUnavailable)
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
	assert.Equal(t, 2*breakerMinRequests, table.Calls("GetItem"))
}

func TestBreakerSettings_ReadyToTrip(t *testing.T) {
	st := breakerSettings(time.Minute, nil, nil)

	tests := []struct {
		name   string
		counts gobreaker.Counts
		want   bool
	}{
		{"too few requests", gobreaker.Counts{Requests: 4, TotalFailures: 4}, false},
		{"below threshold", gobreaker.Counts{Requests: 10, TotalFailures: 5}, false},
		{"at threshold", gobreaker.Counts{Requests: 10, TotalFailures: 6}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, st.ReadyToTrip(tt.counts))
		})
	}

	assert.True(t, st.IsSuccessful(nil))
	assert.True(t, st.IsSuccessful(errors.New("validation")))
	assert.False(t, st.IsSuccessful(refused("GetItem")))
}
