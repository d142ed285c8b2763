package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	result *Result
	err    error
	calls  int
}

func (f *fakeGeocoder) Geocode(_ context.Context, _ string) (*Result, error) {
	f.calls++
	return f.result, f.err
}

func nairobi() *Result {
	return &Result{
		PlaceID: "place-123",
		Address: "Nairobi, Kenya",
		Location: Location{
			Lat: -1.2921,
			Lng: 36.8219,
		},
	}
}

func TestCachedGeocoder_Hit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	data, err := json.Marshal(nairobi())
	require.NoError(t, err)
	mock.ExpectGet("geocode:nairobi").SetVal(string(data))

	inner := &fakeGeocoder{err: errors.New("must not be called")}
	g := WithCache(inner, rdb)

	got, err := g.Geocode(context.Background(), "  Nairobi ")
	require.NoError(t, err)
	assert.Equal(t, nairobi(), got)
	assert.Zero(t, inner.calls, "cache hit must not reach the provider")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedGeocoder_MissStoresResult(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	data, err := json.Marshal(nairobi())
	require.NoError(t, err)

	mock.ExpectGet("geocode:nairobi").RedisNil()
	mock.ExpectSet("geocode:nairobi", data, cacheTTL).SetVal("OK")

	inner := &fakeGeocoder{result: nairobi()}
	g := WithCache(inner, rdb)

	got, err := g.Geocode(context.Background(), "Nairobi")
	require.NoError(t, err)
	assert.Equal(t, nairobi(), got)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedGeocoder_ProviderErrorNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("geocode:nowhere").RedisNil()

	inner := &fakeGeocoder{err: ErrNoResults}
	g := WithCache(inner, rdb)

	_, err := g.Geocode(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, ErrNoResults)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedGeocoder_CacheFailureFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	data, _ := json.Marshal(nairobi())
	mock.ExpectGet("geocode:nairobi").SetErr(errors.New("redis down"))
	mock.ExpectSet("geocode:nairobi", data, cacheTTL).SetErr(errors.New("redis down"))

	inner := &fakeGeocoder{result: nairobi()}
	g := WithCache(inner, rdb)

	got, err := g.Geocode(context.Background(), "Nairobi")
	require.NoError(t, err)
	assert.Equal(t, nairobi(), got)
}
