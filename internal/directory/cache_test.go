package directory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/metrics"
)

// -- Mock Repository --

type mockRepo struct {
	items     map[uuid.UUID]*Practitioner
	listCalls int
	listErr   error
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Practitioner)}
}

func (m *mockRepo) ListPractitioners(_ context.Context) ([]Practitioner, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]Practitioner, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepo) GetPractitionerByID(_ context.Context, id uuid.UUID) (*Practitioner, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ErrPractitionerNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) CreatePractitioner(_ context.Context, p *Practitioner) (*Practitioner, error) {
	for _, existing := range m.items {
		if existing.License == p.License {
			return nil, ErrLicenseTaken
		}
	}
	p.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p.UpdatedAt = p.CreatedAt
	m.items[p.ID] = p
	return p, nil
}

func (m *mockRepo) UpdatePractitioner(_ context.Context, p *Practitioner) (*Practitioner, error) {
	existing, ok := m.items[p.ID]
	if !ok {
		return nil, ErrPractitionerNotFound
	}
	p.CreatedAt = existing.CreatedAt
	m.items[p.ID] = p
	return p, nil
}

func (m *mockRepo) DeletePractitioner(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrPractitionerNotFound
	}
	delete(m.items, id)
	return nil
}

type failingKV struct {
	getErr, setErr, delErr error
}

func (f failingKV) Get(context.Context, string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return nil, ErrCacheMiss
}

func (f failingKV) Set(context.Context, string, []byte, time.Duration) error { return f.setErr }
func (f failingKV) Del(context.Context, string) error                        { return f.delErr }

type fixture struct {
	mr      *miniredis.Miniredis
	repo    *mockRepo
	cache   *Cache
	svc     *Service
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockRepo()
	m := metrics.New()
	cache := NewCache(NewRedisKV(client), repo, time.Hour, m, zerolog.New(io.Discard))
	return &fixture{
		mr:      mr,
		repo:    repo,
		cache:   cache,
		svc:     NewService(repo, cache),
		metrics: m,
	}
}

func TestCache_MissPopulatesWithTTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, Input{Name: "Dr. X", Specialty: "Cardio", License: "123456-SP"})
	require.NoError(t, err)

	payload, hit, err := f.cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)

	stored, err := f.mr.Get(CacheKey)
	require.NoError(t, err)
	assert.Equal(t, string(payload), stored)
	assert.Equal(t, time.Hour, f.mr.TTL(CacheKey))

	var list []Practitioner
	require.NoError(t, json.Unmarshal(payload, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "123456-SP", list[0].License)
}

func TestCache_HitDoesNotTouchStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, Input{Name: "Dr. X", Specialty: "Cardio", License: "123456-SP"})
	require.NoError(t, err)

	first, hit, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.repo.listCalls)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DirectoryCache.WithLabelValues(metrics.CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DirectoryCache.WithLabelValues(metrics.CacheMiss)))
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.cache.Get(ctx)
	require.NoError(t, err)

	f.mr.FastForward(time.Hour + time.Second)

	_, hit, err := f.cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, f.repo.listCalls)
}

func TestCache_EmptyListIsCachedAsArray(t *testing.T) {
	f := newFixture(t)

	payload, _, err := f.cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(payload))
}

func TestCache_StoreErrorCachesNothing(t *testing.T) {
	f := newFixture(t)
	f.repo.listErr = errors.New("db down")

	_, _, err := f.cache.Get(context.Background())
	require.Error(t, err)
	assert.False(t, f.mr.Exists(CacheKey))
}

func TestCache_BackendErrorsFailTheRead(t *testing.T) {
	repo := newMockRepo()
	m := metrics.New()

	broken := NewCache(failingKV{getErr: errors.New("timeout")}, repo, time.Hour, m, zerolog.New(io.Discard))
	_, _, err := broken.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, repo.listCalls)

	unwritable := NewCache(failingKV{setErr: errors.New("readonly replica")}, repo, time.Hour, m, zerolog.New(io.Discard))
	_, _, err = unwritable.Get(context.Background())
	require.Error(t, err)
}

func TestService_MutationsInvalidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, Input{Name: "Dr. X", Specialty: "Cardio", License: "123456-SP"})
	require.NoError(t, err)
	_, _, err = f.svc.List(ctx)
	require.NoError(t, err)
	require.True(t, f.mr.Exists(CacheKey))

	_, err = f.svc.Update(ctx, p.ID, Input{Name: "Dr. Y", Specialty: "Neuro", License: "123456-SP"})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(CacheKey))

	payload, hit, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, string(payload), "Dr. Y")

	require.NoError(t, f.svc.Delete(ctx, p.ID))
	assert.False(t, f.mr.Exists(CacheKey))

	payload, _, err = f.svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(payload))
}

func TestService_FailedMutationKeepsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.List(ctx)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, uuid.New(), Input{Name: "Dr. Z", Specialty: "Derm", License: "1234-RJ"})
	assert.ErrorIs(t, err, ErrPractitionerNotFound)
	assert.True(t, f.mr.Exists(CacheKey))

	assert.ErrorIs(t, f.svc.Delete(ctx, uuid.New()), ErrPractitionerNotFound)
	assert.True(t, f.mr.Exists(CacheKey))
}

func TestService_InvalidationFailureSurfaces(t *testing.T) {
	repo := newMockRepo()
	cache := NewCache(failingKV{delErr: errors.New("conn reset")}, repo, time.Hour, metrics.New(), zerolog.New(io.Discard))
	svc := NewService(repo, cache)

	_, err := svc.Create(context.Background(), Input{Name: "Dr. X", Specialty: "Cardio", License: "123456-SP"})
	require.Error(t, err)
	assert.Len(t, repo.items, 1)
}

func TestService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]struct {
		in   Input
		want error
	}{
		"missing name":   {Input{Specialty: "Cardio", License: "123456-SP"}, ErrMissingFields},
		"lowercase uf":   {Input{Name: "A", Specialty: "Cardio", License: "123456-sp"}, ErrInvalidLicense},
		"too many digit": {Input{Name: "A", Specialty: "Cardio", License: "1234567-SP"}, ErrInvalidLicense},
		"too few digits": {Input{Name: "A", Specialty: "Cardio", License: "123-SP"}, ErrInvalidLicense},
		"no dash":        {Input{Name: "A", Specialty: "Cardio", License: "123456SP"}, ErrInvalidLicense},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.svc.Create(ctx, Input{Name: "A", Specialty: "Cardio", License: "4321-MG"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, Input{Name: "B", Specialty: "Derm", License: "4321-MG"})
	assert.ErrorIs(t, err, ErrLicenseTaken)
}

func TestService_Get(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, Input{Name: "Dr. X", Specialty: "Cardio", License: "123456-SP"})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. X", got.Name)

	_, err = f.svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrPractitionerNotFound)
}
