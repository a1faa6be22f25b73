package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"perfume-generator/internal/core/ai/cache"
	"perfume-generator/internal/core/ai/provider"
	"perfume-generator/internal/infrastructure/config"
	"perfume-generator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	content  string
	err      error
	requests []*provider.Request
}

func (p *fakeProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &provider.Response{Content: p.content, Model: "test/model"}, nil
}

func (p *fakeProvider) GetModel() string          { return "test/model" }
func (p *fakeProvider) GetTimeout() time.Duration { return time.Second }
func (p *fakeProvider) Close() error              { return nil }

type observation struct {
	failed   bool
	cacheHit bool
}

type fakeObserver struct{ seen []observation }

func (o *fakeObserver) ObserveAIRequest(err error, cacheHit bool, duration time.Duration) {
	o.seen = append(o.seen, observation{failed: err != nil, cacheHit: cacheHit})
}

func newMemoryStore(t *testing.T) cache.Store {
	t.Helper()
	store, err := cache.NewStore(context.Background(), &config.Config{Cache: config.CacheConfig{
		Enabled: true, Backend: config.CacheBackendMemory, MaxSize: 10, TTL: time.Hour,
	}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestProcessRequestUsesCache(t *testing.T) {
	p := &fakeProvider{content: "reply"}
	obs := &fakeObserver{}
	svc := NewService(p, newMemoryStore(t), obs, Options{MaxTokens: 100, Temperature: 0.3})

	first, err := svc.ProcessRequest(context.Background(), "prompt\n")
	require.NoError(t, err)
	assert.Equal(t, "reply", first.Content)
	assert.False(t, first.CacheHit)

	// 呼叫端尚未確認回應可用，不會命中快取
	second, err := svc.ProcessRequest(context.Background(), "prompt")
	require.NoError(t, err)
	assert.False(t, second.CacheHit)

	svc.Remember(context.Background(), "prompt\n", second.Content)

	third, err := svc.ProcessRequest(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "reply", third.Content)
	assert.True(t, third.CacheHit)

	assert.Len(t, p.requests, 2)
	assert.Equal(t, []observation{{cacheHit: false}, {cacheHit: false}, {cacheHit: true}}, obs.seen)
}

func TestRememberWithoutCache(t *testing.T) {
	svc := NewService(&fakeProvider{}, nil, nil, Options{})
	assert.NotPanics(t, func() { svc.Remember(context.Background(), "prompt", "reply") })
}

func TestProcessRequestSendsPromptUnchanged(t *testing.T) {
	p := &fakeProvider{content: "reply"}
	svc := NewService(p, nil, nil, Options{MaxTokens: 100, Temperature: 0.3, SystemPrompt: "system"})

	prompt := "line one\n\n  line two\t"
	_, err := svc.ProcessRequest(context.Background(), prompt)
	require.NoError(t, err)

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.Equal(t, 100, req.MaxTokens)
	assert.Equal(t, 0.3, req.Temperature)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, provider.Message{Role: provider.RoleSystem, Content: "system"}, req.Messages[0])
	assert.Equal(t, provider.Message{Role: provider.RoleUser, Content: prompt}, req.Messages[1])
}

func TestProcessRequestProviderError(t *testing.T) {
	upstream := errors.New("upstream 502")
	p := &fakeProvider{err: upstream}
	obs := &fakeObserver{}
	store := newMemoryStore(t)
	svc := NewService(p, store, obs, Options{})

	_, err := svc.ProcessRequest(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAIServiceError)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, []observation{{failed: true}}, obs.seen)

	_, err = store.Get(context.Background(), "prompt")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestServiceStats(t *testing.T) {
	svc := NewService(&fakeProvider{}, nil, nil, Options{})
	assert.Equal(t, "test/model", svc.Model())
	assert.Nil(t, svc.CacheStats())

	withCache := NewService(&fakeProvider{}, newMemoryStore(t), nil, Options{})
	assert.Equal(t, config.CacheBackendMemory, withCache.CacheStats()["backend"])
}
