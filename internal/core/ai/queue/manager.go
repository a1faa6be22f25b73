package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"perfume-generator/internal/core/ai/provider"
	"perfume-generator/internal/infrastructure/config"
	"perfume-generator/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 隊列已滿
	ErrQueueFull = errors.New("queue is full")
	// ErrQueueClosed 隊列已關閉
	ErrQueueClosed = errors.New("queue manager is closed")
)

// Request 隊列請求
type Request struct {
	Context context.Context
	Request *provider.Request
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Response *provider.Response
	Error    error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 以固定數量的 worker 呼叫模型，限制同時進行的請求數；本身也實作 provider.Provider
type Manager struct {
	provider  provider.Provider
	queue     chan *Request
	done      chan struct{}
	workers   int
	processed int64
	closed    bool
	mu        sync.RWMutex
	wg        sync.WaitGroup
}

// NewManager 創建隊列管理器並啟動 worker
func NewManager(p provider.Provider, cfg config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	size := cfg.MaxSize
	if size <= 0 {
		size = workers
	}

	m := &Manager{
		provider: p,
		queue:    make(chan *Request, size),
		done:     make(chan struct{}),
		workers:  workers,
	}

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}

	common.LogInfo("Queue manager started",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", size),
	)
	return m
}

// Enqueue 將請求加入隊列；隊列已滿時立即回傳 ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, req *provider.Request) (chan Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queueReq := &Request{
		Context: ctx,
		Request: req,
		Result:  make(chan Result, 1),
	}

	select {
	case m.queue <- queueReq:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", cap(m.queue)),
		)
		return queueReq.Result, nil
	default:
		common.LogWarn("Queue is full",
			zap.Int("max_queue_size", cap(m.queue)),
		)
		return nil, ErrQueueFull
	}
}

// Generate 排隊後等待 worker 的結果
func (m *Manager) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	ch, err := m.Enqueue(ctx, req)
	if err != nil {
		return nil, err
	}

	select {
	case res := <-ch:
		return res.Response, res.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetModel 回傳底層模型名稱
func (m *Manager) GetModel() string {
	return m.provider.GetModel()
}

// GetTimeout 回傳底層逾時設定
func (m *Manager) GetTimeout() time.Duration {
	return m.provider.GetTimeout()
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   cap(m.queue),
		Workers:        m.workers,
	}
}

// Close 停止 worker，未處理的請求回傳 ErrQueueClosed，最後關閉底層 provider
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.done)
	m.mu.Unlock()

	m.wg.Wait()

	for {
		select {
		case req := <-m.queue:
			req.Result <- Result{Error: ErrQueueClosed}
		default:
			return m.provider.Close()
		}
	}
}

func (m *Manager) worker() {
	defer m.wg.Done()

	for {
		// 關閉優先於取出新請求
		select {
		case <-m.done:
			return
		default:
		}

		select {
		case <-m.done:
			return
		case req := <-m.queue:
			m.process(req)
		}
	}
}

func (m *Manager) process(req *Request) {
	// 呼叫端已放棄的請求不送出
	if err := req.Context.Err(); err != nil {
		req.Result <- Result{Error: err}
		return
	}

	resp, err := m.provider.Generate(req.Context, req.Request)
	atomic.AddInt64(&m.processed, 1)
	req.Result <- Result{Response: resp, Error: err}
}
