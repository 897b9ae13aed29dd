package kernel

import (
	"sync"
	"sync/atomic"

	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// Matrix is a square kernel (Gram) matrix stored in float32.
//
// Matrix is a view type: copying a Matrix copies the header, not the backing
// buffer, so values can be passed to jobs cheaply. Buffers for pooled matrices
// are recycled through an internal pool to reduce GC pressure across bursts;
// the creator owns the matrix and must call Free exactly once when done.
type Matrix struct {
	data   []float32
	order  int
	pooled bool
}

// NewMatrix returns an order×order matrix backed by a pooled buffer.
// The contents are zeroed.
func NewMatrix(order int) Matrix {
	return Matrix{
		data:   globalPool.get(order * order),
		order:  order,
		pooled: true,
	}
}

// NewMatrixFromData wraps caller-owned data as an order×order matrix without
// copying. The matrix is not pooled; Free is a no-op.
func NewMatrixFromData(data []float32, order int) (Matrix, error) {
	if len(data) != order*order {
		return Matrix{}, errors.NewDimensionError("NewMatrixFromData", order*order, len(data), 0)
	}
	return Matrix{data: data, order: order}, nil
}

// Order returns the number of rows (= columns).
func (m Matrix) Order() int {
	return m.order
}

// At returns the value at (i, j).
func (m Matrix) At(i, j int) float32 {
	return m.data[i*m.order+j]
}

// Set sets the value at (i, j).
func (m Matrix) Set(i, j int, v float32) {
	m.data[i*m.order+j] = v
}

// IsEmpty reports whether the matrix has no backing data.
func (m Matrix) IsEmpty() bool {
	return m.data == nil || m.order == 0
}

// Free returns a pooled backing buffer to the pool. The matrix and any copies
// of it must not be used afterwards. Free on a non-pooled or zero matrix is a
// no-op.
func (m Matrix) Free() {
	if m.pooled && m.data != nil {
		globalPool.put(m.data)
	}
}

// PoolStats tracks kernel matrix buffer pool performance metrics.
type PoolStats struct {
	TotalAllocated int64
	TotalRecycled  int64
	CurrentInUse   int64
	PeakUsage      int64
	ReuseRate      float64
}

// matrixBufferPool recycles float32 buffers for kernel matrices.
// Buffers are zeroed on return so a fresh Matrix starts clean.
type matrixBufferPool struct {
	pool     sync.Pool
	inUse    int64
	created  int64
	recycled int64
	mu       sync.RWMutex
	peak     int64
}

var globalPool = newMatrixBufferPool()

func newMatrixBufferPool() *matrixBufferPool {
	mp := &matrixBufferPool{}
	mp.pool = sync.Pool{
		New: func() interface{} {
			atomic.AddInt64(&mp.created, 1)
			return []float32(nil)
		},
	}
	return mp
}

func (mp *matrixBufferPool) get(size int) []float32 {
	atomic.AddInt64(&mp.inUse, 1)

	buf := mp.pool.Get().([]float32)

	// Resize if necessary
	if cap(buf) < size {
		buf = make([]float32, size)
	}
	buf = buf[:size]

	// Update stats
	current := atomic.LoadInt64(&mp.inUse)
	mp.updatePeakUsage(current)

	return buf
}

func (mp *matrixBufferPool) put(buf []float32) {
	atomic.AddInt64(&mp.inUse, -1)
	atomic.AddInt64(&mp.recycled, 1)

	// Clear the data for reuse
	for i := range buf {
		buf[i] = 0
	}

	mp.pool.Put(buf) //nolint:staticcheck // slice header allocation is acceptable here
}

func (mp *matrixBufferPool) updatePeakUsage(current int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if current > mp.peak {
		mp.peak = current
	}
}

func (mp *matrixBufferPool) stats() PoolStats {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	total := atomic.LoadInt64(&mp.created)
	recycled := atomic.LoadInt64(&mp.recycled)
	inUse := atomic.LoadInt64(&mp.inUse)

	reuseRate := float64(0)
	if total > 0 {
		reuseRate = float64(recycled) / float64(total)
	}

	return PoolStats{
		TotalAllocated: total,
		TotalRecycled:  recycled,
		CurrentInUse:   inUse,
		PeakUsage:      mp.peak,
		ReuseRate:      reuseRate,
	}
}

// GetPoolStats returns current buffer pool statistics.
func GetPoolStats() PoolStats {
	return globalPool.stats()
}
