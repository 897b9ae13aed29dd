// Package compute runs estimation jobs over kernel matrices in parallel.
//
// A Job reduces one kernel matrix to one scalar. The Manager collects the
// jobs and per-block kernel matrices of a burst, evaluates every job on every
// block in parallel over the blocks, and exposes the results in block order.
// Backend selection is a flag: the CPU backend is the only one implemented,
// and requesting an accelerator falls back to it with a one-time warning,
// producing identical numbers.
package compute

import (
	"sync"

	"github.com/YuminosukeSato/stattest/core/parallel"
	"github.com/YuminosukeSato/stattest/kernel"
	"github.com/YuminosukeSato/stattest/pkg/errors"
	"github.com/YuminosukeSato/stattest/pkg/log"
)

// Job reduces a kernel matrix to a scalar estimate. Jobs run concurrently on
// different blocks and must not share mutable state.
type Job func(m kernel.Matrix) float32

// Manager schedules jobs over the kernel matrices of one burst.
//
// The lifecycle per operation is: enqueue jobs once, then per burst call
// NumData, SetData for every block, and Compute one or more times; Result
// reads the latest scalars. Done ends the operation and releases all held
// matrices. NumData also releases the previous burst's matrices, so block
// data never outlives its burst.
type Manager interface {
	// EnqueueJob appends a job to the job queue.
	EnqueueJob(job Job)

	// NumData declares the number of data blocks for the coming burst,
	// releasing any matrices still held from the previous one.
	NumData(n int)

	// SetData installs the kernel matrix of block i. The manager takes
	// ownership and frees it on the next NumData or Done.
	SetData(i int, m kernel.Matrix)

	// UseCPU selects the CPU backend.
	UseCPU()

	// UseGPU requests the accelerator backend. Without one compiled in,
	// computation falls back to the CPU backend with a one-time warning.
	UseGPU()

	// Compute evaluates every enqueued job on every data block.
	Compute() error

	// Result returns the scalars of job jobIdx, indexed by block. The slice
	// is valid until the next Compute, NumData or Done call.
	Result(jobIdx int) []float32

	// Done ends the operation: held matrices are released, jobs and results
	// cleared.
	Done()
}

// New returns the CPU-backed Manager implementation.
func New() Manager {
	return &manager{
		logger: log.GetLoggerWithName("compute"),
	}
}

type manager struct {
	jobs    []Job
	data    []kernel.Matrix
	results [][]float32
	gpu     bool
	gpuWarn sync.Once
	logger  log.Logger
}

func (m *manager) EnqueueJob(job Job) {
	m.jobs = append(m.jobs, job)
}

func (m *manager) NumData(n int) {
	m.releaseData()
	m.data = make([]kernel.Matrix, n)
	m.results = nil
}

func (m *manager) SetData(i int, km kernel.Matrix) {
	m.data[i] = km
}

func (m *manager) UseCPU() {
	m.gpu = false
}

func (m *manager) UseGPU() {
	m.gpu = true
}

func (m *manager) Compute() error {
	if m.gpu {
		m.gpuWarn.Do(func() {
			w := errors.NewGPUUnavailableWarning("Compute", "no accelerator backend compiled in")
			errors.Warn(w)
			m.logger.Warn("falling back to CPU backend", log.OperationKey, "compute")
		})
	}

	if len(m.jobs) == 0 || len(m.data) == 0 {
		return nil
	}

	m.results = make([][]float32, len(m.jobs))
	for j := range m.results {
		m.results[j] = make([]float32, len(m.data))
	}

	return parallel.TryForEach(len(m.data), func(i int) (err error) {
		defer errors.Recover(&err, "compute.Job")

		km := m.data[i]
		if km.IsEmpty() {
			return errors.Newf("compute: data slot %d not set", i)
		}
		for j, job := range m.jobs {
			m.results[j][i] = job(km)
		}
		return nil
	})
}

func (m *manager) Result(jobIdx int) []float32 {
	return m.results[jobIdx]
}

func (m *manager) Done() {
	m.releaseData()
	m.data = nil
	m.jobs = nil
	m.results = nil
}

func (m *manager) releaseData() {
	for i := range m.data {
		m.data[i].Free()
		m.data[i] = kernel.Matrix{}
	}
}
