// Package mmd estimates the Maximum Mean Discrepancy between two sampled
// distributions from streamed, block-structured data.
//
// The estimator pulls bursts of paired sample blocks from a data.Source,
// merges each P-block with its Q-block, computes one kernel matrix per merged
// block in parallel, evaluates statistic and variance jobs on every matrix,
// and folds the per-block scalars into numerically stable online accumulators.
// Memory stays bounded by the burst size no matter how long the stream is.
//
// A minimal session looks like:
//
//	src, _ := data.NewMatrixSource(p, q, data.WithSourceBlockSize(64, 64))
//	est, _ := mmd.NewLinearTime(src)
//	est.SetKernel(myGaussianKernel)
//	stat, va, err := est.ComputeStatisticVariance()
//
// Kernel functions themselves are user code: anything satisfying
// kernel.Kernel can drive the estimator.
package mmd

import (
	"math/rand"
	"sync"
	"time"

	"github.com/YuminosukeSato/stattest/compute"
	"github.com/YuminosukeSato/stattest/data"
	"github.com/YuminosukeSato/stattest/kernel"
	"github.com/YuminosukeSato/stattest/pkg/errors"
	"github.com/YuminosukeSato/stattest/pkg/log"
)

// StatisticType selects the estimator evaluated within each block.
type StatisticType int

const (
	// UnbiasedFull is the full unbiased U-statistic estimate (default).
	UnbiasedFull StatisticType = iota
	// UnbiasedIncomplete is the incomplete U-statistic that skips paired
	// cross terms; it requires equal block sizes for both distributions.
	UnbiasedIncomplete
	// BiasedFull is the biased V-statistic estimate including diagonal terms.
	BiasedFull
)

func (t StatisticType) String() string {
	switch t {
	case UnbiasedFull:
		return "unbiased_full"
	case UnbiasedIncomplete:
		return "unbiased_incomplete"
	case BiasedFull:
		return "biased_full"
	default:
		return "unknown"
	}
}

// VarianceEstimationMethod selects how the statistic's variance is estimated.
type VarianceEstimationMethod int

const (
	// DirectEstimation runs the linear-time h-statistic variance job per
	// block and averages the results (default).
	DirectEstimation VarianceEstimationMethod = iota
	// PermutationEstimation folds permuted statistic values through a
	// one-pass streaming variance accumulator.
	PermutationEstimation
)

func (v VarianceEstimationMethod) String() string {
	switch v {
	case DirectEstimation:
		return "direct"
	case PermutationEstimation:
		return "permutation"
	default:
		return "unknown"
	}
}

// NullApproximationMethod selects how the null distribution is approximated
// when computing p-values and thresholds.
type NullApproximationMethod int

const (
	// Permutation builds an empirical null distribution from within-block
	// permutation replicates (default).
	Permutation NullApproximationMethod = iota
	// MMD1Gaussian uses the asymptotic normal approximation with the
	// estimated variance.
	MMD1Gaussian
)

func (n NullApproximationMethod) String() string {
	switch n {
	case Permutation:
		return "permutation"
	case MMD1Gaussian:
		return "mmd1_gaussian"
	default:
		return "unknown"
	}
}

// KernelSelectionMethod names the strategy used by SelectKernel.
type KernelSelectionMethod int

const (
	// MedianHeuristic picks the kernel whose bandwidth is closest to the
	// median pairwise distance of the merged samples.
	MedianHeuristic KernelSelectionMethod = iota
	// MaximizeMMD picks the kernel (or weighting) with the largest
	// statistic estimate.
	MaximizeMMD
	// MaximizePower picks the kernel (or weighting) with the largest
	// estimated test power.
	MaximizePower
	// MaximizeCrossValidation picks the kernel with the highest rejection
	// rate over repeated held-out tests.
	MaximizeCrossValidation
)

func (k KernelSelectionMethod) String() string {
	switch k {
	case MedianHeuristic:
		return "median_heuristic"
	case MaximizeMMD:
		return "maximize_mmd"
	case MaximizePower:
		return "maximize_power"
	case MaximizeCrossValidation:
		return "maximize_cross_validation"
	default:
		return "unknown"
	}
}

// MMD is the streaming two-sample test estimator.
//
// An MMD instance owns its configuration, a test registry whose slot 0 holds
// the active kernel, and a selection registry of candidate kernels for
// SelectKernel and ComputeStatisticAndQ. All running accumulators live on the
// stack of the operation that needs them, so every operation starts fresh.
//
// The estimator drives the stream from a single goroutine; instances are not
// safe for concurrent use. Within a burst, per-block work fans out over all
// CPUs.
type MMD struct {
	src  data.Source
	norm Normalizer

	// アクティブなカーネルはスロット0。選択用の候補はselectionRegに登録する。
	kernelReg    *kernel.Registry
	selectionReg *kernel.Registry

	statType       StatisticType
	varMethod      VarianceEstimationMethod
	nullMethod     NullApproximationMethod
	numNullSamples int

	mgr compute.Manager
	gpu bool

	randomState int64
	rng         *rand.Rand
	rngMu       sync.Mutex

	logger log.Logger
}

// Option configures an MMD estimator at construction time.
type Option func(*MMD)

// WithStatisticType sets the statistic estimator variant.
func WithStatisticType(t StatisticType) Option {
	return func(m *MMD) {
		m.statType = t
	}
}

// WithVarianceEstimationMethod sets the variance estimation method.
func WithVarianceEstimationMethod(v VarianceEstimationMethod) Option {
	return func(m *MMD) {
		m.varMethod = v
	}
}

// WithNullApproximationMethod sets the null approximation used by PValue,
// Threshold and Perform.
func WithNullApproximationMethod(n NullApproximationMethod) Option {
	return func(m *MMD) {
		m.nullMethod = n
	}
}

// WithNumNullSamples sets the replicate count for SampleNull.
func WithNumNullSamples(n int) Option {
	return func(m *MMD) {
		m.numNullSamples = n
	}
}

// WithRandomState seeds the permutation random source. Non-negative seeds
// make permutation draws reproducible.
func WithRandomState(seed int64) Option {
	return func(m *MMD) {
		m.randomState = seed
	}
}

// WithNormalizer sets the statistic normalization rule.
func WithNormalizer(n Normalizer) Option {
	return func(m *MMD) {
		m.norm = n
	}
}

// WithComputeManager injects a job evaluator. Without it every operation uses
// a fresh CPU-backed manager.
func WithComputeManager(mgr compute.Manager) Option {
	return func(m *MMD) {
		m.mgr = mgr
	}
}

// WithLogger sets the logger used for burst progress and results.
func WithLogger(l log.Logger) Option {
	return func(m *MMD) {
		m.logger = l
	}
}

// New creates an estimator over src. A normalizer is required: pass
// WithNormalizer, or use NewLinearTime / NewBTest which wire the matching
// rule.
func New(src data.Source, options ...Option) (*MMD, error) {
	if src == nil {
		return nil, errors.NewValidationError("src", "data source must not be nil", nil)
	}

	m := &MMD{
		src:            src,
		kernelReg:      kernel.NewRegistry(),
		selectionReg:   kernel.NewRegistry(),
		statType:       UnbiasedFull,
		varMethod:      DirectEstimation,
		nullMethod:     Permutation,
		numNullSamples: 250,
		randomState:    -1,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.norm == nil {
		return nil, errors.NewValidationError("normalizer",
			"a normalizer is required; use NewLinearTime, NewBTest or WithNormalizer", nil)
	}
	if m.logger == nil {
		m.logger = log.GetLoggerWithName("mmd")
	}

	if m.randomState >= 0 {
		m.rng = rand.New(rand.NewSource(m.randomState))
	} else {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return m, nil
}

// NewLinearTime creates an estimator with the linear-time normalization rule
// based on the source's total sample counts.
func NewLinearTime(src data.Source, options ...Option) (*MMD, error) {
	return New(src, append([]Option{WithNormalizer(NewLinearTimeNormalizer(src))}, options...)...)
}

// NewBTest creates an estimator with the block-test normalization rule based
// on the source's block sizes.
func NewBTest(src data.Source, options ...Option) (*MMD, error) {
	return New(src, append([]Option{WithNormalizer(NewBTestNormalizer(src))}, options...)...)
}

// SetKernel installs k as the active test kernel in slot 0 of the test
// registry and drops any override left there by a previous selection run.
func (m *MMD) SetKernel(k kernel.Kernel) {
	if m.kernelReg.NumKernels() == 0 {
		m.kernelReg.PushBack(k)
	} else {
		m.kernelReg.SetKernelAt(0, k)
	}
	m.kernelReg.RestoreKernelAt(0)
}

// Kernel returns the active test kernel, or nil if none is set.
func (m *MMD) Kernel() kernel.Kernel {
	if m.kernelReg.NumKernels() == 0 {
		return nil
	}
	return m.kernelReg.KernelAt(0)
}

// AddKernel registers a candidate kernel for selection and multi-kernel
// covariance estimation.
func (m *MMD) AddKernel(k kernel.Kernel) error {
	if k == nil {
		return errors.NewValidationError("kernel", "candidate kernel must not be nil", nil)
	}
	m.selectionReg.PushBack(k)
	return nil
}

// Kernels returns the selection registry of candidate kernels.
func (m *MMD) Kernels() *kernel.Registry {
	return m.selectionReg
}

// Cleanup drops every temporary kernel override in the test registry,
// reverting slots to their base kernels.
func (m *MMD) Cleanup() {
	m.kernelReg.RestoreAll()
}

// SetStatisticType sets the statistic estimator variant.
func (m *MMD) SetStatisticType(t StatisticType) {
	m.statType = t
}

// StatisticType returns the configured statistic estimator variant.
func (m *MMD) StatisticType() StatisticType {
	return m.statType
}

// SetVarianceEstimationMethod sets the variance estimation method.
func (m *MMD) SetVarianceEstimationMethod(v VarianceEstimationMethod) {
	m.varMethod = v
}

// VarianceEstimationMethod returns the configured variance estimation method.
func (m *MMD) VarianceEstimationMethod() VarianceEstimationMethod {
	return m.varMethod
}

// SetNullApproximationMethod sets the null approximation used by PValue,
// Threshold and Perform.
func (m *MMD) SetNullApproximationMethod(n NullApproximationMethod) {
	m.nullMethod = n
}

// NullApproximationMethod returns the configured null approximation.
func (m *MMD) NullApproximationMethod() NullApproximationMethod {
	return m.nullMethod
}

// SetNumNullSamples sets the replicate count for SampleNull.
func (m *MMD) SetNumNullSamples(n int) {
	m.numNullSamples = n
}

// NumNullSamples returns the configured replicate count.
func (m *MMD) NumNullSamples() int {
	return m.numNullSamples
}

// SetRandomState reseeds the permutation random source. Non-negative seeds
// are deterministic; negative seeds pick a time-based seed.
func (m *MMD) SetRandomState(seed int64) {
	m.randomState = seed
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	if seed >= 0 {
		m.rng = rand.New(rand.NewSource(seed))
	} else {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

// UseGPU requests the accelerator backend for job evaluation. The flag is
// checked once per burst before dispatch.
func (m *MMD) UseGPU(on bool) {
	m.gpu = on
}

// UsesGPU reports whether the accelerator backend is requested.
func (m *MMD) UsesGPU() bool {
	return m.gpu
}

// manager returns the injected job evaluator, or a fresh CPU-backed one.
func (m *MMD) manager() compute.Manager {
	if m.mgr != nil {
		return m.mgr
	}
	return compute.New()
}

// activeKernel resolves the test kernel for a computation and rejects
// configurations that cannot serve as a streaming template.
func (m *MMD) activeKernel(op string) (kernel.Kernel, error) {
	if m.kernelReg.NumKernels() == 0 || m.kernelReg.KernelAt(0) == nil {
		return nil, errors.NewKernelNotSetError(op)
	}
	k := m.kernelReg.KernelAt(0)
	if _, ok := k.(*kernel.Precomputed); ok {
		return nil, errors.NewPrecomputedTemplateError(0)
	}
	return k, nil
}
