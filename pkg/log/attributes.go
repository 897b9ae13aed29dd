// Package log defines standard attribute keys for statistical testing operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in stattest. Using these standard keys enables better
// log analysis, monitoring, and debugging of streaming estimation workflows.
//
// The attributes are organized into categories:
//   - Test and Operation Context
//   - Stream and Burst Shape
//   - Kernel Context
//   - Results and Performance Metrics
//   - Error Context
//
// These keys follow a hierarchical naming convention (e.g., "test.name",
// "stream.bursts") to enable structured log analysis and filtering.

package log

// Test and Operation Context
// These attributes identify the test type, instance, and operation being performed.
const (
	// TestNameKey identifies the type of hypothesis test.
	// Examples: "StreamingMMD", "QuadraticTimeMMD", "BTestMMD"
	TestNameKey = "test.name"

	// EstimatorIDKey provides a unique identifier for a specific estimator instance.
	// This is useful for tracking multiple instances of the same test type.
	// Examples: "mmd-001", "btest-abc123", UUID strings
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the estimation operation being performed.
	// Standard values: "compute_statistic", "compute_variance", "sample_null",
	// "select_kernel", "compute_distance"
	OperationKey = "test.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "mmd", "compute", "selection"
	ComponentKey = "test.component"

	// PhaseKey indicates the phase of the test lifecycle.
	// Examples: "training", "testing"
	PhaseKey = "test.phase"
)

// Stream and Burst Shape
// These attributes describe the structure of streamed data being processed.
const (
	// BurstsKey indicates the number of bursts consumed from the stream.
	BurstsKey = "stream.bursts"

	// BlocksKey indicates the number of blocks fetched per burst per distribution.
	BlocksKey = "stream.blocks_per_burst"

	// BlockSizeKey indicates the number of samples in one block.
	BlockSizeKey = "stream.block_size"

	// SamplesKey indicates the total number of samples (rows) processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the data.
	// Important for dimensionality tracking and debugging shape mismatches.
	FeaturesKey = "data.features"

	// DataTypeKey specifies the type of data being processed.
	// Examples: "float64", "float32"
	DataTypeKey = "data.type"
)

// Kernel Context
// These attributes describe the kernels participating in the computation.
const (
	// KernelCountKey indicates the number of registered kernels.
	KernelCountKey = "kernel.count"

	// KernelSlotKey identifies a kernel by its registry slot.
	KernelSlotKey = "kernel.slot"

	// BandwidthKey records a kernel bandwidth parameter.
	// Relevant for median heuristic selection and Gaussian-family kernels.
	BandwidthKey = "kernel.bandwidth"
)

// Results and Performance Metrics
// These attributes capture statistics, timing, and resource usage information.
const (
	// StatisticKey records the computed (normalised) test statistic.
	StatisticKey = "result.statistic"

	// VarianceKey records the estimated variance of the statistic.
	VarianceKey = "result.variance"

	// PValueKey records the p-value of a performed test.
	PValueKey = "result.p_value"

	// ThresholdKey records the rejection threshold for a significance level.
	ThresholdKey = "result.threshold"

	// NullSamplesKey indicates the number of null distribution replicates.
	NullSamplesKey = "null.samples"

	// ReplicateKey records the current replicate number during null sampling.
	ReplicateKey = "null.replicate"

	// DurationMsKey records the execution time of an operation in milliseconds.
	// This is essential for performance monitoring and optimization.
	DurationMsKey = "perf.duration_ms"

	// MemoryUsageKey records memory usage in bytes during the operation.
	// Important for memory optimization and resource planning.
	MemoryUsageKey = "perf.memory_bytes"

	// WorkersKey records the number of parallel workers used.
	WorkersKey = "perf.workers"
)

// Error and Warning Context
// These attributes provide additional context for error and warning messages.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	// Examples: "KERNEL_NOT_SET", "ODD_BLOCK_COUNT", "EMPTY_DATA"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "ValidationError", "ComputationError", "BlockShapeError"
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated by the error logging functions.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey provides helpful suggestions for resolving issues.
	// Examples: "Use fewer blocks per burst", "Register a kernel first"
	SuggestionKey = "error.suggestion"
)

// Configuration
// These attributes capture test configuration for reproducibility.
const (
	// RandomSeedKey records the random seed for reproducibility.
	// Essential for debugging and ensuring reproducible results.
	RandomSeedKey = "config.random_seed"

	// SignificanceLevelKey records the significance level of a performed test.
	SignificanceLevelKey = "config.alpha"

	// TrainTestRatioKey records the fraction of the stream reserved for
	// kernel selection.
	TrainTestRatioKey = "config.train_test_ratio"

	// SelectionMethodKey records the kernel selection method in use.
	// Examples: "median_heuristic", "max_test_power"
	SelectionMethodKey = "config.selection_method"
)

// Standard attribute value constants for common operations.
// Using these constants ensures consistency across the codebase.
const (
	// Standard estimation operations
	OperationComputeStatistic = "compute_statistic"
	OperationComputeVariance  = "compute_variance"
	OperationComputeQ         = "compute_q"
	OperationSampleNull       = "sample_null"
	OperationSelectKernel     = "select_kernel"
	OperationComputeDistance  = "compute_distance"
	OperationPerformTest      = "perform_test"

	// Standard test phases
	PhaseTraining = "training"
	PhaseTesting  = "testing"

	// Standard error codes
	ErrorKernelNotSet      = "KERNEL_NOT_SET"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorOddBlockCount     = "ODD_BLOCK_COUNT"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
	ErrorUnsupported       = "UNSUPPORTED_METHOD"
)
