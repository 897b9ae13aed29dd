// Package stattest provides streaming kernel two-sample testing for Go,
// built around the Maximum Mean Discrepancy (MMD) statistic.
//
// The library estimates the MMD statistic, its variance and its permutation
// null distribution from block-structured sample streams, and selects the
// best kernel (or kernel combination) for the test. Memory stays bounded by
// the burst size, so arbitrarily long streams can be tested in one pass.
//
// # Features
//
// - Streaming estimation: numerically stable online accumulation, no dataset re-reads
// - Parallel per-block execution: kernel matrices and jobs fan out over all CPUs
// - Kernel learning: per-kernel statistics plus a pairwise covariance matrix in one pass
// - Pluggable kernels and selection policies behind small interfaces
// - Structured errors and logging throughout
//
// # Installation
//
// Install stattest using go get:
//
//	go get github.com/YuminosukeSato/stattest
//
// # Quick Start
//
// A minimal two-sample test with a user-defined kernel:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/stattest/data"
//	    "github.com/YuminosukeSato/stattest/mmd"
//	)
//
//	func main() {
//	    // p and q are gonum mat.Matrix values, rows = samples
//	    src, err := data.NewMatrixSource(p, q, data.WithSourceBlockSize(64, 64))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    est, err := mmd.NewLinearTime(src)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    est.SetKernel(myKernel) // anything satisfying kernel.Kernel
//
//	    reject, err := est.Perform(0.05)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("distributions differ:", reject)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - mmd: the estimation engine (statistic, variance, Q matrix, null sampling, selection driver)
//   - data: the streaming source contract and an in-memory reference source
//   - kernel: the kernel contract, Gram matrix type, registry, precomputed and combined kernels
//   - compute: the parallel job executor
//   - selection: kernel-selection policies (median heuristic, max measure, max power, cross-validation)
//   - viz: null-distribution plots
//   - core/online: streaming mean/variance accumulators
//   - core/parallel: parallel processing utilities
//
// See examples/twosample for a complete runnable session.
package stattest
