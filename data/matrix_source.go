package data

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// MatrixSource streams two in-memory sample matrices as bursts of row
// blocks. It is the reference Source implementation: deterministic, cheap
// (blocks are views into the underlying matrices, never copies) and
// restartable.
//
// Samples that do not fill a complete block are dropped from the pass, so
// callers should pick block sizes dividing the partition sizes when full
// coverage matters. When the two distributions run out of full blocks at
// different times, the stream ends at the shorter one so every burst stays
// balanced.
type MatrixSource struct {
	p, q *mat.Dense

	blockSize      [2]int
	blocksPerBurst int
	blockwise      bool

	ratio     float64
	trainMode bool

	active bool
	cursor [2]int
}

// SourceOption configures a MatrixSource.
type SourceOption func(*MatrixSource)

// WithSourceBlockSize sets the per-block sample counts for P and Q.
// Unset (zero) sizes default to the full sample count of the distribution.
func WithSourceBlockSize(bx, by int) SourceOption {
	return func(s *MatrixSource) {
		s.blockSize[DistP] = bx
		s.blockSize[DistQ] = by
	}
}

// WithSourceBlocksPerBurst sets how many blocks per distribution one burst
// carries.
func WithSourceBlocksPerBurst(n int) SourceOption {
	return func(s *MatrixSource) {
		s.blocksPerBurst = n
	}
}

// NewMatrixSource builds a source over the P and Q sample matrices
// (rows = samples). Both must have the same number of feature columns.
func NewMatrixSource(p, q mat.Matrix, options ...SourceOption) (*MatrixSource, error) {
	np, dp := p.Dims()
	nq, dq := q.Dims()
	if dp != dq {
		return nil, errors.NewDimensionError("NewMatrixSource", dp, dq, 1)
	}
	if np == 0 || nq == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	s := &MatrixSource{
		p:              mat.DenseCopyOf(p),
		q:              mat.DenseCopyOf(q),
		blocksPerBurst: 1,
		blockwise:      true,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.blockSize[DistP] == 0 {
		s.blockSize[DistP] = np
	}
	if s.blockSize[DistQ] == 0 {
		s.blockSize[DistQ] = nq
	}

	if s.blockSize[DistP] < 0 || s.blockSize[DistP] > np {
		return nil, errors.NewValidationError("block_size_p", "must be in [1, num_samples]", s.blockSize[DistP])
	}
	if s.blockSize[DistQ] < 0 || s.blockSize[DistQ] > nq {
		return nil, errors.NewValidationError("block_size_q", "must be in [1, num_samples]", s.blockSize[DistQ])
	}
	if s.blocksPerBurst < 1 {
		return nil, errors.NewValidationError("blocks_per_burst", "must be at least 1", s.blocksPerBurst)
	}

	return s, nil
}

// Start implements Source.Start.
func (s *MatrixSource) Start() {
	s.active = true
	s.cursor[DistP] = 0
	s.cursor[DistQ] = 0
}

// End implements Source.End.
func (s *MatrixSource) End() {
	s.active = false
}

// Reset implements Source.Reset.
func (s *MatrixSource) Reset() {
	s.cursor[DistP] = 0
	s.cursor[DistQ] = 0
}

// Next implements Source.Next.
func (s *MatrixSource) Next() Burst {
	if !s.active {
		return Burst{}
	}

	if !s.blockwise {
		return s.nextWhole()
	}

	nBlocks := s.blocksPerBurst
	if left := s.fullBlocksLeft(DistP); left < nBlocks {
		nBlocks = left
	}
	if left := s.fullBlocksLeft(DistQ); left < nBlocks {
		nBlocks = left
	}
	if nBlocks == 0 {
		return Burst{}
	}

	b := Burst{
		P: make([]mat.Matrix, 0, nBlocks),
		Q: make([]mat.Matrix, 0, nBlocks),
	}
	for i := 0; i < nBlocks; i++ {
		b.P = append(b.P, s.sliceBlock(DistP))
		b.Q = append(b.Q, s.sliceBlock(DistQ))
	}
	return b
}

// nextWhole serves the single one-block burst of non-blockwise mode.
func (s *MatrixSource) nextWhole() Burst {
	if s.cursor[DistP] > 0 || s.cursor[DistQ] > 0 {
		return Burst{}
	}

	lenP := s.partitionLen(DistP)
	lenQ := s.partitionLen(DistQ)
	if lenP == 0 || lenQ == 0 {
		return Burst{}
	}

	s.cursor[DistP] = lenP
	s.cursor[DistQ] = lenQ

	return Burst{
		P: []mat.Matrix{s.slicePartition(DistP, 0, lenP)},
		Q: []mat.Matrix{s.slicePartition(DistQ, 0, lenQ)},
	}
}

// sliceBlock returns the next block view of distribution d and advances its
// cursor. Callers must have verified a full block remains.
func (s *MatrixSource) sliceBlock(d int) mat.Matrix {
	start := s.cursor[d]
	end := start + s.blockSize[d]
	s.cursor[d] = end
	return s.slicePartition(d, start, end)
}

// slicePartition views rows [from, to) of distribution d relative to the
// active partition.
func (s *MatrixSource) slicePartition(d, from, to int) mat.Matrix {
	base := s.partitionStart(d)
	m := s.matrixAt(d)
	_, cols := m.Dims()
	return m.Slice(base+from, base+to, 0, cols)
}

func (s *MatrixSource) matrixAt(d int) *mat.Dense {
	if d == DistP {
		return s.p
	}
	return s.q
}

func (s *MatrixSource) fullBlocksLeft(d int) int {
	remaining := s.partitionLen(d) - s.cursor[d]
	if remaining <= 0 {
		return 0
	}
	return remaining / s.blockSize[d]
}

// trainLen returns the training partition length of distribution d.
func (s *MatrixSource) trainLen(d int) int {
	n, _ := s.matrixAt(d).Dims()
	return int(math.Ceil(s.ratio * float64(n)))
}

// partitionStart returns the absolute row where the active partition of
// distribution d begins.
func (s *MatrixSource) partitionStart(d int) int {
	if s.ratio == 0 || s.trainMode {
		return 0
	}
	return s.trainLen(d)
}

// partitionLen returns the active partition length of distribution d.
func (s *MatrixSource) partitionLen(d int) int {
	n, _ := s.matrixAt(d).Dims()
	if s.ratio == 0 {
		return n
	}
	if s.trainMode {
		return s.trainLen(d)
	}
	return n - s.trainLen(d)
}

// BlockSizeAt implements Source.BlockSizeAt.
func (s *MatrixSource) BlockSizeAt(d int) int {
	return s.blockSize[d]
}

// NumSamplesAt implements Source.NumSamplesAt.
func (s *MatrixSource) NumSamplesAt(d int) int {
	return s.partitionLen(d)
}

// Blockwise implements Source.Blockwise.
func (s *MatrixSource) Blockwise() bool {
	return s.blockwise
}

// SetBlockwise implements Source.SetBlockwise. Toggling rewinds the stream.
func (s *MatrixSource) SetBlockwise(on bool) {
	if s.blockwise != on {
		s.blockwise = on
		s.Reset()
	}
}

// SetTrainTestRatio implements Source.SetTrainTestRatio. Ratios outside
// [0, 1) are ignored with a warning. Changing the ratio rewinds the stream.
func (s *MatrixSource) SetTrainTestRatio(r float64) {
	if r < 0 || r >= 1 || math.IsNaN(r) {
		errors.Warn(errors.NewValidationError("train_test_ratio", "must be in [0, 1); keeping previous value", r))
		return
	}
	if s.ratio != r {
		s.ratio = r
		s.Reset()
	}
}

// TrainTestRatio implements Source.TrainTestRatio.
func (s *MatrixSource) TrainTestRatio() float64 {
	return s.ratio
}

// SetTrainMode implements Source.SetTrainMode. Switching modes rewinds the
// stream.
func (s *MatrixSource) SetTrainMode(on bool) {
	if s.trainMode != on {
		s.trainMode = on
		s.Reset()
	}
}
