package data

// Distribution indices for the two-sample setting.
const (
	DistP = 0
	DistQ = 1
)

// Source streams samples from the two distributions in bursts.
//
// A streaming session runs Start, a sequence of Next calls until an empty
// Burst, then End. The stream is finite and single-pass; Reset rewinds it so
// a new session can replay the same data (required by multi-pass operations
// such as null sampling and kernel selection).
//
// Sources are driven by a single goroutine; implementations need no internal
// locking.
type Source interface {
	// Start begins a streaming session from the start of the active
	// partition.
	Start()

	// Next returns the next burst, or an empty burst once the stream is
	// exhausted (and on every later call until Reset or Start).
	Next() Burst

	// End closes the streaming session.
	End()

	// Reset rewinds the stream to the start of the active partition.
	Reset()

	// BlockSizeAt returns the per-block sample count of distribution d.
	BlockSizeAt(d int) int

	// NumSamplesAt returns the total sample count of distribution d in the
	// active partition (the training or test split when a split ratio is
	// set, the full data otherwise).
	NumSamplesAt(d int) int

	// Blockwise reports whether the source streams fixed-size blocks.
	Blockwise() bool

	// SetBlockwise toggles blockwise streaming. When off, the source yields
	// a single burst holding one block per distribution with the whole
	// active partition.
	SetBlockwise(on bool)

	// SetTrainTestRatio reserves the leading fraction r of each
	// distribution for training. r must lie in [0, 1); 0 disables the
	// split.
	SetTrainTestRatio(r float64)

	// TrainTestRatio returns the current split ratio.
	TrainTestRatio() float64

	// SetTrainMode selects the training partition (true) or the test
	// partition (false) as the active one. Without a split ratio the full
	// data stays active in both modes.
	SetTrainMode(on bool)
}
