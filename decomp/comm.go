package decomp

// Op identifies a reduction operation applied across all ranks.
type Op int

const (
	OpSum Op = iota // Elementwise sum
	OpMax           // Elementwise maximum
	OpMin           // Elementwise minimum
)

// Communicator abstracts the process group a mesh is decomposed over.
// All mesh construction and index-set operations are collective: every
// rank in the group must call them in the same order with consistent
// parameters. A real MPI binding satisfies this interface; SelfComm is
// the single-process implementation used when no runtime is attached.
type Communicator interface {
	// Size returns the number of ranks in the group.
	Size() int

	// Rank returns the caller's rank, in [0, Size).
	Rank() int

	// AllreduceInt reduces vals elementwise across all ranks and
	// returns the result on every rank.
	AllreduceInt(op Op, vals []int) []int

	// Barrier blocks until all ranks have entered it.
	Barrier()
}

// SelfComm is the trivial single-rank communicator: rank 0 of 1,
// reductions are identities and barriers return immediately.
type SelfComm struct{}

func (SelfComm) Size() int { return 1 }

func (SelfComm) Rank() int { return 0 }

func (SelfComm) AllreduceInt(op Op, vals []int) []int {
	out := make([]int, len(vals))
	copy(out, vals)
	return out
}

func (SelfComm) Barrier() {}
