package world

// Importer produces world changes off the update thread. The world calls
// BeginProcessing once, then polls IsDoneProcessing every Update and collects the
// result with FinishProcessing.
type Importer interface {
	// BeginProcessing starts the work. Must not block.
	BeginProcessing()

	// IsDoneProcessing reports whether FinishProcessing will return without blocking.
	IsDoneProcessing() bool

	// FinishProcessing returns the produced changes.
	//
	// Returns:
	//   - []WorldChange: the changes to queue, in order
	//   - error: common.ErrLoaderNotDone when called early, or the import failure
	FinishProcessing() ([]WorldChange, error)
}

// FileLoader creates the importer for a LoadFile change.
type FileLoader func(path string, labels []string) Importer
