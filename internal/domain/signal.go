package domain

// SignalKind tags the messages a running job emits.
type SignalKind int

const (
	// SignalLine carries one diagnostic line from the encoder, relayed
	// in emission order while the process is still running.
	SignalLine SignalKind = iota
	// SignalOutputSize reports the produced file size. Absent when the
	// output file does not exist after the run.
	SignalOutputSize
	// SignalDone is always the final signal of a job's stream. Err is
	// set when the job failed (probe, spawn or non-zero encoder exit).
	SignalDone
)

// Signal is one message on a job's runner-to-supervisor stream.
type Signal struct {
	Kind       SignalKind
	Line       string
	OutputSize int64
	Err        error
}

func LineSignal(text string) Signal { return Signal{Kind: SignalLine, Line: text} }

func OutputSizeSignal(size int64) Signal { return Signal{Kind: SignalOutputSize, OutputSize: size} }

func DoneSignal(err error) Signal { return Signal{Kind: SignalDone, Err: err} }
