package stream

import "time"

// Record is one unit of data pulled from the input topic. It carries the
// opaque payload plus the position it was read from. Records are read-only
// once handed to the pipeline.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string][]byte
	Timestamp time.Time
}

// Status classifies the outcome of applying a Transform to one Record.
type Status int8

const (
	StatusEmit Status = iota // record transformed; publish Record
	StatusDrop               // record intentionally discarded; offset still advances
	StatusError              // record could not be interpreted; offset must not advance
)

func (s Status) String() string {
	switch s {
	case StatusEmit:
		return "emit"
	case StatusDrop:
		return "drop"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the typed outcome of a Transform: exactly one of
// Emit(Record), Drop, or Error(reason).
type Result struct {
	Status Status
	Record Record
	Err    error
}

func Emit(rec Record) Result { return Result{Status: StatusEmit, Record: rec} }

func Drop() Result { return Result{Status: StatusDrop} }

func Fail(err error) Result { return Result{Status: StatusError, Err: err} }

// Transform maps one input Record to a Result. Implementations must be
// deterministic, total over malformed input (return Fail, never panic), and
// free of side effects so the loop can safely re-apply them after a
// crash-restart redelivery.
type Transform func(Record) Result
