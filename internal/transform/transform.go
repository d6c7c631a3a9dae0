// Package transform holds the named, in-process transforms a pipeline can
// apply between source and sink. Transforms are pure functions: the same
// record always yields the same result, and redelivered records are safe to
// run through them again.
package transform

import (
	"fmt"

	"relay/stream"
)

var registry = map[string]stream.Transform{}

// Register is called from each transform's init().
func Register(name string, fn stream.Transform) {
	registry[name] = fn
}

// New returns a transform by name.
func New(name string) (stream.Transform, error) {
	if fn, ok := registry[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("transform: unknown transform %q", name)
}
