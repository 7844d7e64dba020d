// Package demo holds the catalog shared by cmd/nadam-host and
// cmd/nadam-device, the two-process worked example restored from
// original_source/example (processA.c / processB.c): two variable-size
// string messages and one fixed-size heartbeat.
package demo

import (
	"github.com/tez-capital/nadam/nadam"
	"github.com/tez-capital/nadam/internal/catalogdef"
)

const (
	MaxStringLen  = 100
	HeartbeatSize = 8 // a little-endian float64 timestamp, mirroring Bar.duration
)

// Specs is the human-authored definition of the demo catalog, in the
// same shape cmd/nadam-gen consumes from TOML.
var Specs = []catalogdef.Spec{
	catalogdef.Variable("ping", MaxStringLen),
	catalogdef.Variable("pong", MaxStringLen),
	catalogdef.Fixed("heartbeat", HeartbeatSize),
}

// NewCatalog builds the nadam.Catalog both example binaries install.
func NewCatalog() (*nadam.Catalog, error) {
	descriptors, err := catalogdef.Resolve(Specs)
	if err != nil {
		return nil, err
	}

	out := make([]nadam.MessageDescriptor, len(descriptors))
	for i, d := range descriptors {
		size := nadam.Fixed(d.Total)
		if d.Variable {
			size = nadam.Variable(d.Max)
		}
		out[i] = nadam.MessageDescriptor{Name: d.Name, Size: size, Hash: d.Hash}
	}

	return nadam.NewCatalog(out)
}
