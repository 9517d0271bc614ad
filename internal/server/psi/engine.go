// Package psi orchestrates the two-phase handshake with the external PSI
// engine. The engine itself is an opaque collaborator: this package never
// interprets the binary messages it produces, it only moves them between
// their hex wire form and the engine.
package psi

import (
	"context"
	"errors"
	"fmt"
)

// RevealMode controls what a completed exchange discloses.
type RevealMode string

const (
	// RevealElements discloses the matching items themselves
	RevealElements RevealMode = "elements"
	// RevealSize discloses only the intersection cardinality
	RevealSize RevealMode = "size"
)

// Valid reports whether the reveal mode is known.
func (m RevealMode) Valid() bool {
	return m == RevealElements || m == RevealSize
}

// ContainerMode selects how the server set is encoded before setup.
// The encoding is delegated entirely to the engine.
type ContainerMode string

const (
	// ContainerRaw is a plain encrypted list
	ContainerRaw ContainerMode = "raw"
	// ContainerCompressed is a compressed bit container (GCS)
	ContainerCompressed ContainerMode = "compressed"
	// ContainerProbabilistic is a probabilistic filter (Bloom); the only
	// mode for which the false-positive rate is meaningful
	ContainerProbabilistic ContainerMode = "probabilistic"
)

// Valid reports whether the container mode is known.
func (m ContainerMode) Valid() bool {
	switch m {
	case ContainerRaw, ContainerCompressed, ContainerProbabilistic:
		return true
	}
	return false
}

// Config is the process-lifetime PSI configuration. It is fixed at startup;
// changing it requires a restart.
type Config struct {
	Reveal            RevealMode
	Container         ContainerMode
	FalsePositiveRate float64
}

// Validate checks the configuration for startup.
func (c Config) Validate() error {
	if !c.Reveal.Valid() {
		return fmt.Errorf("invalid reveal mode %q (want elements or size)", c.Reveal)
	}
	if !c.Container.Valid() {
		return fmt.Errorf("invalid container mode %q (want raw, compressed or probabilistic)", c.Container)
	}
	if c.FalsePositiveRate <= 0 {
		return fmt.Errorf("false-positive rate must be positive, got %g", c.FalsePositiveRate)
	}
	return nil
}

// ErrEngineFailure marks an opaque rejection by the external PSI engine.
// Handshake messages are not safely replayable, so callers must not retry.
var ErrEngineFailure = errors.New("psi engine failure")

// Engine is the contract of the external PSI engine. Both operations are
// pure functions of their inputs plus the engine's fixed private key, which
// is generated once at engine startup and held for the process lifetime.
//
// Implementations must be safe for concurrent use; if the underlying engine
// is not reentrant the implementation serializes its own calls.
type Engine interface {
	// CreateSetupMessage encodes the server item set for a client holding
	// numClientInputs items, returning the opaque setup message.
	CreateSetupMessage(ctx context.Context, fpr float64, numClientInputs int, items []string) ([]byte, error)

	// ProcessRequest evaluates an opaque client request against the encoded
	// set and returns the opaque response message.
	ProcessRequest(ctx context.Context, request []byte) ([]byte, error)

	// Close releases the engine and its key material.
	Close() error
}
