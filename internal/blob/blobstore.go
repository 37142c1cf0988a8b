// Package blob wraps the infra-backed artifact storage drivers behind a
// single construction surface. Other packages depend on blob.Store and never
// import the driver packages directly.
package blob

import (
	"context"

	"aquacore/internal/blob/core"
	"aquacore/internal/infra/blob/fs"
	"aquacore/internal/infra/blob/memory"
	s3store "aquacore/internal/infra/blob/s3"
)

type (
	// Store aliases the shared artifact store interface.
	Store = core.Store
	// Info aliases artifact metadata.
	Info = core.Info
	// PutOptions aliases Put parameters.
	PutOptions = core.PutOptions
	// SignedURLOptions aliases presign parameters.
	SignedURLOptions = core.SignedURLOptions
	// Driver aliases the backend identifier.
	Driver = core.Driver
)

// Re-exported driver identifiers.
const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// ErrUnsupported aliases the optional-capability error.
var ErrUnsupported = core.ErrUnsupported

// NewFilesystem returns a filesystem-backed store rooted at root.
func NewFilesystem(root string) (Store, error) { return fs.New(root) }

// NewMemory returns an in-memory store for tests and ephemeral runs.
func NewMemory() Store { return memory.New() }

// OpenS3FromEnv constructs the S3 driver from process environment.
func OpenS3FromEnv(ctx context.Context) (Store, error) { return s3store.OpenFromEnv(ctx) }
