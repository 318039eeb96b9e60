package storagemock

import "github.com/slok/blendeval/internal/storage"

// Repository mocks.
//go:generate mockery --case underscore --output . --outpkg storagemock --name Repository --structname MockRepository --srcpkg github.com/slok/blendeval/internal/storage

var _ storage.Repository = &MockRepository{}
