package optimizermock

import "github.com/slok/blendeval/internal/optimizer"

// Client mocks.
//go:generate mockery --case underscore --output . --outpkg optimizermock --name Client --structname MockClient --srcpkg github.com/slok/blendeval/internal/optimizer

var _ optimizer.Client = &MockClient{}
