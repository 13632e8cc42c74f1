package memory

import (
	"io"
	"os"

	"github.com/csfalcao/magis/pkg/repository"
)

// UseCase provides maintenance operations over stored memories: listing,
// importance changes and soft deletion. Content itself is immutable.
type UseCase struct {
	repo   repository.Repository
	output io.Writer
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithOutput sets the output writer
func WithOutput(w io.Writer) Option {
	return func(uc *UseCase) {
		uc.output = w
	}
}

// New creates a new memory maintenance UseCase
func New(repo repository.Repository, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:   repo,
		output: os.Stdout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
