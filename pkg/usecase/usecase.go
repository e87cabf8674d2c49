package usecase

import (
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/service/benchmark"
	"github.com/revlens-lab/revlens/pkg/service/catalog"
	"github.com/revlens-lab/revlens/pkg/service/detect"
	"github.com/revlens-lab/revlens/pkg/service/evaluation"
	"github.com/revlens-lab/revlens/pkg/service/rollup"
	"github.com/revlens-lab/revlens/pkg/service/simulation"
)

// UseCases bundles the application operations exposed by the HTTP
// controller and the CLI
type UseCases struct {
	repo     interfaces.Repository
	detector interfaces.Detector
	notifier interfaces.Notifier
	archiver interfaces.Archiver

	resolver   *catalog.Resolver
	evaluator  *evaluation.Writer
	aggregator *rollup.Aggregator
	simulator  *simulation.Runner
	calculator *benchmark.Calculator
}

type Option func(*UseCases)

// WithDetector replaces the default rule-based detection engine
func WithDetector(d interfaces.Detector) Option {
	return func(uc *UseCases) {
		uc.detector = d
	}
}

// WithNotifier enables early-warning dispatch to an external channel
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithArchiver enables snapshot archival before pruning
func WithArchiver(a interfaces.Archiver) Option {
	return func(uc *UseCases) {
		uc.archiver = a
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		detector: detect.New(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	var evalOpts []evaluation.Option
	if uc.notifier != nil {
		evalOpts = append(evalOpts, evaluation.WithNotifier(uc.notifier))
	}

	uc.resolver = catalog.NewResolver(repo.Catalog())
	uc.evaluator = evaluation.New(repo, uc.detector, evalOpts...)
	uc.aggregator = rollup.New(repo)
	uc.simulator = simulation.New(repo)
	uc.calculator = benchmark.New(repo)

	return uc
}
