package kinematics

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/kinstate/logging"
)

type registryEntry struct {
	chain  *Chain
	solver *ChainSolver
}

// Registry owns the chains built from a tree, keyed by tip frame, each with its bound solver.
type Registry struct {
	mu      sync.RWMutex
	tree    TreeProvider
	root    string
	opts    []SolverOption
	entries map[string]registryEntry
	logger  logging.Logger
}

// NewRegistry returns an empty registry over the tree with chains starting at root. The solver
// options are applied to every solver the registry creates.
func NewRegistry(tree TreeProvider, root string, logger logging.Logger, opts ...SolverOption) *Registry {
	return &Registry{
		tree:    tree,
		root:    root,
		opts:    opts,
		entries: map[string]registryEntry{},
		logger:  logger,
	}
}

// Root returns the root frame shared by every chain.
func (r *Registry) Root() string {
	return r.root
}

// CreateChain builds the chain from the root to tip and binds a solver to it. Requesting a tip
// twice logs a warning and returns the existing chain along with ErrChainExists.
func (r *Registry) CreateChain(tip string) (*Chain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[tip]; ok {
		r.logger.Warnw("chain already exists, not creating it again", "root", r.root, "tip", tip)
		return entry.chain, errors.Wrapf(ErrChainExists, "tip %q", tip)
	}

	segments, err := r.tree.ChainBetween(r.root, tip)
	if err != nil {
		// Both sentinels stay matchable: ErrNoSuchPath and whatever the tree reported.
		return nil, multierr.Combine(ErrNoSuchPath, errors.Wrapf(err, "from %q to %q", r.root, tip))
	}
	chain, err := NewChain(r.root, tip, segments)
	if err != nil {
		return nil, err
	}
	r.entries[tip] = registryEntry{chain: chain, solver: NewChainSolver(chain, r.opts...)}
	r.logger.Debugw("created chain", "root", r.root, "tip", tip, "joints", chain.JointNames())
	return chain, nil
}

// Get returns the chain and solver for tip.
func (r *Registry) Get(tip string) (*Chain, *ChainSolver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[tip]
	if !ok {
		return nil, nil, errors.Wrapf(ErrChainNotFound, "tip %q", tip)
	}
	return entry.chain, entry.solver, nil
}

// Tips returns the sorted tip names of every created chain.
func (r *Registry) Tips() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tips := lo.Keys(r.entries)
	sort.Strings(tips)
	return tips
}
