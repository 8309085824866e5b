package searcher

import (
	"context"
	"math"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"mado/experiments/metrics"
	"mado/game"
)

// Rough heap cost of one node with its move list and arcs, used to derive the
// node ceiling from physical memory.
const nodeFootprint = 512

const DefaultMemoryFraction = 0.5

type Option func(mcts *MCTS)

// MCTS searches with root parallelisation: every goroutine grows a private tree
// with a private random stream and the trees are merged once all of them finish.
// The merged tree is kept and re-rooted on the next call.
//
// An MCTS is not safe for concurrent use.
type MCTS struct {
	goroutines     int
	duration       time.Duration
	episodes       int
	exploration    float64
	playouts       int
	seed           uint64
	maxNodes       int
	memoryFraction float64
	searches       uint64
	tree           *Tree
	metrics        metrics.Collector
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

// WithEpisodes sets the number of iterations each goroutine runs.
func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.exploration = c
		}
	}
}

// WithPlayouts sets the number of random playouts averaged per iteration.
func WithPlayouts(playouts int) Option {
	return func(m *MCTS) {
		if playouts > 0 {
			m.playouts = playouts
		}
	}
}

// WithSeed fixes the base seed of the per-goroutine random streams.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		if seed != 0 {
			m.seed = seed
		}
	}
}

// WithMaxNodes caps the size of each goroutine's tree.
func WithMaxNodes(n int) Option {
	return func(m *MCTS) {
		if n > 0 {
			m.maxNodes = n
		}
	}
}

// WithMemoryFraction derives the node cap from a fraction of physical memory
// when no explicit cap is given. The fraction is per MCTS; callers running
// several searches at once must split it between them.
func WithMemoryFraction(fraction float64) Option {
	return func(m *MCTS) {
		if fraction > 0 && fraction <= 1 {
			m.memoryFraction = fraction
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(goroutines int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines:     max(goroutines, 1),
		exploration:    Exploration,
		playouts:       1,
		memoryFraction: DefaultMemoryFraction,
		metrics:        metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("search needs an episode or duration budget")
	}
	if m.seed == 0 {
		m.seed = frand.Uint64n(math.MaxUint64) + 1
	}
	if m.maxNodes == 0 {
		m.maxNodes = int(m.memoryFraction * float64(memory.TotalMemory()) / nodeFootprint)
	}
	return m
}

// SetBudget replaces the episode and duration budget for the following searches.
func (m *MCTS) SetBudget(episodes int, duration time.Duration) {
	if episodes <= 0 && duration <= 0 {
		panic("search needs an episode or duration budget")
	}
	m.episodes = max(episodes, 0)
	m.duration = max(duration, 0)
}

// Budget returns the episode and duration budget of the following searches. A
// zero value is unlimited.
func (m *MCTS) Budget() (episodes int, duration time.Duration) {
	return m.episodes, m.duration
}

// MaxNodes returns the node cap shared by the goroutines of one search.
func (m *MCTS) MaxNodes() int {
	return m.maxNodes
}

// Tree returns the tree kept from the last search, or nil.
func (m *MCTS) Tree() *Tree {
	return m.tree
}

// Reset discards the kept tree.
func (m *MCTS) Reset() {
	m.tree = nil
}

// FindMove searches position and returns the root move with the most visits.
func (m *MCTS) FindMove(ctx context.Context, position game.Position) (game.Move, metrics.SearchMetric) {
	policy, metric := m.Simulate(ctx, position)
	switch len(policy) {
	case 0: // Node ceiling reached before the root was expanded
		zerolog.Ctx(ctx).Warn().Msg("search expanded no root move, playing the first legal move")
		return position.LegalMoves()[0], metric
	case 1:
		for move := range policy {
			return move, metric
		}
	}
	return m.tree.BestMove(), metric
}

// Simulate runs the search from position until the episode budget, the duration
// or the context deadline is exhausted, whichever comes first. It returns the visit
// count of every expanded root move. A position with a single legal move is
// answered without searching.
func (m *MCTS) Simulate(ctx context.Context, position game.Position) (map[game.Move]float64, metrics.SearchMetric) {
	if position.Status().Terminal() {
		panic("cannot search a finished game")
	}
	logger := zerolog.Ctx(ctx)

	m.reroot(&position)
	m.metrics.Start(m.goroutines, m.playouts)

	if moves := position.LegalMoves(); len(moves) == 1 {
		m.metrics.SetNodes(m.tree.NodeCount())
		logger.Debug().Str("move", moves[0].String()).Msg("single legal move, skipping search")
		return map[game.Move]float64{moves[0]: 1}, m.metrics.Complete()
	}

	deadline := m.deadline(ctx)
	trees := make([]*Tree, m.goroutines)
	trees[0] = m.tree
	limit := max(m.maxNodes/m.goroutines, 1)

	g, gctx := errgroup.WithContext(ctx)
	for i := range trees {
		if i > 0 {
			trees[i] = NewTree(position, limit)
		}
		seed := m.seed + m.searches*uint64(m.goroutines) + uint64(i)
		w := &worker{
			tree:        trees[i],
			rng:         rand.New(rand.NewSource(seed)),
			exploration: m.exploration,
			playouts:    m.playouts,
			metrics:     m.metrics,
		}
		g.Go(func() error {
			n := w.run(gctx, position, m.episodes, deadline)
			logger.Debug().Int("worker", i).Int("episodes", n).Int("nodes", w.tree.NodeCount()).Msg("worker finished")
			return nil
		})
	}
	_ = g.Wait()
	m.searches++

	tree := trees[0]
	for _, t := range trees[1:] {
		tree = Merge(tree, t)
	}
	m.tree = tree
	m.metrics.SetNodes(tree.NodeCount())

	metric := m.metrics.Complete()
	logger.Info().
		Int("goroutines", m.goroutines).
		Int("episodes", metric.Episodes).
		Int("nodes", tree.NodeCount()).
		Dur("duration", metric.Duration).
		Msg("search complete")
	return tree.Policy(), metric
}

// reroot moves the kept tree to position, starting afresh when position was never
// reached by the previous search.
func (m *MCTS) reroot(position *game.Position) {
	limit := max(m.maxNodes/m.goroutines, 1)
	if m.tree != nil {
		if pruned := m.tree.Prune(position); pruned != nil {
			pruned.maxNodes = limit
			m.tree = pruned
			m.metrics.SetTreeReset(false)
			return
		}
	}
	m.tree = NewTree(*position, limit)
	m.metrics.SetTreeReset(true)
}

func (m *MCTS) deadline(ctx context.Context) time.Time {
	deadline, ok := ctx.Deadline()
	if m.duration > 0 {
		if d := time.Now().Add(m.duration); !ok || d.Before(deadline) {
			return d
		}
	}
	if ok {
		return deadline
	}
	return time.Time{}
}

// worker owns one tree and one random stream for the duration of a search.
type worker struct {
	tree        *Tree
	rng         *rand.Rand
	exploration float64
	playouts    int
	metrics     metrics.Collector
	path        []NodeID
	buf         []game.Move
}

// run iterates until the episode budget is spent or the deadline passes. An
// iteration that has started always completes, and at least one is run.
func (w *worker) run(ctx context.Context, root game.Position, episodes int, deadline time.Time) int {
	n := 0
	for n == 0 || !w.done(ctx, n, episodes, deadline) {
		w.iterate(root)
		w.metrics.AddEpisode()
		n++
	}
	return n
}

func (w *worker) done(ctx context.Context, n, episodes int, deadline time.Time) bool {
	switch {
	case episodes > 0 && n >= episodes:
		return true
	case ctx.Err() != nil:
		return true
	case !deadline.IsZero() && !time.Now().Before(deadline):
		return true
	}
	return false
}

func (w *worker) iterate(root game.Position) {
	t := w.tree
	pos := root
	id := t.root
	w.path = append(w.path[:0], id)

	// Selection
	for !pos.Status().Terminal() && len(t.nodes[id].untried) == 0 && len(t.nodes[id].out) > 0 {
		arc := t.arcs[t.SelectChildUCT(id, w.exploration, w.rng)]
		pos.Play(arc.Move)
		id = arc.Child
		w.path = append(w.path, id)
	}

	// Expansion
	if !pos.Status().Terminal() && len(t.nodes[id].untried) > 0 {
		if t.Full() {
			w.metrics.HaltExpansion()
		} else {
			move := t.popUntried(id, w.rng)
			pos.Play(move)
			_, id = t.GetOrCreateChild(id, move, &pos)
			w.path = append(w.path, id)
		}
	}

	t.backup(w.path, w.rollout(&pos))
}

// rollout returns the mean reward for PlayerA over the configured number of
// random playouts from pos.
func (w *worker) rollout(pos *game.Position) float64 {
	if pos.Status().Terminal() {
		return rewardA(pos.Status())
	}
	total := 0.0
	for i := 0; i < w.playouts; i++ {
		p := *pos
		var status game.Status
		status, w.buf = p.Rollout(w.rng, w.buf)
		w.metrics.AddFullPlayout()
		total += rewardA(status)
	}
	return total / float64(w.playouts)
}
