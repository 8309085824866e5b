package metrics

import (
	"sync/atomic"
	"time"

	"mado/game"
)

type SearchMetric struct {
	Goroutines      int
	Duration        time.Duration
	Episodes        int
	Playouts        int // Random playouts per episode
	FullPlayouts    int
	Nodes           int
	IsTreeReset     bool
	ExpansionHalted bool
}

type MoveMetric struct {
	Step   int
	Player game.Cell
	Move   game.Move
	SearchMetric
}

type GameMetric struct {
	StartingPlayer game.Cell
	Result         game.Status
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

// PositionSample is a snapshot of a position taken during self-play.
type PositionSample struct {
	Step   int
	Hash   uint64
	Pieces int
	Slides int
	Board  string
}

type Collector interface {
	Start(goroutines, playouts int)
	SetTreeReset(value bool)
	SetNodes(n int)
	HaltExpansion()
	AddFullPlayout()
	AddEpisode()
	Complete() SearchMetric
}

type collector struct {
	goroutines      int
	playouts        int
	startTime       time.Time
	episodes        atomic.Int64
	fullPlayouts    atomic.Int64
	nodes           atomic.Int64
	isTreeReset     atomic.Bool
	expansionHalted atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

// Start resets the counters for a new search.
func (m *collector) Start(goroutines, playouts int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.playouts = playouts
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
	m.nodes.Store(0)
	m.expansionHalted.Store(false)
}

func (m *collector) SetNodes(n int) {
	m.nodes.Store(int64(n))
}

func (m *collector) HaltExpansion() {
	m.expansionHalted.Store(true)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:      m.goroutines,
		Duration:        time.Since(m.startTime),
		Episodes:        int(m.episodes.Load()),
		Playouts:        m.playouts,
		FullPlayouts:    int(m.fullPlayouts.Load()),
		Nodes:           int(m.nodes.Load()),
		IsTreeReset:     m.isTreeReset.Load(),
		ExpansionHalted: m.expansionHalted.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, playouts int) {}
func (m *dummyCollector) SetTreeReset(value bool)        {}
func (m *dummyCollector) SetNodes(n int)                 {}
func (m *dummyCollector) HaltExpansion()                 {}
func (m *dummyCollector) AddFullPlayout()                {}
func (m *dummyCollector) AddEpisode()                    {}
func (m *dummyCollector) Complete() SearchMetric         { return SearchMetric{} }
