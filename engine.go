// Package engine is the planner facade: it orchestrates feed loading
// and the nearby/direct/transfer/itinerary stages behind a small
// synchronous query surface.
package engine

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"busplan.dev/engine/config"
	"busplan.dev/engine/index"
	"busplan.dev/engine/itinerary"
	"busplan.dev/engine/loader"
	"busplan.dev/engine/model"
	"busplan.dev/engine/search"
)

// State is the engine-level load state.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateDisabled State = "disabled"
)

// ErrNotReady is returned by operations that require a Ready engine
// when it is still Unloaded or Loading.
var ErrNotReady = errors.New("engine: not ready")

// ErrDisabled is returned by operations on an engine whose feed
// failed to load at startup.
var ErrDisabled = errors.New("engine: disabled, feed failed to load")

// Status is a snapshot of the engine's load state, safe to read
// concurrently with queries.
type Status struct {
	State State
	Err   error
	Stats *loader.Stats
}

// Engine is the Planner Facade. The zero value is not usable; build
// one with New.
type Engine struct {
	cfg    *config.Config
	logger *zap.Logger
	opts   itinerary.Options

	mu      sync.RWMutex
	state   State
	loadErr error
	stats   *loader.Stats
	idx     *index.Index
}

// New constructs an Engine in state Unloaded; call Load to populate it.
func New(cfg *config.Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		state:  StateUnloaded,
		opts: itinerary.Options{
			WalkSpeedMetersPerMin: cfg.WalkSpeedMPerMin,
			FareBasePerLeg:        cfg.FareBasePerLeg,
			FarePerStop:           cfg.FarePerStop,
			KmPerStopEstimate:     cfg.KmPerStopEstimate,
		},
	}
}

// Load reads the GTFS feed at cfg.GTFSPath and builds the in-memory
// index. On failure the engine transitions to Disabled rather than
// panicking or leaving stale state; the caller observes this via
// Status/IsReady, not via the returned error alone.
func (e *Engine) Load() error {
	e.setState(StateLoading, nil, nil)

	l := loader.New(e.cfg.GTFSPath, e.logger)
	feed, stats, err := l.Load()
	if err != nil {
		e.logger.Error("feed load failed, engine disabled", zap.Error(err))
		e.setState(StateDisabled, err, stats)
		return err
	}

	idx := index.Build(feed)
	e.mu.Lock()
	e.idx = idx
	e.mu.Unlock()
	e.setState(StateReady, nil, stats)

	e.logger.Info("feed loaded",
		zap.Int("stops", len(feed.Stops)),
		zap.Int("trips", len(feed.Trips)),
		zap.Int("routes", len(feed.Routes)),
		zap.Int("stop_times", len(feed.StopTimes)),
	)
	return nil
}

func (e *Engine) setState(s State, err error, stats *loader.Stats) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
	e.loadErr = err
	if stats != nil {
		e.stats = stats
	}
}

// IsReady reports whether the engine can serve queries.
func (e *Engine) IsReady() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == StateReady
}

// RequireReady returns ErrDisabled or ErrNotReady when the engine
// cannot serve queries, nil otherwise. FindRoutes never surfaces
// these to its caller; this accessor exists for operators who want
// the reason rather than a silent empty list.
func (e *Engine) RequireReady() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	switch e.state {
	case StateReady:
		return nil
	case StateDisabled:
		return ErrDisabled
	default:
		return ErrNotReady
	}
}

// Status returns a snapshot of the engine's current load state.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{State: e.state, Err: e.loadErr, Stats: e.stats}
}

// FindRoutes orchestrates the nearby-stop finder, direct-route
// searcher, transfer-route searcher and itinerary assembler. Queries
// against an engine that is not Ready return an empty list; no error
// surfaces to the caller.
func (e *Engine) FindRoutes(pickup, drop model.Coordinate) []model.Itinerary {
	start := time.Now()
	queryID := uuid.NewString()

	e.mu.RLock()
	idx := e.idx
	state := e.state
	e.mu.RUnlock()

	if state != StateReady || idx == nil {
		e.logger.Warn("query against non-ready engine",
			zap.String("query_id", queryID),
			zap.String("state", string(state)),
			zap.Error(e.RequireReady()),
		)
		return nil
	}

	pickups := search.Nearby(idx, pickup.Lat, pickup.Lng, e.cfg.NearbyLimit, e.cfg.MaxNearbyKm)
	drops := search.Nearby(idx, drop.Lat, drop.Lng, e.cfg.NearbyLimit, e.cfg.MaxNearbyKm)

	direct := search.FindDirect(idx, pickups, drops, e.cfg.MaxResults)

	var itineraries []model.Itinerary
	for _, d := range direct {
		itineraries = append(itineraries, itinerary.AssembleDirect(idx, e.opts, pickup, drop, d))
	}

	// Transfer search is skipped once direct search already filled
	// the result budget.
	transferCount := 0
	if len(direct) < e.cfg.MaxResults {
		transfers := search.FindTransfer(idx, pickups, drops, e.cfg.MaxResults, e.cfg.TopStopsForTransfer)
		transferCount = len(transfers)
		for _, tr := range transfers {
			itineraries = append(itineraries, itinerary.AssembleTransfer(idx, e.opts, pickup, drop, tr))
		}
	}

	rankItineraries(itineraries)
	if len(itineraries) > e.cfg.MaxResults {
		itineraries = itineraries[:e.cfg.MaxResults]
	}

	e.logger.Info("query complete",
		zap.String("query_id", queryID),
		zap.Int("direct_count", len(direct)),
		zap.Int("transfer_count", transferCount),
		zap.Int("returned", len(itineraries)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return itineraries
}

// rankItineraries sorts by ascending total-duration-minutes (parsed
// from the leading integer of the duration string), ties broken by
// fewer stops then lexicographically smaller route name.
func rankItineraries(its []model.Itinerary) {
	sort.SliceStable(its, func(i, j int) bool {
		di, dj := leadingMinutes(its[i].Duration), leadingMinutes(its[j].Duration)
		if di != dj {
			return di < dj
		}
		if its[i].StopCount != its[j].StopCount {
			return its[i].StopCount < its[j].StopCount
		}
		return its[i].RouteName < its[j].RouteName
	})
}

func leadingMinutes(duration string) int {
	fields := strings.Fields(duration)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
