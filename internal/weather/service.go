package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service owns the dashboard state. It is the only writer: every change of
// place or measurement system starts a fetch cycle, and consumers read copies
// through State or Subscribe.
//
// Overlapping cycles are resolved by cancel-and-restart. Each cycle takes a
// generation number; starting a new one cancels the previous cycle's context,
// and a cycle whose generation is no longer current is discarded at commit.
type Service struct {
	client Client
	store  Store

	mu         sync.RWMutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	baseCtx    context.Context
	closed     bool
	subs       map[int]chan State
	nextSub    int

	wg sync.WaitGroup
}

// NewService creates a new Service for the given default place and system.
// store may be nil when no history is kept.
func NewService(client Client, store Store, place Place, system MeasurementSystem) *Service {
	if !system.Valid() {
		system = SystemAuto
	}
	return &Service{
		client: client,
		store:  store,
		state: State{
			Place:             place,
			MeasurementSystem: system,
			Loading:           true,
			Hourly:            []Period{},
			Daily:             []Period{},
		},
		subs: make(map[int]chan State),
	}
}

// Start runs the initial fetch cycle for the default place and system.
// Cycles triggered afterwards derive their context from ctx.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	s.trigger()
}

// Close cancels the running cycle and waits for background cycles to return.
// A cycle cut short by Close is discarded rather than committed as a failure.
// Subscriber channels are closed, so consumers ranging over them return.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// State returns a copy of the current dashboard state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe returns a channel that receives every published state. Slow
// readers only see the newest one. The returned func unsubscribes; the
// channel is closed by Close. Subscribing after Close yields a closed channel.
func (s *Service) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetPlace selects a new place and starts a fetch cycle if it changed.
func (s *Service) SetPlace(p Place) error {
	if p.ID == "" {
		return fmt.Errorf("place id is required")
	}

	s.mu.Lock()
	if s.state.Place == p {
		s.mu.Unlock()
		return nil
	}
	s.state.Place = p
	s.mu.Unlock()

	log.Printf("INFO: place changed to %s (%s)", p.ID, p.Name)
	s.trigger()
	return nil
}

// SetMeasurementSystem selects a new unit system and starts a fetch cycle if
// it changed.
func (s *Service) SetMeasurementSystem(m MeasurementSystem) error {
	if !m.Valid() {
		return fmt.Errorf("unknown measurement system %q", m)
	}

	s.mu.Lock()
	if s.state.MeasurementSystem == m {
		s.mu.Unlock()
		return nil
	}
	s.state.MeasurementSystem = m
	s.mu.Unlock()

	log.Printf("INFO: measurement system changed to %s", m)
	s.trigger()
	return nil
}

// Refresh starts a fetch cycle for the current place and system.
func (s *Service) Refresh() {
	s.trigger()
}

// SearchPlaces delegates to the client.
func (s *Service) SearchPlaces(ctx context.Context, text string) ([]Place, error) {
	return s.client.SearchPlaces(ctx, text)
}

// GetLatest returns the newest completed cycle recorded for place and system.
func (s *Service) GetLatest(place Place, system MeasurementSystem) (Snapshot, error) {
	if s.store == nil {
		return Snapshot{}, fmt.Errorf("no history store configured")
	}
	return s.store.GetLatest(place, system)
}

// GetRange returns completed cycles recorded for place and system between from and to.
func (s *Service) GetRange(place Place, system MeasurementSystem, from, to time.Time) ([]Snapshot, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no history store configured")
	}
	return s.store.GetRange(place, system, from, to)
}

func (s *Service) trigger() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	ctx := s.baseCtx
	s.wg.Add(1)
	s.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		defer s.wg.Done()
		s.RunFetchCycle(ctx)
	}()
}

// RunFetchCycle fetches current, hourly and daily weather for the current
// place and system, in that order, and commits the outcome. It cancels any
// cycle still in flight and returns the state after commit.
func (s *Service) RunFetchCycle(ctx context.Context) State {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cycleID := uuid.NewString()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.generation++
	gen := s.generation
	place, system := s.state.Place, s.state.MeasurementSystem
	s.state.Loading = true
	s.state.Error = ""
	s.state.ErrorKind = nil
	s.state.CycleID = cycleID
	s.publishLocked()
	s.mu.Unlock()

	log.Printf("DEBUG: fetch cycle %s started for %s (%s)", cycleID, place.ID, system)

	res, err := s.fetchCycle(ctx, cycleID, place.ID, system)
	return s.commit(gen, cycleID, place, system, res, err)
}

type cycleResult struct {
	units   UnitSet
	current CurrentWeather
	hourly  []Period
	daily   []Period
}

func (s *Service) fetchCycle(ctx context.Context, cycleID, placeID string, system MeasurementSystem) (cycleResult, error) {
	var res cycleResult

	cw, err := s.client.FetchWeather(ctx, EndpointCurrent, placeID, system)
	if err != nil {
		return res, err
	}
	if cw == nil {
		return res, &Error{Kind: KindEmptyResponse, Op: string(EndpointCurrent)}
	}
	if cw.Current == nil {
		log.Printf("ERROR: fetch cycle %s: current weather response has no \"current\" property", cycleID)
		return res, &Error{
			Kind: KindSchema,
			Op:   string(EndpointCurrent),
			Err:  errors.New(`current weather data is missing "current" property`),
		}
	}
	res.current = *cw.Current
	res.units = LookupUnits(cw.Units)
	if res.units.IsZero() {
		log.Printf("WARN: fetch cycle %s: unknown unit system %q", cycleID, cw.Units)
	}

	res.hourly, err = s.fetchSeries(ctx, cycleID, EndpointHourly, placeID, system)
	if err != nil {
		return res, err
	}

	res.daily, err = s.fetchSeries(ctx, cycleID, EndpointDaily, placeID, system)
	if err != nil {
		return res, err
	}

	return res, nil
}

// fetchSeries tolerates a response without the nested series by returning an
// empty one; client errors still fail the cycle.
func (s *Service) fetchSeries(ctx context.Context, cycleID string, endpoint Endpoint, placeID string, system MeasurementSystem) ([]Period, error) {
	resp, err := s.client.FetchWeather(ctx, endpoint, placeID, system)
	if err != nil {
		return nil, err
	}

	var series *Series
	if resp != nil {
		switch endpoint {
		case EndpointHourly:
			series = resp.Hourly
		case EndpointDaily:
			series = resp.Daily
		}
	}
	if series == nil || series.Data == nil {
		log.Printf("WARN: fetch cycle %s: %s forecast data is missing or invalid", cycleID, endpoint)
		return []Period{}, nil
	}
	return series.Data, nil
}

func (s *Service) commit(gen uint64, cycleID string, place Place, system MeasurementSystem, res cycleResult, err error) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		log.Printf("DEBUG: discarding stale fetch cycle %s for %s", cycleID, place.ID)
		return s.state.clone()
	}
	s.cancel = nil

	now := time.Now().UTC()
	s.state.Loading = false
	s.state.UpdatedAt = now

	if err != nil {
		kind := KindOf(err)
		s.state.Error = err.Error()
		s.state.ErrorKind = &kind
		s.state.Units = UnitSet{}
		s.state.Current = CurrentWeather{}
		s.state.Hourly = []Period{}
		s.state.Daily = []Period{}
		log.Printf("ERROR: fetch cycle %s failed for %s (%s): %v", cycleID, place.ID, system, err)
		s.publishLocked()
		return s.state.clone()
	}

	s.state.Error = ""
	s.state.ErrorKind = nil
	s.state.Units = res.units
	s.state.Current = res.current
	s.state.Hourly = res.hourly
	s.state.Daily = res.daily

	if s.store != nil {
		s.store.SaveSnapshot(Snapshot{
			CycleID:           cycleID,
			Place:             place,
			MeasurementSystem: system,
			Units:             res.units,
			Current:           res.current,
			Hourly:            res.hourly,
			Daily:             res.daily,
			Timestamp:         now,
		})
	}

	log.Printf("DEBUG: fetch cycle %s completed for %s: hourly %s, daily %s", cycleID, place.ID, seriesSpan(res.hourly), seriesSpan(res.daily))
	s.publishLocked()
	return s.state.clone()
}

// seriesSpan describes a forecast series by its length and time range.
func seriesSpan(periods []Period) string {
	if len(periods) == 0 {
		return "empty"
	}
	first, err := periods[0].Time()
	if err != nil {
		return fmt.Sprintf("%d entries", len(periods))
	}
	last, err := periods[len(periods)-1].Time()
	if err != nil {
		return fmt.Sprintf("%d entries from %s", len(periods), first.Format(time.DateTime))
	}
	return fmt.Sprintf("%d entries %s..%s", len(periods), first.Format(time.DateTime), last.Format(time.DateTime))
}

// publishLocked sends the current state to every subscriber, replacing any
// unread value. Callers must hold s.mu.
func (s *Service) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	st := s.state.clone()
	for _, ch := range s.subs {
		select {
		case ch <- st:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
