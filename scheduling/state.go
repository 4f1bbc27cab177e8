package scheduling

import "sync"

// SchedulerState is the explicit, owned alternative to a package-level
// mutable singleton: one value holding the tracks map, the pattern
// registry, the channel allocator, and the engine, constructed once at
// startup and shared by pointer with the Applier. Each Track's Scheduler is
// handed the engine, registry, and allocator this value holds. Nothing in
// this package reaches for a global.
type SchedulerState struct {
	engine   Engine
	registry *Registry
	channels *ChannelAllocator
	bufferMs int

	mu     sync.Mutex
	tracks map[int]*trackWorker
}

type trackWorker struct {
	track     *Track
	scheduler *Scheduler
}

// NewSchedulerState builds a state bound to engine, with availableChannels
// as the melodic channel pool and bufferMs as the JIT lead time every
// track's Scheduler and Expander enforce.
func NewSchedulerState(engine Engine, availableChannels []uint8, bufferMs int) *SchedulerState {
	return &SchedulerState{
		engine:   engine,
		registry: NewRegistry(),
		channels: NewChannelAllocator(availableChannels),
		bufferMs: bufferMs,
		tracks:   make(map[int]*trackWorker),
	}
}

func (s *SchedulerState) Engine() Engine              { return s.engine }
func (s *SchedulerState) Registry() *Registry         { return s.registry }
func (s *SchedulerState) Channels() *ChannelAllocator { return s.channels }

// Track returns number's Track, spawning its Scheduler worker goroutine on
// first reference. Tracks live for the process's duration once created.
func (s *SchedulerState) Track(number int) *Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	tw, ok := s.tracks[number]
	if !ok {
		track := NewTrack(number)
		sched := NewScheduler(track, s.engine, s.channels, s.registry, s.bufferMs)
		tw = &trackWorker{track: track, scheduler: sched}
		s.tracks[number] = tw
		go sched.Run()
	}
	return tw.track
}

// Stop shuts down every track's worker goroutine.
func (s *SchedulerState) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tw := range s.tracks {
		tw.scheduler.Stop()
	}
}
