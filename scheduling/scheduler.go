package scheduling

import "math"

// Scheduler is the dedicated worker for one track: it drains the track's
// burst queue in arrival order and converts each burst into scheduled MIDI
// primitives, delegating pattern references to an Expander.
type Scheduler struct {
	track    *Track
	engine   Engine
	channels *ChannelAllocator
	expander *Expander
	bufferMs int

	stop chan struct{}
	done chan struct{}
}

// NewScheduler wires a track's worker against the shared engine, channel
// allocator, and pattern registry.
func NewScheduler(track *Track, engine Engine, channels *ChannelAllocator, registry *Registry, bufferMs int) *Scheduler {
	return &Scheduler{
		track:    track,
		engine:   engine,
		channels: channels,
		expander: NewExpander(registry, engine, bufferMs),
		bufferMs: bufferMs,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run is the per-track worker loop: one burst at a time, strictly in
// enqueue order. A single worker per track (rather than a goroutine spawned
// per burst) keeps that ordering trivial to reason about — the bounded
// queue already gives ingest its backpressure, and a burst's JIT barrier
// waits block only this track's own notes, never another track's.
func (s *Scheduler) Run() {
	defer close(s.done)
	for {
		select {
		case burst, ok := <-s.track.queue:
			if !ok {
				return
			}
			s.track.lock.Lock()
			next := s.scheduleEvents(burst, s.track.StartOffsetMs())
			s.track.setStartOffsetMs(next)
			s.track.lock.Unlock()
		case <-s.stop:
			return
		}
	}
}

// Stop halts the worker and waits for it to exit. In-flight barrier waits
// inside a pattern expansion are released by the engine's own
// StopSequencer, not by Stop itself.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

// scheduleEvents implements the track scheduling algorithm: coerce a
// stale or too-close start offset forward, schedule every direct event,
// expand pattern references, start the sequencer if playback is pending,
// and return the cursor the next burst should build on.
func (s *Scheduler) scheduleEvents(events []Event, startOffsetMs int) int {
	original := startOffsetMs
	now := int(math.Round(s.engine.CurrentOffsetMs()))

	if startOffsetMs < now {
		startOffsetMs = now
	}
	if s.engine.IsPlaying() && startOffsetMs-now < s.bufferMs {
		startOffsetMs += s.bufferMs
	}

	parts := partitionEvents(events)

	for _, pe := range parts.patches {
		ch, ok := s.acquireChannel()
		if !ok {
			Warnf("track %d: channel pool exhausted, dropping patch change", s.track.Number)
			continue
		}
		s.engine.Patch(float64(startOffsetMs+pe.OffsetMs), ch, pe.Patch)
	}

	for _, pe := range parts.percussion {
		s.channels.ForcePercussion(s.track.Number)
		s.track.setChannel(PercussionChannel)
		s.engine.Percussion(float64(startOffsetMs+pe.OffsetMs), s.track.Number)
	}

	maxEndMs := 0
	any := false

	for _, ne := range parts.notes {
		ch, ok := s.acquireChannel()
		if !ok {
			Warnf("track %d: channel pool exhausted, dropping note", s.track.Number)
			continue
		}
		absStart := startOffsetMs + ne.OffsetMs
		s.engine.Note(float64(absStart), float64(absStart+ne.AudibleDurationMs), ch, ne.NoteNumber, ne.Velocity)
		any = true
		if end := absStart + ne.DurationMs; end > maxEndMs {
			maxEndMs = end
		}
	}

	for _, patEvt := range parts.patterns {
		ch, ok := s.acquireChannel()
		if !ok {
			Warnf("track %d: channel pool exhausted, dropping pattern reference %q", s.track.Number, patEvt.PatternName)
			continue
		}
		materialized := s.expander.SchedulePattern(patEvt, startOffsetMs, ch)
		for _, n := range materialized {
			any = true
			if end := n.AbsoluteOffsetMs + n.DurationMs; end > maxEndMs {
				maxEndMs = end
			}
		}
	}

	if s.engine.IsPlaying() {
		s.engine.StartSequencer()
	}

	if !any {
		return original
	}
	return maxEndMs
}

func (s *Scheduler) acquireChannel() (uint8, bool) {
	if ch, ok := s.track.Channel(); ok {
		return ch, true
	}
	ch, ok := s.channels.Acquire(s.track.Number)
	if ok {
		s.track.setChannel(ch)
	}
	return ch, ok
}
