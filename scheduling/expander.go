package scheduling

// maxExpansionDepth bounds the nesting chain a PatternEvent can recurse
// through. Combined with the chain guard below, it turns a pattern that
// (directly or indirectly) references itself into a logged, dropped branch
// instead of a stack overflow.
const maxExpansionDepth = 64

// MaterializedNote is a MidiNoteEvent the Expander has resolved to an
// absolute scheduling offset, either directly or through nested pattern
// expansion. AbsoluteOffsetMs is relative to the same zero point as the
// Track Scheduler's start-offset cursor.
type MaterializedNote struct {
	AbsoluteOffsetMs  int
	NoteNumber        uint8
	Velocity          uint8
	DurationMs        int
	AudibleDurationMs int
}

// Expander is the recursive JIT resolver: for a PatternEvent it waits on an
// engine-supplied barrier until the pattern's next sounding moment is
// imminent, takes a fresh snapshot of the pattern's current events, and
// schedules them — repeating for every requested iteration and recursing
// into any nested PatternEvents it finds.
type Expander struct {
	registry *Registry
	engine   Engine
	bufferMs int
}

func NewExpander(registry *Registry, engine Engine, bufferMs int) *Expander {
	return &Expander{registry: registry, engine: engine, bufferMs: bufferMs}
}

// SchedulePattern expands ev starting at baseOffsetMs on channel and
// returns every note it materialized (already handed to the engine).
func (x *Expander) SchedulePattern(ev PatternEvent, baseOffsetMs int, channel uint8) []MaterializedNote {
	return x.expand(ev, baseOffsetMs, channel, nil)
}

func (x *Expander) expand(ev PatternEvent, base int, channel uint8, chain map[string]bool) []MaterializedNote {
	if ev.Times < 1 {
		return nil
	}
	if chain[ev.PatternName] || len(chain) >= maxExpansionDepth {
		Warnf("pattern %q: cyclic or too-deep reference, dropping branch", ev.PatternName)
		return nil
	}
	chain = withPattern(chain, ev.PatternName)

	var results []MaterializedNote
	curBase := base
	offset := ev.OffsetMs

	// Repetition is an iterative loop — one barrier wait per iteration,
	// each against a freshly taken snapshot — rather than recursion on the
	// times dimension, so a large Times cannot grow the call stack.
	// Nesting (PatternEvents found inside a pattern's own event list)
	// still recurses, since its depth is bounded by maxExpansionDepth.
	for remaining := ev.Times; remaining > 0; remaining-- {
		patternStart := curBase + offset
		markerTime := patternStart - x.bufferMs
		if markerTime < curBase {
			markerTime = curBase
		}

		barrier := x.engine.PatternMarker(float64(markerTime), ev.PatternName)
		barrier.Wait()

		snapshot := x.registry.Get(ev.PatternName).Snapshot()
		parts := partitionEvents(snapshot)

		iterLenMs := 0
		for _, n := range parts.notes {
			abs := patternStart + n.OffsetMs
			x.engine.Note(float64(abs), float64(abs+n.AudibleDurationMs), channel, n.NoteNumber, n.Velocity)
			results = append(results, MaterializedNote{
				AbsoluteOffsetMs:  abs,
				NoteNumber:        n.NoteNumber,
				Velocity:          n.Velocity,
				DurationMs:        n.DurationMs,
				AudibleDurationMs: n.AudibleDurationMs,
			})
			if end := n.OffsetMs + n.DurationMs; end > iterLenMs {
				iterLenMs = end
			}
		}

		for _, nested := range parts.patterns {
			results = append(results, x.expand(nested, patternStart, channel, chain)...)
		}

		// A pattern made only of nested PatternEvents has no direct notes,
		// so iterLenMs stays zero and every remaining iteration restarts
		// at the same instant — `times` co-located expansions rather than
		// an infinite spin, since each one is independently barrier-gated.
		curBase = patternStart
		offset = iterLenMs
	}

	return results
}

func withPattern(chain map[string]bool, name string) map[string]bool {
	next := make(map[string]bool, len(chain)+1)
	for k := range chain {
		next[k] = true
	}
	next[name] = true
	return next
}
