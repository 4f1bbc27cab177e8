package scheduling

import "testing"

// TestExpanderRepeatsAgainstFreshSnapshots covers scenario S3: a pattern
// referenced with times=2 schedules each iteration back to back, and the
// materialized note list's span becomes the scheduler's returned cursor.
func TestExpanderRepeatsAgainstFreshSnapshots(t *testing.T) {
	engine := newFakeEngine()
	registry := NewRegistry()
	registry.Append("A", []Event{
		MidiNoteEvent{OffsetMs: 0, NoteNumber: 64, Velocity: 100, DurationMs: 250, AudibleDurationMs: 250},
		MidiNoteEvent{OffsetMs: 250, NoteNumber: 67, Velocity: 100, DurationMs: 250, AudibleDurationMs: 250},
	})
	x := NewExpander(registry, engine, 400)

	notes := x.SchedulePattern(PatternEvent{OffsetMs: 0, PatternName: "A", Times: 2}, 0, 0)

	wantStarts := []int{0, 250, 500, 750}
	if len(notes) != len(wantStarts) {
		t.Fatalf("got %d notes, want %d: %+v", len(notes), len(wantStarts), notes)
	}
	for i, n := range notes {
		if n.AbsoluteOffsetMs != wantStarts[i] {
			t.Errorf("note %d starts at %d, want %d", i, n.AbsoluteOffsetMs, wantStarts[i])
		}
	}

	maxEnd := 0
	for _, n := range notes {
		if end := n.AbsoluteOffsetMs + n.DurationMs; end > maxEnd {
			maxEnd = end
		}
	}
	if maxEnd != 1000 {
		t.Fatalf("max materialized end = %d, want 1000", maxEnd)
	}
}

// TestExpanderReadsPatternEditsMadeWhileBarrierHeld covers scenario S4: an
// edit to the referenced pattern made while the first iteration's barrier
// is still held is visible to every iteration, since each one snapshots
// the pattern only after its own barrier releases.
func TestExpanderReadsPatternEditsMadeWhileBarrierHeld(t *testing.T) {
	engine := newFakeEngine()
	registry := NewRegistry()
	registry.Append("A", []Event{
		MidiNoteEvent{OffsetMs: 0, NoteNumber: 60, Velocity: 100, DurationMs: 500, AudibleDurationMs: 500},
	})
	held := engine.holdBarrier("A")
	x := NewExpander(registry, engine, 400)

	done := make(chan []MaterializedNote, 1)
	go func() {
		done <- x.SchedulePattern(PatternEvent{OffsetMs: 0, PatternName: "A", Times: 2}, 0, 0)
	}()

	registry.Clear("A")
	registry.Append("A", []Event{
		MidiNoteEvent{OffsetMs: 0, NoteNumber: 72, Velocity: 100, DurationMs: 100, AudibleDurationMs: 100},
	})
	held.release()

	notes := <-done

	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2: %+v", len(notes), notes)
	}
	if notes[0].NoteNumber != 72 || notes[0].AbsoluteOffsetMs != 0 {
		t.Errorf("iteration 1 = %+v, want note 72 at offset 0", notes[0])
	}
	if notes[1].NoteNumber != 72 || notes[1].AbsoluteOffsetMs != 100 {
		t.Errorf("iteration 2 = %+v, want note 72 at offset 100", notes[1])
	}
}

func TestExpanderGuardsAgainstSelfReference(t *testing.T) {
	engine := newFakeEngine()
	registry := NewRegistry()
	registry.Append("A", []Event{
		PatternEvent{OffsetMs: 0, PatternName: "A", Times: 1},
	})
	x := NewExpander(registry, engine, 400)

	// Must return (dropping the cyclic branch) rather than recurse forever.
	notes := x.SchedulePattern(PatternEvent{OffsetMs: 0, PatternName: "A", Times: 1}, 0, 0)
	if len(notes) != 0 {
		t.Fatalf("got %d notes from a self-referencing pattern, want 0", len(notes))
	}
}

func TestExpanderNestedOnlyPatternRepeatsAtSameInstant(t *testing.T) {
	engine := newFakeEngine()
	registry := NewRegistry()
	registry.Append("Inner", []Event{
		MidiNoteEvent{OffsetMs: 0, NoteNumber: 50, Velocity: 100, DurationMs: 100, AudibleDurationMs: 100},
	})
	// "Outer" has no direct notes of its own, only a nested reference.
	registry.Append("Outer", []Event{
		PatternEvent{OffsetMs: 0, PatternName: "Inner", Times: 1},
	})
	x := NewExpander(registry, engine, 400)

	notes := x.SchedulePattern(PatternEvent{OffsetMs: 0, PatternName: "Outer", Times: 3}, 0, 0)

	if len(notes) != 3 {
		t.Fatalf("got %d notes, want 3 (one Inner note per Outer iteration)", len(notes))
	}
	for i, n := range notes {
		if n.AbsoluteOffsetMs != 0 {
			t.Errorf("note %d at offset %d, want 0 (zero-advance repeat)", i, n.AbsoluteOffsetMs)
		}
	}
}
