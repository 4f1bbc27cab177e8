// Package scheduling is the JIT scheduling core: it turns mutable, named
// patterns of MIDI events into timestamped calls against a MidiEngine while
// a track keeps playing, re-reading each pattern's current contents at the
// moment it is about to sound.
package scheduling

// Event is the unit of musical instruction carried in a track burst or a
// pattern's event list. Concrete variants implement it with an unexported
// marker method, so dispatch is a single type-switch pass (partitionEvents)
// instead of repeated runtime-type filtering.
type Event interface {
	isEvent()
}

// MidiPatchEvent requests a program (patch) change on the track's channel.
type MidiPatchEvent struct {
	OffsetMs int
	Patch    int
}

func (MidiPatchEvent) isEvent() {}

// MidiNoteEvent sounds a note. DurationMs advances the scheduling cursor;
// AudibleDurationMs (<= DurationMs) governs when note-off actually fires,
// so a staccato note can leave silence before the next event without
// shortening the beat it occupies.
type MidiNoteEvent struct {
	OffsetMs          int
	NoteNumber        uint8
	Velocity          uint8
	DurationMs        int
	AudibleDurationMs int
}

func (MidiNoteEvent) isEvent() {}

// MidiPercussionEvent strikes a percussion voice on the reserved
// percussion channel rather than the track's own melodic channel.
type MidiPercussionEvent struct {
	OffsetMs int
}

func (MidiPercussionEvent) isEvent() {}

// PatternEvent schedules a named pattern, Times consecutive times,
// starting OffsetMs after the burst's start offset.
type PatternEvent struct {
	OffsetMs    int
	PatternName string
	Times       int
}

func (PatternEvent) isEvent() {}

// PatternLoopEvent and FinishLoopEvent bracket a loop region in a pattern's
// event list. Both are reserved: partitionEvents drops them, so the
// Scheduler and Expander schedule nothing for either, while the event model
// still has a home for loop semantics.
type PatternLoopEvent struct {
	OffsetMs int
}

func (PatternLoopEvent) isEvent() {}

type FinishLoopEvent struct {
	OffsetMs int
}

func (FinishLoopEvent) isEvent() {}

// eventPartition buckets a mixed event list by variant in a single pass.
type eventPartition struct {
	patches    []MidiPatchEvent
	notes      []MidiNoteEvent
	percussion []MidiPercussionEvent
	patterns   []PatternEvent
}

func partitionEvents(events []Event) eventPartition {
	var p eventPartition
	for _, ev := range events {
		switch e := ev.(type) {
		case MidiPatchEvent:
			p.patches = append(p.patches, e)
		case MidiNoteEvent:
			p.notes = append(p.notes, e)
		case MidiPercussionEvent:
			p.percussion = append(p.percussion, e)
		case PatternEvent:
			p.patterns = append(p.patterns, e)
		case PatternLoopEvent, FinishLoopEvent:
			// reserved, no-op
		}
	}
	return p
}
