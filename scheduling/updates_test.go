package scheduling

import "testing"

func TestUpdatesBuilders(t *testing.T) {
	u := NewUpdates()
	u.AddSystemAction(ActionPlay)
	u.AddTrackAction(1, TrackMute)
	u.AddPatternAction("A", PatternClear)
	u.AppendPatternEvents("A", MidiNoteEvent{NoteNumber: 60})
	u.EnqueueTrackEvents(1, MidiNoteEvent{NoteNumber: 64})

	if !u.SystemActions[ActionPlay] {
		t.Error("AddSystemAction did not record ActionPlay")
	}
	if !u.TrackActions[1][TrackMute] {
		t.Error("AddTrackAction did not record TrackMute for track 1")
	}
	if !u.PatternActions["A"][PatternClear] {
		t.Error("AddPatternAction did not record PatternClear for \"A\"")
	}
	if len(u.PatternEvents["A"]) != 1 {
		t.Errorf("PatternEvents[\"A\"] has %d entries, want 1", len(u.PatternEvents["A"]))
	}
	if len(u.TrackEvents[1]) != 1 {
		t.Errorf("TrackEvents[1] has %d entries, want 1", len(u.TrackEvents[1]))
	}
}
