package player

import (
	"testing"

	"github.com/iltempo/interplay-core/scheduling"
)

func lines(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func TestLineParserSystemActions(t *testing.T) {
	u, err := LineParser{}.Parse(lines("play", "stop", "clear"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !u.SystemActions[scheduling.ActionPlay] || !u.SystemActions[scheduling.ActionStop] || !u.SystemActions[scheduling.ActionClear] {
		t.Fatalf("missing expected system actions: %+v", u.SystemActions)
	}
}

func TestLineParserTrackNote(t *testing.T) {
	u, err := LineParser{}.Parse(lines("track 1 note 0 60 100 500 500"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	events := u.TrackEvents[1]
	if len(events) != 1 {
		t.Fatalf("TrackEvents[1] has %d entries, want 1", len(events))
	}
	note, ok := events[0].(scheduling.MidiNoteEvent)
	if !ok {
		t.Fatalf("event is %T, want MidiNoteEvent", events[0])
	}
	if note.NoteNumber != 60 || note.Velocity != 100 || note.DurationMs != 500 || note.AudibleDurationMs != 500 {
		t.Fatalf("unexpected note: %+v", note)
	}
}

func TestLineParserPatternNoteAndReference(t *testing.T) {
	u, err := LineParser{}.Parse(lines(
		"pattern A note 0 64 100 250 250",
		"track 2 pattern 0 A 4",
	))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(u.PatternEvents["A"]) != 1 {
		t.Fatalf("PatternEvents[A] has %d entries, want 1", len(u.PatternEvents["A"]))
	}
	events := u.TrackEvents[2]
	if len(events) != 1 {
		t.Fatalf("TrackEvents[2] has %d entries, want 1", len(events))
	}
	pe, ok := events[0].(scheduling.PatternEvent)
	if !ok || pe.PatternName != "A" || pe.Times != 4 {
		t.Fatalf("unexpected pattern reference: %+v (ok=%v)", events[0], ok)
	}
}

func TestLineParserSkipsBlankAndCommentLines(t *testing.T) {
	u, err := LineParser{}.Parse(lines("", "  ", "# a comment", "play"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !u.SystemActions[scheduling.ActionPlay] {
		t.Fatal("expected ActionPlay to still be recorded")
	}
}

func TestLineParserBadLineIsSkippedNotFatal(t *testing.T) {
	u, err := LineParser{}.Parse(lines("bogus command", "play"))
	if err == nil {
		t.Fatal("expected a joined error for the unrecognized line")
	}
	if !u.SystemActions[scheduling.ActionPlay] {
		t.Fatal("a bad line should not prevent later valid lines in the same batch from applying")
	}
}

func TestLineParserTrackMuteActions(t *testing.T) {
	u, err := LineParser{}.Parse(lines("track 3 mute", "track 3 unmute", "track 3 clear"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	actions := u.TrackActions[3]
	if !actions[scheduling.TrackMute] || !actions[scheduling.TrackUnmute] || !actions[scheduling.TrackClear] {
		t.Fatalf("missing expected track actions: %+v", actions)
	}
}
