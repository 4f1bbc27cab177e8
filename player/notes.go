package player

import (
	"fmt"
	"strconv"
)

var noteNameValues = map[string]int{
	"C": 0, "C#": 1, "Db": 1,
	"D": 2, "D#": 3, "Eb": 3,
	"E": 4,
	"F": 5, "F#": 6, "Gb": 6,
	"G": 7, "G#": 8, "Ab": 8,
	"A": 9, "A#": 10, "Bb": 10,
	"B": 11,
}

// parseNote accepts either a bare MIDI note number ("60") or a note name
// ("C4", "D#5", "Bb3") and returns the MIDI note number (0-127).
func parseNote(s string) (uint8, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 127 {
			return 0, fmt.Errorf("note out of range: %d", n)
		}
		return uint8(n), nil
	}

	var notePart, octavePart string
	switch len(s) {
	case 2:
		notePart, octavePart = s[0:1], s[1:2]
	case 3:
		notePart, octavePart = s[0:2], s[2:3]
	default:
		return 0, fmt.Errorf("invalid note: %s", s)
	}

	value, ok := noteNameValues[notePart]
	if !ok {
		return 0, fmt.Errorf("invalid note: %s", s)
	}
	octave, err := strconv.Atoi(octavePart)
	if err != nil {
		return 0, fmt.Errorf("invalid note: %s", s)
	}

	midiNote := (octave+1)*12 + value
	if midiNote < 0 || midiNote > 127 {
		return 0, fmt.Errorf("note out of range: %s", s)
	}
	return uint8(midiNote), nil
}
