package player

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iltempo/interplay-core/scheduling"
)

// Parser turns one raw instruction batch into a single Updates batch. It is
// the seam a real wire protocol (OSC bundle decoding, say) plugs into
// without touching the scheduling core; LineParser below is the one
// built-in implementation, enough to drive the core end to end over plain
// text.
type Parser interface {
	Parse(raw [][]byte) (scheduling.Updates, error)
}

// LineParser reads whitespace-tokenized commands, one per line, and
// accumulates them into a single Updates batch so the whole line group
// applies atomically. A line that fails to parse is skipped and its error
// joined into the returned error; every other line in the batch still
// takes effect, the way the teacher's batch-input loop kept processing
// after a bad command.
type LineParser struct{}

func (LineParser) Parse(raw [][]byte) (scheduling.Updates, error) {
	u := scheduling.NewUpdates()
	var errs []error

	for _, line := range raw {
		text := strings.TrimSpace(string(line))
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := applyLine(&u, text); err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", text, err))
		}
	}

	return u, errors.Join(errs...)
}

func applyLine(u *scheduling.Updates, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	switch strings.ToLower(parts[0]) {
	case "play":
		u.AddSystemAction(scheduling.ActionPlay)
		return nil
	case "stop":
		u.AddSystemAction(scheduling.ActionStop)
		return nil
	case "clear":
		u.AddSystemAction(scheduling.ActionClear)
		return nil
	case "track":
		return applyTrackLine(u, parts[1:])
	case "pattern":
		return applyPatternLine(u, parts[1:])
	default:
		return fmt.Errorf("unknown command %q", parts[0])
	}
}

// applyTrackLine handles:
//
//	track <n> note <offset> <note> <vel> <dur> <aud>
//	track <n> patch <offset> <patch>
//	track <n> percussion <offset>
//	track <n> pattern <offset> <name> <times>
//	track <n> mute|unmute|clear
func applyTrackLine(u *scheduling.Updates, parts []string) error {
	if len(parts) < 2 {
		return fmt.Errorf("usage: track <n> <note|patch|percussion|pattern|mute|unmute|clear> ...")
	}
	track, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid track number: %s", parts[0])
	}

	switch strings.ToLower(parts[1]) {
	case "note":
		ev, err := parseNoteEvent(parts[2:])
		if err != nil {
			return err
		}
		u.EnqueueTrackEvents(track, ev)
	case "patch":
		ev, err := parsePatchEvent(parts[2:])
		if err != nil {
			return err
		}
		u.EnqueueTrackEvents(track, ev)
	case "percussion":
		ev, err := parsePercussionEvent(parts[2:])
		if err != nil {
			return err
		}
		u.EnqueueTrackEvents(track, ev)
	case "pattern":
		ev, err := parsePatternEvent(parts[2:])
		if err != nil {
			return err
		}
		u.EnqueueTrackEvents(track, ev)
	case "mute":
		u.AddTrackAction(track, scheduling.TrackMute)
	case "unmute":
		u.AddTrackAction(track, scheduling.TrackUnmute)
	case "clear":
		u.AddTrackAction(track, scheduling.TrackClear)
	default:
		return fmt.Errorf("unknown track action %q", parts[1])
	}
	return nil
}

// applyPatternLine handles:
//
//	pattern <name> note <offset> <note> <vel> <dur> <aud>
//	pattern <name> patch <offset> <patch>
//	pattern <name> percussion <offset>
//	pattern <name> pattern <offset> <nested-name> <times>
//	pattern <name> clear
func applyPatternLine(u *scheduling.Updates, parts []string) error {
	if len(parts) < 2 {
		return fmt.Errorf("usage: pattern <name> <note|patch|percussion|pattern|clear> ...")
	}
	name := parts[0]

	switch strings.ToLower(parts[1]) {
	case "note":
		ev, err := parseNoteEvent(parts[2:])
		if err != nil {
			return err
		}
		u.AppendPatternEvents(name, ev)
	case "patch":
		ev, err := parsePatchEvent(parts[2:])
		if err != nil {
			return err
		}
		u.AppendPatternEvents(name, ev)
	case "percussion":
		ev, err := parsePercussionEvent(parts[2:])
		if err != nil {
			return err
		}
		u.AppendPatternEvents(name, ev)
	case "pattern":
		ev, err := parsePatternEvent(parts[2:])
		if err != nil {
			return err
		}
		u.AppendPatternEvents(name, ev)
	case "clear":
		u.AddPatternAction(name, scheduling.PatternClear)
	default:
		return fmt.Errorf("unknown pattern action %q", parts[1])
	}
	return nil
}

func parseNoteEvent(parts []string) (scheduling.MidiNoteEvent, error) {
	if len(parts) != 5 {
		return scheduling.MidiNoteEvent{}, fmt.Errorf("usage: note <offset> <note> <velocity> <duration> <audible-duration>")
	}
	offset, err := strconv.Atoi(parts[0])
	if err != nil {
		return scheduling.MidiNoteEvent{}, fmt.Errorf("invalid offset: %s", parts[0])
	}
	note, err := parseNote(parts[1])
	if err != nil {
		return scheduling.MidiNoteEvent{}, err
	}
	velocity, err := strconv.Atoi(parts[2])
	if err != nil || velocity < 0 || velocity > 127 {
		return scheduling.MidiNoteEvent{}, fmt.Errorf("invalid velocity: %s", parts[2])
	}
	duration, err := strconv.Atoi(parts[3])
	if err != nil {
		return scheduling.MidiNoteEvent{}, fmt.Errorf("invalid duration: %s", parts[3])
	}
	audible, err := strconv.Atoi(parts[4])
	if err != nil {
		return scheduling.MidiNoteEvent{}, fmt.Errorf("invalid audible duration: %s", parts[4])
	}
	return scheduling.MidiNoteEvent{
		OffsetMs:          offset,
		NoteNumber:        note,
		Velocity:          uint8(velocity),
		DurationMs:        duration,
		AudibleDurationMs: audible,
	}, nil
}

func parsePatchEvent(parts []string) (scheduling.MidiPatchEvent, error) {
	if len(parts) != 2 {
		return scheduling.MidiPatchEvent{}, fmt.Errorf("usage: patch <offset> <patch>")
	}
	offset, err := strconv.Atoi(parts[0])
	if err != nil {
		return scheduling.MidiPatchEvent{}, fmt.Errorf("invalid offset: %s", parts[0])
	}
	patch, err := strconv.Atoi(parts[1])
	if err != nil {
		return scheduling.MidiPatchEvent{}, fmt.Errorf("invalid patch: %s", parts[1])
	}
	return scheduling.MidiPatchEvent{OffsetMs: offset, Patch: patch}, nil
}

func parsePercussionEvent(parts []string) (scheduling.MidiPercussionEvent, error) {
	if len(parts) != 1 {
		return scheduling.MidiPercussionEvent{}, fmt.Errorf("usage: percussion <offset>")
	}
	offset, err := strconv.Atoi(parts[0])
	if err != nil {
		return scheduling.MidiPercussionEvent{}, fmt.Errorf("invalid offset: %s", parts[0])
	}
	return scheduling.MidiPercussionEvent{OffsetMs: offset}, nil
}

func parsePatternEvent(parts []string) (scheduling.PatternEvent, error) {
	if len(parts) != 3 {
		return scheduling.PatternEvent{}, fmt.Errorf("usage: pattern <offset> <name> <times>")
	}
	offset, err := strconv.Atoi(parts[0])
	if err != nil {
		return scheduling.PatternEvent{}, fmt.Errorf("invalid offset: %s", parts[0])
	}
	times, err := strconv.Atoi(parts[2])
	if err != nil {
		return scheduling.PatternEvent{}, fmt.Errorf("invalid times: %s", parts[2])
	}
	return scheduling.PatternEvent{OffsetMs: offset, PatternName: parts[1], Times: times}, nil
}
