package midi

import (
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/iltempo/interplay-core/scheduling"
)

// defaultDrumNote is the percussion voice struck for scheduling.Engine's
// Percussion calls, until per-track drum-map configuration exists.
const defaultDrumNote uint8 = 36 // kick, General MIDI

const percussionStrikeMs = 120

// MessageSender is the seam Engine schedules through. Output implements it
// over a real gomidi driver; tests use a fake.
type MessageSender interface {
	Send(msg gomidi.Message) error
}

// Engine adapts a MessageSender into the scheduling.Engine capability. It
// has no ticking clock goroutine: each primitive is scheduled with its own
// time.AfterFunc against a wall-clock epoch, the same one-shot-timer idiom
// the teacher's playback loop uses for note-off, and the reference
// midiplayer package uses for cancellable note scheduling.
type Engine struct {
	out MessageSender

	mu             sync.Mutex
	running        bool
	playing        bool
	epoch          time.Time // wall time corresponding to offset 0 while running
	frozenOffsetMs float64   // offset captured at the last stop

	outstanding map[*barrier]struct{} // PatternMarker barriers still waiting on their timer
}

// NewEngine wraps out as a scheduling.Engine.
func NewEngine(out MessageSender) *Engine {
	return &Engine{out: out, outstanding: make(map[*barrier]struct{})}
}

func (e *Engine) wallTimeFor(atMs float64) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return time.Now()
	}
	return e.epoch.Add(time.Duration(atMs * float64(time.Millisecond)))
}

// CurrentOffsetMs implements scheduling.Engine.
func (e *Engine) CurrentOffsetMs() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentOffsetLocked()
}

func (e *Engine) currentOffsetLocked() float64 {
	if !e.running {
		return e.frozenOffsetMs
	}
	return float64(time.Since(e.epoch).Milliseconds())
}

// IsPlaying implements scheduling.Engine.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// SetPlaying implements scheduling.Engine.
func (e *Engine) SetPlaying(playing bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = playing
}

// StartSequencer implements scheduling.Engine. Idempotent: calling it while
// already running leaves the clock untouched.
func (e *Engine) StartSequencer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.epoch = time.Now().Add(-time.Duration(e.frozenOffsetMs * float64(time.Millisecond)))
	e.running = true
	e.playing = true
}

// StopSequencer implements scheduling.Engine. Freezes the offset so a
// later StartSequencer resumes from where playback left off, and releases
// every barrier still waiting on a marker that would otherwise only ever
// fire against the (now frozen) wall-clock deadline it was scheduled for.
func (e *Engine) StopSequencer() {
	e.mu.Lock()
	if e.running {
		e.frozenOffsetMs = float64(time.Since(e.epoch).Milliseconds())
	}
	e.running = false
	e.playing = false
	outstanding := e.outstanding
	e.outstanding = make(map[*barrier]struct{})
	e.mu.Unlock()

	for b := range outstanding {
		b.fire()
	}
}

// Patch implements scheduling.Engine.
func (e *Engine) Patch(atMs float64, channel uint8, patch int) {
	at := e.wallTimeFor(atMs)
	time.AfterFunc(time.Until(at), func() {
		if err := e.out.Send(gomidi.ProgramChange(channel, uint8(patch))); err != nil {
			scheduling.Warnf("midi: patch change send failed: %v", err)
		}
	})
}

// Note implements scheduling.Engine: note-on at startMs, note-off at
// endMs, each its own timer so neither can block the other.
func (e *Engine) Note(startMs, endMs float64, channel, note, velocity uint8) {
	startAt := e.wallTimeFor(startMs)
	endAt := e.wallTimeFor(endMs)

	time.AfterFunc(time.Until(startAt), func() {
		if err := e.out.Send(gomidi.NoteOn(channel, note, velocity)); err != nil {
			scheduling.Warnf("midi: note-on send failed: %v", err)
		}
	})
	time.AfterFunc(time.Until(endAt), func() {
		if err := e.out.Send(gomidi.NoteOff(channel, note)); err != nil {
			scheduling.Warnf("midi: note-off send failed: %v", err)
		}
	})
}

// Percussion implements scheduling.Engine: a short strike on the reserved
// percussion channel.
func (e *Engine) Percussion(atMs float64, trackNumber int) {
	at := e.wallTimeFor(atMs)
	time.AfterFunc(time.Until(at), func() {
		if err := e.out.Send(gomidi.NoteOn(scheduling.PercussionChannel, defaultDrumNote, 100)); err != nil {
			scheduling.Warnf("midi: percussion strike send failed: %v", err)
			return
		}
		time.AfterFunc(percussionStrikeMs*time.Millisecond, func() {
			if err := e.out.Send(gomidi.NoteOff(scheduling.PercussionChannel, defaultDrumNote)); err != nil {
				scheduling.Warnf("midi: percussion release send failed: %v", err)
			}
		})
	})
}

// barrier is released exactly once, either immediately (constructed
// already-closed) or by a time.AfterFunc firing at its marker's deadline.
type barrier struct {
	release chan struct{}
	once    sync.Once
}

func newBarrier() *barrier {
	return &barrier{release: make(chan struct{})}
}

func (b *barrier) fire() { b.once.Do(func() { close(b.release) }) }
func (b *barrier) Wait() { <-b.release }

// PatternMarker implements scheduling.Engine. If playback is stopped or
// atMs has already passed, the barrier is released immediately; otherwise
// it is tracked as outstanding and released either by its own timer or, if
// StopSequencer runs first, immediately by StopSequencer.
func (e *Engine) PatternMarker(atMs float64, patternName string) scheduling.Barrier {
	b := newBarrier()
	if !e.IsPlaying() || atMs <= e.CurrentOffsetMs() {
		b.fire()
		return b
	}

	e.mu.Lock()
	e.outstanding[b] = struct{}{}
	e.mu.Unlock()

	at := e.wallTimeFor(atMs)
	time.AfterFunc(time.Until(at), func() {
		e.mu.Lock()
		delete(e.outstanding, b)
		e.mu.Unlock()
		b.fire()
	})
	return b
}
