package player

import (
	"strings"
	"testing"
	"time"

	"github.com/iltempo/interplay-core/scheduling"
)

// fakeEngine is a minimal scheduling.Engine double sufficient to exercise
// Loop and Applier wiring without real time or MIDI hardware.
type fakeEngine struct {
	playing bool
}

func (e *fakeEngine) Patch(float64, uint8, int)                {}
func (e *fakeEngine) Note(float64, float64, uint8, uint8, uint8) {}
func (e *fakeEngine) Percussion(float64, int)                   {}
func (e *fakeEngine) PatternMarker(float64, string) scheduling.Barrier {
	return immediateBarrier{}
}
func (e *fakeEngine) CurrentOffsetMs() float64 { return 0 }
func (e *fakeEngine) IsPlaying() bool          { return e.playing }
func (e *fakeEngine) SetPlaying(p bool)        { e.playing = p }
func (e *fakeEngine) StartSequencer()          { e.playing = true }
func (e *fakeEngine) StopSequencer()           { e.playing = false }

type immediateBarrier struct{}

func (immediateBarrier) Wait() {}

func TestLoopAppliesEnqueuedBatches(t *testing.T) {
	engine := &fakeEngine{}
	state := scheduling.NewSchedulerState(engine, scheduling.DefaultChannelPool(), 400)
	applier := scheduling.NewApplier(state)
	loop := NewLoop(LineParser{}, applier)

	go loop.Run()
	defer loop.Stop()

	loop.Enqueue(lines("play"))

	deadline := time.Now().Add(time.Second)
	for !engine.IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatal("engine never reported playing after a \"play\" batch")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestLoopReadBatchesSplitsOnBlankLines(t *testing.T) {
	engine := &fakeEngine{}
	state := scheduling.NewSchedulerState(engine, scheduling.DefaultChannelPool(), 400)
	applier := scheduling.NewApplier(state)
	loop := NewLoop(LineParser{}, applier)

	go loop.Run()
	defer loop.Stop()

	input := "pattern A note 0 60 100 250 250\n\ntrack 1 pattern 0 A 1\nplay\n"
	if err := loop.ReadBatches(strings.NewReader(input)); err != nil {
		t.Fatalf("ReadBatches returned error: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for !engine.IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatal("engine never reported playing after reading batched input")
		}
		time.Sleep(2 * time.Millisecond)
	}
}
