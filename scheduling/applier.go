package scheduling

// Applier is the single-threaded consumer that turns one Updates batch into
// state changes, in the fixed four-phase order the ingest pipeline
// requires: teardown, pattern edits, track enqueues, transport up. Phase 2
// of a batch happens-before its phase 3, and phase 4 of batch n
// happens-before phase 1 of batch n+1, because Apply runs start to finish
// before the next call begins.
type Applier struct {
	state *SchedulerState
}

func NewApplier(state *SchedulerState) *Applier {
	return &Applier{state: state}
}

// Apply runs all four phases of u against state.
func (a *Applier) Apply(u Updates) {
	a.teardown(u)
	a.applyPatternEdits(u)
	a.enqueueTracks(u)
	a.transportUp(u)
}

// teardown is phase 1: STOP and CLEAR actions, and whatever a batch asks to
// tear down before anything new is written.
func (a *Applier) teardown(u Updates) {
	if u.SystemActions[ActionStop] {
		a.state.Engine().StopSequencer()
	}
	if u.SystemActions[ActionClear] {
		// TODO: wipe scheduler state (tracks/patterns). Reserved no-op.
	}
	for _, actions := range u.TrackActions {
		if actions[TrackMute] || actions[TrackClear] {
			// TODO: mute/clear track state. Reserved no-op.
		}
	}
	for name, actions := range u.PatternActions {
		if actions[PatternClear] {
			a.state.Registry().Clear(name)
		}
	}
}

// applyPatternEdits is phase 2: pattern appends land before any track is
// given a burst that might reference them.
func (a *Applier) applyPatternEdits(u Updates) {
	for name, events := range u.PatternEvents {
		a.state.Registry().Append(name, events)
	}
}

// enqueueTracks is phase 3: each track's burst is handed to its worker.
func (a *Applier) enqueueTracks(u Updates) {
	for track, events := range u.TrackEvents {
		a.state.Track(track).Enqueue(events)
	}
}

// transportUp is phase 4: PLAY and any unmute actions land last, after
// every track has the burst it needs to actually begin sounding.
func (a *Applier) transportUp(u Updates) {
	for _, actions := range u.TrackActions {
		if actions[TrackUnmute] {
			// TODO: unmute track state. Reserved no-op.
		}
	}
	if u.SystemActions[ActionPlay] {
		a.state.Engine().SetPlaying(true)
	}
}
