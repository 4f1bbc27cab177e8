// Package player is the Player Loop: a blocking consumer of inbound
// instruction batches that delegates parsing to a pluggable Parser and
// hands the result to a scheduling.Applier. It is adapted from the
// teacher's main.processBatchInput REPL-driving loop, generalized to
// accept any Parser instead of hard-coding a single command vocabulary.
package player

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/iltempo/interplay-core/scheduling"
)

// Loop owns the inbound instruction queue and drives it until Stop is
// called or the queue is closed.
type Loop struct {
	parser  Parser
	applier *scheduling.Applier

	queue chan [][]byte
	stop  chan struct{}
	done  chan struct{}
}

const instructionQueueCapacity = 256

// NewLoop builds a Loop that parses batches with parser and applies them
// through applier.
func NewLoop(parser Parser, applier *scheduling.Applier) *Loop {
	return &Loop{
		parser:  parser,
		applier: applier,
		queue:   make(chan [][]byte, instructionQueueCapacity),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Enqueue submits one raw instruction batch for processing. Blocks if the
// queue is full.
func (l *Loop) Enqueue(batch [][]byte) {
	l.queue <- batch
}

// Run blocks, parsing and applying batches as they arrive, until Stop is
// called.
func (l *Loop) Run() {
	defer close(l.done)
	for {
		select {
		case batch, ok := <-l.queue:
			if !ok {
				return
			}
			updates, err := l.parser.Parse(batch)
			if err != nil {
				scheduling.Warnf("player: parse error: %v", err)
			}
			l.applier.Apply(updates)
		case <-l.stop:
			return
		}
	}
}

// Stop halts Run and waits for it to return.
func (l *Loop) Stop() {
	close(l.stop)
	<-l.done
}

// ReadBatches scans reader line by line, treating a blank line as a batch
// separator: every non-blank line since the last separator (or start of
// input) is submitted as one Enqueue call. This lets a script file express
// several atomically-applied instructions per batch while still reading
// one line at a time, the way the teacher's processBatchInput scans stdin.
func (l *Loop) ReadBatches(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	var batch [][]byte

	flush := func() {
		if len(batch) > 0 {
			l.Enqueue(batch)
			batch = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if strings.EqualFold(trimmed, "exit") || strings.EqualFold(trimmed, "quit") {
			flush()
			return nil
		}
		batch = append(batch, []byte(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading instructions: %w", err)
	}
	return nil
}
