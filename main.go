package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/iltempo/interplay-core/config"
	"github.com/iltempo/interplay-core/midi"
	"github.com/iltempo/interplay-core/player"
	"github.com/iltempo/interplay-core/scheduling"
	"github.com/mattn/go-isatty"
)

// isTerminal returns true if stdin is a terminal (TTY)
func isTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func main() {
	scriptFile := flag.String("script", "", "execute instructions from file")
	flag.Parse()

	ports, err := midi.ListPorts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing MIDI ports: %v\n", err)
		os.Exit(1)
	}
	if len(ports) == 0 {
		fmt.Fprintf(os.Stderr, "No MIDI output ports found\n")
		os.Exit(1)
	}

	fmt.Println("Available MIDI ports:")
	for i, port := range ports {
		fmt.Printf("  %d: %s\n", i, port)
	}

	var portIndex int
	inBatchMode := *scriptFile != "" || !isTerminal()

	if len(ports) == 1 || inBatchMode {
		portIndex = 0
		fmt.Printf("\nUsing port %d: %s\n\n", portIndex, ports[portIndex])
	} else {
		fmt.Print("\n")
		rl, err := readline.New(fmt.Sprintf("Select MIDI port (0-%d): ", len(ports)-1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating readline: %v\n", err)
			os.Exit(1)
		}
		defer rl.Close()

		input, err := rl.Readline()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			os.Exit(1)
		}

		input = strings.TrimSpace(input)
		portIndex, err = strconv.Atoi(input)
		if err != nil || portIndex < 0 || portIndex >= len(ports) {
			fmt.Fprintf(os.Stderr, "Invalid port selection: %s\n", input)
			os.Exit(1)
		}
		fmt.Printf("Using port %d: %s\n\n", portIndex, ports[portIndex])
	}

	midiOut, err := midi.Open(portIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening MIDI port: %v\n", err)
		os.Exit(1)
	}
	defer midiOut.Close()

	cfg := config.Load()
	engine := midi.NewEngine(midiOut)
	state := scheduling.NewSchedulerState(engine, cfg.AvailableChannels, cfg.ScheduleBufferMs)
	applier := scheduling.NewApplier(state)
	loop := player.NewLoop(player.LineParser{}, applier)

	go loop.Run()

	cleanup := func() {
		loop.Stop()
		state.Stop()
		engine.StopSequencer()
		midiOut.Close()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		cleanup()
		os.Exit(0)
	}()

	fmt.Println("Interplay core running. Commands: play, stop, clear, track <n> ..., pattern <name> ..., quit.")
	fmt.Println()

	if *scriptFile != "" {
		f, err := os.Open(*scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script file: %v\n", err)
			os.Exit(2)
		}
		defer f.Close()

		if err := loop.ReadBatches(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading script: %v\n", err)
			cleanup()
			os.Exit(1)
		}

		fmt.Println("\nScript completed. Playback continues. Press Ctrl+C to exit.")
		select {} // Block forever, track worker goroutines keep running
	}

	if err := loop.ReadBatches(os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading instructions: %v\n", err)
		os.Exit(1)
	}

	if isTerminal() {
		fmt.Println("Goodbye!")
		cleanup()
		return
	}

	// Piped input reached EOF without an explicit quit: keep the performance
	// running, the way the teacher's batch mode left playback active.
	fmt.Println("\nInput exhausted. Playback continues. Press Ctrl+C to exit.")
	select {}
}
