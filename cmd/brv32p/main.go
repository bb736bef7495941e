// Package main provides the entry point for brv32p, a cycle-accurate model
// of a small pipelined RV32IMC core with caches and a shared memory bus.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/brvlab/brv32p/loader"
	"github.com/brvlab/brv32p/timing/core"
)

var (
	configPath = flag.String("config", "", "Path to configuration JSON file")
	imagePath  = flag.String("image", "", "Boot image (.hex word list or .bin raw binary)")
	ticks      = flag.Uint64("ticks", 0, "Tick budget (overrides config)")
	uartInput  = flag.String("uart-input", "", "Bytes to queue on the UART receiver")
	verbose    = flag.Bool("v", false, "Verbose output with a register dump")
)

func main() {
	flag.Parse()

	cfg := core.DefaultConfig()
	if *configPath != "" {
		loaded, err := core.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if flag.NArg() >= 1 {
		cfg.BootImage = flag.Arg(0)
	}
	if *imagePath != "" {
		cfg.BootImage = *imagePath
	}
	if *ticks != 0 {
		cfg.MaxTicks = *ticks
	}
	if *uartInput != "" {
		cfg.UARTInput = *uartInput
	}

	if cfg.BootImage == "" {
		fmt.Fprintf(os.Stderr, "Usage: brv32p [options] [image.hex]\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	segments, err := loader.LoadFile(cfg.BootImage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	system := core.NewSystem()
	for _, seg := range segments {
		system.LoadImage(cfg.BootBase+seg.Base, seg.Words)
	}
	if cfg.UARTInput != "" {
		system.UART.Feed([]byte(cfg.UARTInput))
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", cfg.BootImage)
		for _, seg := range segments {
			fmt.Printf("  segment: 0x%08X, %d words\n",
				cfg.BootBase+seg.Base, len(seg.Words))
		}
	}

	system.Run(cfg.MaxTicks)

	report(system)
	if *verbose {
		registerDump(system)
	}
}

func report(s *core.System) {
	stats := s.Stats()

	fmt.Printf("\n=== Simulation Report ===\n")
	fmt.Printf("Ticks:        %d\n", stats.Cycles)
	fmt.Printf("Instructions: %d\n", stats.Instructions)
	fmt.Printf("CPI:          %.3f\n", stats.CPI())

	fmt.Printf("\nStalls (%d ticks total):\n", stats.Stalls())
	fmt.Printf("  Load-use: %d\n", stats.LoadUseStalls)
	fmt.Printf("  Divide:   %d\n", stats.DivideStalls)
	fmt.Printf("  Memory:   %d\n", stats.MemStalls)
	fmt.Printf("  Fetch:    %d\n", stats.FetchStalls)
	fmt.Printf("Flushes:\n")
	fmt.Printf("  Mispredict: %d\n", stats.Flushes)
	fmt.Printf("  Trap/mret:  %d\n", stats.TrapFlushes)

	pstats := s.Predictor.Stats()
	fmt.Printf("\nBranch predictor: %d resolved, %.1f%% accurate, "+
		"%.1f%% BTB hits\n",
		pstats.Predictions, pstats.Accuracy(), pstats.BTBHitRate())

	istats := s.ICache.Stats()
	dstats := s.DCache.Stats()
	fmt.Printf("I-cache:      %d reads, %d hits, %d fills\n",
		istats.Reads, istats.Hits, istats.Fills)
	fmt.Printf("D-cache:      %d reads, %d writes, %d hits, %d fills\n",
		dstats.Reads, dstats.Writes, dstats.Hits, dstats.Fills)

	fmt.Printf("GPIO out:     0x%08X\n", s.GPIO.Output())
	if out := s.UART.Output(); len(out) > 0 {
		fmt.Printf("UART output:  %q\n", string(out))
	}
}

func registerDump(s *core.System) {
	fmt.Printf("\nRegisters:\n")
	for i := uint8(0); i < 32; i++ {
		fmt.Printf("  x%-2d 0x%08X", i, s.Regs.Read(i))
		if i%4 == 3 {
			fmt.Printf("\n")
		}
	}
	fmt.Printf("  pc  0x%08X\n", s.Pipeline.PC())
}
