// Command rvsim loads a binary-text object program (spec.md §6.2) and
// executes it on the single-cycle RV32I+M datapath, printing cycle
// statistics, a register dump, and a touched-memory dump on
// termination, per spec.md §6.3.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"riscv-sim/internal/config"
	"riscv-sim/internal/cpu"
	"riscv-sim/internal/trace"
)

var version = "dev"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		configPath  = flag.String("config", "", "Path to a TOML config file (optional)")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum instructions to retire before giving up (0 = unlimited)")
		enableTrace = flag.Bool("trace", false, "Enable execution trace")
		traceFile   = flag.String("trace-file", "", "Trace output file (default: trace.log; stderr if the config sets an empty output_file)")
		enableStats = flag.Bool("stats", false, "Print per-opcode statistics after the dumps")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("rvsim %s\n", version)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *maxCycles != 0 {
		cfg.Execution.MaxCycles = *maxCycles
	}
	if *enableTrace {
		cfg.Trace.Enabled = true
	}
	if *traceFile != "" {
		cfg.Trace.OutputFile = *traceFile
	}
	if *enableStats {
		cfg.Statistics.Enabled = true
	}

	in, closeIn, err := openInput(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeIn()

	recorder, closeTrace, err := setupTrace(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeTrace()

	proc := cpu.New(
		cpu.WithMemorySize(cfg.Execution.IMEMSize, cfg.Execution.DMEMSize),
		cpu.WithMaxCycles(cfg.Execution.MaxCycles),
		cpu.WithSink(recorder),
	)

	if err := proc.LoadProgram(in); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if err := proc.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	printStatistics(proc)
	printRegisterDump(proc)
	printMemoryDump(proc)

	if cfg.Statistics.Enabled {
		printOpcodeStatistics(recorder)
	}
}

func setupTrace(cfg *config.Config) (*trace.Recorder, func(), error) {
	if !cfg.Trace.Enabled {
		return trace.NewRecorder(nil), func() {}, nil
	}
	if cfg.Trace.OutputFile == "" {
		return trace.NewRecorder(os.Stderr), func() {}, nil
	}
	f, err := os.Create(cfg.Trace.OutputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace file %s: %w", cfg.Trace.OutputFile, err)
	}
	return trace.NewRecorder(f), func() { f.Close() }, nil
}

func openInput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func printStatistics(proc *cpu.Processor) {
	fmt.Printf("Processor's clock cycles: %d\n", proc.Clock())
}

func printRegisterDump(proc *cpu.Processor) {
	fmt.Println(">>>>>>>>[REGISTER DUMP]<<<<<<<")
	fmt.Printf("PC: = %d\n", proc.PC())
	for i := 0; i < 32; i++ {
		fmt.Printf("x%02d = %d\n", i, int32(proc.Register(i)))
	}
	fmt.Println(">>>>>>>>>>>>>>>>>>>>>>>>>>>>>>")
}

func printMemoryDump(proc *cpu.Processor) {
	fmt.Println(">>>>>>>>[MEMORY DUMP]<<<<<<<<<")
	for _, addr := range proc.TouchedAddresses() {
		fmt.Printf("%x : %d\n", addr, proc.DataByte(addr))
	}
	fmt.Println(">>>>>>>>>>>>>>>>>>>>>>>>>>>>>>")
}

func printOpcodeStatistics(recorder *trace.Recorder) {
	fmt.Println(">>>>>>>>[OPCODE STATISTICS]<<<<")
	for op, count := range recorder.OpcodeCounts() {
		fmt.Printf("%s : %d\n", op, count)
	}
	fmt.Println(">>>>>>>>>>>>>>>>>>>>>>>>>>>>>>")
}

func printHelp() {
	fmt.Println("Usage: rvsim [program]")
	fmt.Println()
	fmt.Println("Executes a RISC-V object program produced by rvasm. program")
	fmt.Println("defaults to stdin if omitted.")
	fmt.Println()
	flag.PrintDefaults()
}
