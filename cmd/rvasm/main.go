// Command rvasm assembles RISC-V (RV32I+M subset) source into the
// line-oriented binary-text object format consumed by rvsim, per
// spec.md §6.1.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"riscv-sim/internal/asm"
)

var (
	version = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("rvasm %s\n", version)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	in, closeIn, err := openInput(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeIn()

	// Assemble into an in-memory buffer first: no partial object file
	// should ever be consumed by the simulator (spec.md §7).
	var buf bytes.Buffer
	if err := asm.New().Assemble(in, &buf); err != nil {
		fmt.Fprintf(os.Stderr, "Assembly error:\n%v\n", err)
		os.Exit(1)
	}

	out, closeOut, err := openOutput(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeOut()

	if _, err := io.Copy(out, &buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func printHelp() {
	fmt.Println("Usage: rvasm [input.S] [output]")
	fmt.Println()
	fmt.Println("Assembles RISC-V assembly source into the binary-text object")
	fmt.Println("format read by rvsim. Both arguments are optional: input defaults")
	fmt.Println("to stdin, output defaults to stdout.")
	fmt.Println()
	flag.PrintDefaults()
}
