package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/js-runtime/engine"
)

func main() {
	var (
		expr        = flag.String("e", "", "Script source to evaluate")
		file        = flag.String("file", "", "Path to script file")
		line        = flag.Int("line", 1, "Line number of the first source line")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging to stderr")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	defer func() { _ = logger.Sync() }()
	engine.SetLogger(logger)

	if *interactive {
		if err := runInteractive(logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	src, name, err := readSource(*expr, *file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if src == nil {
		fmt.Fprintln(os.Stderr, "Usage: jsrun -e <source> [-line n] [-v]")
		fmt.Fprintln(os.Stderr, "       jsrun -file <script.js> [-line n] [-v]")
		fmt.Fprintln(os.Stderr, "       jsrun < script.js")
		fmt.Fprintln(os.Stderr, "       jsrun -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(logger, src, name, *line); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// readSource returns nil source when nothing was given and stdin is a
// terminal.
func readSource(expr, file string) ([]byte, string, error) {
	switch {
	case expr != "":
		return []byte(expr), "<expr>", nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, "", fmt.Errorf("read file: %w", err)
		}
		return data, file, nil
	case !term.IsTerminal(int(os.Stdin.Fd())):
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "<stdin>", nil
	}
	return nil, "", nil
}

func run(logger *zap.Logger, src []byte, filename string, line int) (err error) {
	s, err := openSession(logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	out, err := s.eval(src, filename, line)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
