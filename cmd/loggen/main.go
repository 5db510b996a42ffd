package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"logdam/internal/loggen"
)

func main() {
	var (
		formatsCSV  string
		format      string
		rate        float64
		keys        int
		outPath     string
		toStdout    bool
		durationStr string
	)

	flag.StringVar(&formatsCSV, "formats", "", "Comma-separated list of "+strings.Join(loggen.Formats(), ",")+". Generates each to simulateddata/<format>.log")
	flag.StringVar(&format, "format", "", "Single format. Use with --stdout or --out")
	flag.Float64Var(&rate, "rate", 5.0, "Messages per second per stream")
	flag.IntVar(&keys, "keys", 8, "Distinct keys per stream; small values make rows update in place")
	flag.StringVar(&outPath, "out", "", "Output file path (only when --format is set). Defaults to simulateddata/<format>.log")
	flag.BoolVar(&toStdout, "stdout", false, "Write to stdout instead of file (only when --format is set)")
	flag.StringVar(&durationStr, "duration", "", "Optional run duration (e.g., 30s, 2m). Empty means run until interrupted")
	flag.Parse()

	var interrupted atomic.Bool
	abort := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		interrupted.Store(true)
		close(abort)
	}()

	var deadline time.Time
	if durationStr != "" {
		d, err := time.ParseDuration(durationStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid duration: %v\n", err)
			os.Exit(2)
		}
		deadline = time.Now().Add(d)
	}

	shouldStop := func() bool {
		select {
		case <-abort:
			return true
		default:
		}
		return !deadline.IsZero() && time.Now().After(deadline)
	}

	if formatsCSV != "" {
		formats := splitFormats(formatsCSV)
		if len(formats) == 0 {
			fmt.Fprintln(os.Stderr, "no valid formats provided")
			os.Exit(2)
		}
		dir := filepath.Join("simulateddata")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create simulateddata: %v\n", err)
			os.Exit(1)
		}
		var wg sync.WaitGroup
		var created []string
		for _, f := range formats {
			p := filepath.Join(dir, f+".log")
			if err := runStreamToFile(&wg, f, keys, p, rate, shouldStop); err != nil {
				fmt.Fprintf(os.Stderr, "error starting %s stream: %v\n", f, err)
				os.Exit(1)
			}
			created = append(created, p)
			fmt.Fprintf(os.Stderr, "generating %s logs -> %s at %.2f msg/s\n", f, p, rate)
		}
		wg.Wait()
		if interrupted.Load() {
			for _, p := range created {
				_ = os.Remove(p)
			}
		}
		return
	}

	if format == "" {
		fmt.Fprintln(os.Stderr, "either --formats or --format is required")
		os.Exit(2)
	}
	format = loggen.Normalize(format)
	if !loggen.Supported(format) {
		fmt.Fprintf(os.Stderr, "unsupported format: %s\n", format)
		os.Exit(2)
	}

	if toStdout {
		w := bufio.NewWriter(os.Stdout)
		defer w.Flush()
		if err := runStream(w, format, keys, rate, shouldStop); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if outPath == "" {
		if err := os.MkdirAll("simulateddata", 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create simulateddata: %v\n", err)
			os.Exit(1)
		}
		outPath = filepath.Join("simulateddata", format+".log")
	}
	var wg sync.WaitGroup
	if err := runStreamToFile(&wg, format, keys, outPath, rate, shouldStop); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "generating %s logs -> %s at %.2f msg/s\n", format, outPath, rate)
	wg.Wait()
	if interrupted.Load() {
		_ = os.Remove(outPath)
	}
}

func splitFormats(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		p = loggen.Normalize(p)
		if p != "" && loggen.Supported(p) {
			out = append(out, p)
		}
	}
	return out
}

func runStreamToFile(wg *sync.WaitGroup, format string, keys int, path string, rate float64, shouldStop func() bool) error {
	// Always clear the existing log at the start
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer f.Close()
		defer w.Flush()
		if err := runStream(w, format, keys, rate, shouldStop); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		}
	}()
	return nil
}

func runStream(w *bufio.Writer, format string, keys int, rate float64, shouldStop func() bool) error {
	gen, err := loggen.New(format, keys, time.Now().UnixNano())
	if err != nil {
		return err
	}
	if rate <= 0 {
		rate = 1
	}
	interval := time.Duration(float64(time.Second) / rate)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !shouldStop() {
		select {
		case now := <-ticker.C:
			w.WriteString(gen.Line(now))
			w.WriteByte('\n')
			// flush per line so followers see data promptly
			if err := w.Flush(); err != nil {
				return err
			}
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}
