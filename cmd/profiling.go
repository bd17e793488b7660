package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/spiffcs/webtask/internal/log"
)

// profiles names the output files for each profile. Empty paths disable
// the corresponding profile.
type profiles struct {
	cpu   string
	mem   string
	trace string
}

// start begins CPU profiling and execution tracing. The returned stop
// function ends them and writes the heap profile; it is never nil.
func (p profiles) start() (func(), error) {
	var stops []func() error

	// unwind stops whatever started, in reverse order
	unwind := func() error {
		var errs []error
		for i := len(stops) - 1; i >= 0; i-- {
			errs = append(errs, stops[i]())
		}
		return errors.Join(errs...)
	}

	stop := func() {
		err := unwind()
		if p.mem != "" {
			err = errors.Join(err, writeHeapProfile(p.mem))
		}
		if err != nil {
			log.Warn("profiling", "error", err)
		}
	}

	if p.cpu != "" {
		f, err := os.Create(p.cpu)
		if err != nil {
			return func() {}, fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return func() {}, fmt.Errorf("could not start CPU profile: %w", err)
		}
		stops = append(stops, func() error {
			pprof.StopCPUProfile()
			return f.Close()
		})
	}

	if p.trace != "" {
		f, err := os.Create(p.trace)
		if err != nil {
			_ = unwind()
			return func() {}, fmt.Errorf("could not create trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			_ = unwind()
			return func() {}, fmt.Errorf("could not start trace: %w", err)
		}
		stops = append(stops, func() error {
			trace.Stop()
			return f.Close()
		})
	}

	return stop, nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	runtime.GC() // Get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return f.Close()
}
