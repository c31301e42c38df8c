// Package batch conceals the same message in many images in parallel.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

// Job is one input image and the carrier path it is written to.
type Job struct {
	Input  string
	Output string
}

// Result reports the outcome of a single job. Err is nil on success.
type Result struct {
	Job
	Bits     int
	Slots    int
	Duration time.Duration
	Err      error
}

type Runner struct {
	// Workers bounds the number of jobs in flight; zero means runtime.NumCPU().
	Workers  int
	Framing  stego.Framing
	Channels int
	Logger   zerolog.Logger
	// OnDone, if set, is called once per finished job. Calls are serialized.
	OnDone func(Result)
}

// JobsFor maps inputs to carriers in outDir, named after the input with a
// .png extension. Inputs that share a base name get an index suffix.
func JobsFor(inputs []string, outDir string) []Job {
	jobs := make([]Job, 0, len(inputs))
	seen := make(map[string]int, len(inputs))
	for _, in := range inputs {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		name := base
		if n := seen[base]; n > 0 {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[base]++
		jobs = append(jobs, Job{Input: in, Output: filepath.Join(outDir, name+".png")})
	}
	return jobs
}

// Run conceals message in every job's input. Per-job failures are reported in
// the results, in job order; the returned error is non-nil only when ctx is
// cancelled or the message itself cannot be framed.
func (r *Runner) Run(ctx context.Context, message string, jobs []Job) ([]Result, error) {
	framing := r.Framing
	if framing == nil {
		framing = stego.DefaultFraming
	}
	channels := r.Channels
	if channels == 0 {
		channels = stego.RGB
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	bits, err := framing.Encode([]byte(message))
	if err != nil {
		return nil, err
	}

	r.Logger.Debug().
		Int("jobs", len(jobs)).
		Int("workers", workers).
		Int("required", len(bits)).
		Str("framing", framing.Name()).
		Msg("Starting batch")

	results := make([]Result, len(jobs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := r.conceal(job, bits, channels)
			results[i] = res

			if res.Err != nil {
				r.Logger.Warn().Err(res.Err).Str("input", job.Input).Msg("Failed to conceal message")
			} else {
				r.Logger.Debug().Str("output", job.Output).Dur("took", res.Duration).Msg("Wrote carrier")
			}
			if r.OnDone != nil {
				mu.Lock()
				r.OnDone(res)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) conceal(job Job, bits stego.Bits, channels int) Result {
	start := time.Now()
	res := Result{Job: job, Bits: len(bits)}

	grid, err := stego.LoadGrid(job.Input, channels)
	if err != nil {
		res.Err = err
		return res
	}
	res.Slots = grid.Slots()

	carrier, err := stego.Embed(grid, bits)
	if err != nil {
		res.Err = err
		return res
	}

	if dir := filepath.Dir(job.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			res.Err = err
			return res
		}
	}
	if err := stego.SaveGrid(job.Output, carrier); err != nil {
		res.Err = err
		return res
	}

	res.Duration = time.Since(start)
	return res
}

// Failed counts results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
