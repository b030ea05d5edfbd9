package density

import (
	"github.com/anthonynsimon/bild/parallel"
)

// Job describes one image to synthesize in a batch.
type Job struct {
	Name   string
	Points []Point
	Height int
	Width  int
	Params Params
	// Normalize rescales the result to sum to len(Points).
	Normalize bool
}

// BatchResult carries the outcome of one Job.
type BatchResult struct {
	Name  string
	Map   *Map
	Radii []int
	Err   error
}

// SynthesizeBatch builds the maps for all jobs, spreading them across
// goroutines. Results come back in job order. A failing job records its
// error and does not stop the others.
func SynthesizeBatch(jobs []Job) []BatchResult {
	results := make([]BatchResult, len(jobs))
	parallel.Line(len(jobs), func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = runJob(jobs[i])
		}
	})
	return results
}

func runJob(job Job) BatchResult {
	res := BatchResult{Name: job.Name}
	m, radii, err := SynthesizeWithRadii(job.Points, job.Height, job.Width, job.Params)
	if err != nil {
		res.Err = err
		return res
	}
	if job.Normalize {
		m.Normalize(len(job.Points))
	}
	res.Map = m
	res.Radii = radii
	return res
}
