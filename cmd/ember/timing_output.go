package main

import (
	"fmt"
	"io"
	"time"

	"ember/internal/buildpipeline"
	"ember/internal/observ"
)

// printTimings writes the driver phases followed by the pipeline stages.
func printTimings(out io.Writer, timer *observ.Timer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	if timer != nil {
		fmt.Fprint(out, timer.Summary())
	}
	if timings.Has(buildpipeline.StageCheck) {
		fmt.Fprintf(out, "checked %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageCheck)))
	}
	if timings.Has(buildpipeline.StageEmit) {
		fmt.Fprintf(out, "emitted %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageEmit)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
