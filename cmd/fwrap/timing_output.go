package main

import (
	"fmt"
	"io"
	"time"

	"fwrap/internal/pipeline"
)

func printStageTimings(out io.Writer, timings pipeline.Timings) error {
	for _, stage := range pipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%-8s %.1f ms\n", stage, toMillis(timings.Duration(stage))); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "%-8s %.1f ms\n", "total", toMillis(timings.Sum()))
	return err
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
