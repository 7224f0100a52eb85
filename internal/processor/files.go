package processor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"peerspend/internal/logging"
	"peerspend/internal/traces"
)

// Run executes a full batch+stream run against files: seed state from
// batchPath, process streamPath, and write flagged records to outPath.
// An existing output file is renamed aside with a timestamp suffix
// rather than overwritten.
func (p *Processor) Run(ctx context.Context, batchPath, streamPath, outPath string) error {
	start := time.Now()

	if err := p.runBatchFile(ctx, batchPath); err != nil {
		return fmt.Errorf("batch phase: %w", err)
	}
	logging.L(ctx).Info("batch phase complete",
		"events", p.eventsProcessed,
		"users", p.dir.Len(),
		"degrees", p.degrees,
		"threshold", p.threshold,
	)

	if err := p.runStreamFile(ctx, streamPath, outPath); err != nil {
		return fmt.Errorf("stream phase: %w", err)
	}
	logging.L(ctx).Info("run complete",
		"events", p.eventsProcessed,
		"users", p.dir.Len(),
		"anomalies", p.anomaliesFound,
		"duration", time.Since(start),
	)
	return nil
}

func (p *Processor) runBatchFile(ctx context.Context, path string) error {
	ctx, span := traces.StartSpan(ctx, "peerspend.batch",
		traces.Phase("batch"), traces.InputPath(path))
	defer span.End()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := p.RunBatch(ctx, f); err != nil {
		return err
	}
	span.SetAttributes(traces.EventCount(p.eventsProcessed), traces.UserCount(p.dir.Len()))
	return nil
}

func (p *Processor) runStreamFile(ctx context.Context, path, outPath string) error {
	ctx, span := traces.StartSpan(ctx, "peerspend.stream",
		traces.Phase("stream"), traces.InputPath(path))
	defer span.End()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := renameAsideIfExists(ctx, outPath); err != nil {
		return err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	if err := p.RunStream(ctx, f, w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	span.SetAttributes(
		traces.EventCount(p.eventsProcessed),
		traces.AnomalyCount(p.anomaliesFound),
		traces.UserCount(p.dir.Len()),
	)
	return nil
}

// renameAsideIfExists preserves previous run output by renaming it with a
// timestamp suffix.
func renameAsideIfExists(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	aside := fmt.Sprintf("%s.%s.json", path, time.Now().UTC().Format(time.RFC3339))
	logging.L(ctx).Info("renaming existing output file", "from", path, "to", aside)
	return os.Rename(path, aside)
}
