package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"timid-lang/internal/span"
)

// CheckFiles runs every file with at most jobs runs in flight. Each run has
// its own reporter; rendered diagnostics are buffered per file and written
// in input order once all runs finish. Results are in input order too.
func (d *Driver) CheckFiles(ctx context.Context, paths []string, jobs int) ([]*Result, error) {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]*Result, len(paths))
	outputs := make([]bytes.Buffer, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("cannot read file %s: %w", path, err)
			}
			rep := d.newReporter(&outputs[i])
			results[i] = d.run(ctx, span.NewSource(string(data), path), rep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if d.diagOut != nil {
		for i := range outputs {
			if _, err := outputs[i].WriteTo(d.diagOut); err != nil {
				return results, fmt.Errorf("write diagnostics: %w", err)
			}
		}
	}
	return results, nil
}
