package collector

import (
	"context"
	"fmt"
	"os"

	"RiskDial/internal/model"
)

// FileProvider reads a series an external connector wrote to disk, in the
// same [{timestamp, value}] shape the HTTP provider accepts.
type FileProvider struct{}

func (FileProvider) Name() string { return "file" }

func (FileProvider) FetchSeries(ctx context.Context, spec SourceSpec) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return model.Series{}, err
	}
	f, err := os.Open(spec.Path)
	if err != nil {
		return model.Series{}, fmt.Errorf("open series file: %w", err)
	}
	defer f.Close()
	points, err := decodePoints(f)
	if err != nil {
		return model.Series{}, fmt.Errorf("%s: %w", spec.Path, err)
	}
	return model.Series{Key: spec.Name, Source: "file:" + spec.Path, Points: points}, nil
}
