// Package service runs the enhance-then-evaluate pipeline shared by the HTTP,
// MCP and CLI front ends.
package service

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/image-enhancer/internal/enhance"
	"github.com/ironsheep/image-enhancer/internal/metrics"
)

// Request describes one enhancement.
type Request struct {
	// Image is the grayscale source. It is not modified.
	Image *image.Gray

	// Algorithm is the selector name as sent by the client.
	Algorithm string

	// Params holds the tunables; zero fields take their defaults.
	Params enhance.Params
}

// Result is the outcome of one enhancement.
type Result struct {
	// Enhanced has the same bounds as Request.Image.
	Enhanced *image.Gray

	// Algorithm is the algorithm that actually ran.
	Algorithm enhance.Algorithm

	// Defaulted is true when Request.Algorithm was not recognized and CLAHE ran instead.
	Defaulted bool

	// Metrics compares Enhanced against Request.Image.
	Metrics *metrics.Report

	// Elapsed is the wall-clock time spent in enhancement and evaluation.
	Elapsed time.Duration
}

// Run enhances req.Image and scores the result.
//
// ctx is only checked before and after the computation; the core itself is not
// interruptible, so a deadline bounds how long the caller waits, not how long
// the CPU works.
func Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	alg, ok := enhance.ParseAlgorithm(req.Algorithm)

	enhanced, err := enhance.Enhance(req.Image, alg, req.Params)
	if err != nil {
		return nil, fmt.Errorf("enhance %s: %w", alg, err)
	}

	report, err := metrics.Evaluate(req.Image, enhanced)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", alg, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Enhanced:  enhanced,
		Algorithm: alg,
		Defaulted: !ok,
		Metrics:   report,
		Elapsed:   time.Since(start),
	}, nil
}
