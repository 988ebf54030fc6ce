package service

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/image-enhancer/internal/enhance"
)

func createRampImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Pix[y*width+x] = uint8(60 + (x+y)%80)
		}
	}
	return img
}

func TestRun(t *testing.T) {
	tests := []struct {
		name          string
		algorithm     string
		wantAlgorithm enhance.Algorithm
		wantDefaulted bool
	}{
		{"clahe", "clahe", enhance.CLAHE, false},
		{"gamma", "gamma", enhance.Gamma, false},
		{"adaptive threshold", "adaptive_threshold", enhance.AdaptiveThreshold, false},
		{"unknown falls back", "sharpen-please", enhance.CLAHE, true},
		{"empty falls back", "", enhance.CLAHE, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := createRampImage(32, 24)
			res, err := Run(context.Background(), Request{Image: src, Algorithm: tt.algorithm})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if res.Algorithm != tt.wantAlgorithm {
				t.Errorf("Algorithm: got %v, want %v", res.Algorithm, tt.wantAlgorithm)
			}
			if res.Defaulted != tt.wantDefaulted {
				t.Errorf("Defaulted: got %v, want %v", res.Defaulted, tt.wantDefaulted)
			}
			if res.Enhanced.Bounds() != src.Bounds() {
				t.Errorf("bounds: got %v, want %v", res.Enhanced.Bounds(), src.Bounds())
			}
			if res.Metrics == nil {
				t.Fatal("Metrics is nil")
			}
			if res.Metrics.ContrastOriginal == 0 {
				t.Error("ContrastOriginal should be positive for a ramp")
			}
		})
	}
}

func TestRun_InvalidImage(t *testing.T) {
	_, err := Run(context.Background(), Request{Algorithm: "clahe"})
	if !errors.Is(err, enhance.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Request{Image: createRampImage(4, 4), Algorithm: "clahe"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
