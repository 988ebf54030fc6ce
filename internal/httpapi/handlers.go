package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ironsheep/image-enhancer/internal/enhance"
	"github.com/ironsheep/image-enhancer/internal/imaging"
	"github.com/ironsheep/image-enhancer/internal/service"
)

// runPipeline is the enhancement entry point; tests substitute it.
var runPipeline = service.Run

type outcome struct {
	res *service.Result
	err error
}

// handleEnhance decodes the data URL, runs the pipeline and returns the
// enhanced PNG with its metrics.
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var body enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if body.Image == "" {
		s.writeError(w, r, http.StatusBadRequest, "missing image")
		return
	}

	src, err := imaging.DecodeDataURL(body.Image)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	gray, err := imaging.ToGray(src)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	// The pipeline is not interruptible; the select bounds how long the
	// client waits.
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("enhancement panicked: %v", p)}
			}
		}()
		res, err := runPipeline(ctx, service.Request{
			Image:     gray,
			Algorithm: body.Algorithm,
			Params:    body.params(),
		})
		done <- outcome{res, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}

	log := s.log.With().
		Str("request_id", RequestIDFrom(r.Context())).
		Str("requested", body.Algorithm).
		Int("width", gray.Rect.Dx()).
		Int("height", gray.Rect.Dy()).
		Logger()

	if out.err != nil {
		log.Error().Err(out.err).Msg("enhancement failed")
		switch {
		case errors.Is(out.err, enhance.ErrInvalidInput):
			s.writeError(w, r, http.StatusBadRequest, out.err.Error())
		case errors.Is(out.err, context.DeadlineExceeded):
			s.writeError(w, r, http.StatusGatewayTimeout, "processing timed out")
		default:
			s.writeError(w, r, http.StatusInternalServerError, out.err.Error())
		}
		return
	}

	res := out.res
	if err := res.Metrics.Err(); err != nil {
		log.Warn().Err(err).Msg("degenerate metrics")
	}

	encoded, err := imaging.EncodePNGDataURL(res.Enhanced)
	if err != nil {
		log.Error().Err(err).Msg("encoding failed")
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().
		Stringer("algorithm", res.Algorithm).
		Bool("defaulted", res.Defaulted).
		Dur("elapsed", res.Elapsed).
		Msg("image enhanced")

	s.writeJSON(w, http.StatusOK, enhanceResponse{
		EnhancedImage: encoded,
		Metrics:       res.Metrics,
		Algorithm:     res.Algorithm,
		Defaulted:     res.Defaulted,
		ElapsedMS:     res.Elapsed.Milliseconds(),
	})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"algorithms": enhance.Algorithms(),
		"default":    enhance.CLAHE,
		"defaults":   enhance.DefaultParams(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Int("status", status).Msg("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeJSON(w, status, errorResponse{
		Error:     message,
		RequestID: RequestIDFrom(r.Context()),
	})
}
