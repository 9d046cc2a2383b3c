package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/palmguru/palmguru/internal/app"
	"github.com/palmguru/palmguru/internal/apperr"
	"github.com/palmguru/palmguru/internal/capture"
	"github.com/palmguru/palmguru/internal/logging"
)

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)

	// Room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+1<<16)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": capture.FileErrorMessage,
				"type":  string(apperr.TypeValidation),
			})
			return
		}
		writeError(w, apperr.Validation("Please choose an image to upload."))
		return
	}
	defer file.Close()

	// The multipart file goes away with the request; the controller reads
	// in the background.
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperr.Validation(capture.FileErrorMessage))
		return
	}

	sess.Capture.SelectFile(header.Filename, header.Header.Get("Content-Type"), bytes.NewReader(data))
	sess.Capture.Wait()

	st := snapshot(sess)
	if st.Capture.Error != "" {
		writeError(w, apperr.Validation(st.Capture.Error))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleCapture(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)

	if err := sess.Capture.Capture(); err != nil {
		if errors.Is(err, capture.ErrNotActive) {
			err = apperr.Camera("The camera is not active.", err)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// handleRetake reacquires the camera. A camera failure shows up in the
// capture state rather than as an error response.
func (h *Handler) handleRetake(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)

	if err := sess.Capture.Retake(r.Context()); err != nil {
		logging.WithSession(sess.ID).WithError(err).Debug("web: retake left camera unavailable")
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (h *Handler) handleFrame(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)

	frame, err := sess.Capture.CurrentFrame()
	if err != nil {
		if errors.Is(err, capture.ErrNotActive) {
			err = apperr.Camera("The camera is not active.", err)
		}
		writeError(w, err)
		return
	}
	data, err := frame.Decode()
	if err != nil {
		writeError(w, apperr.Internal("Could not encode the camera frame.", err))
		return
	}

	w.Header().Set("Content-Type", frame.MIMEType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// handleAnalyze starts an analysis and answers with the loading state
// before it finishes; the outcome arrives through the state stream.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)

	// Only a newer transition or the session closing ends the analysis.
	run, err := sess.App.StartAnalysis(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	st := snapshot(sess)

	go func() {
		err := run()
		if err != nil && !errors.Is(err, app.ErrSuperseded) {
			logging.WithSession(sess.ID).WithError(err).Debug("web: analysis ended with error")
		}
	}()

	writeJSON(w, http.StatusAccepted, st)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)
	sess.StartOver(r.Context())
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (h *Handler) handleCopy(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)

	var report copyReport
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, apperr.Validation("invalid request body"))
			return
		}
	}

	if err := sess.App.CopyResult(withCopyReport(r.Context(), report)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}
