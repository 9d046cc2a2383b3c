package web

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/palmguru/palmguru/internal/app"
	"github.com/palmguru/palmguru/internal/capture"
	"github.com/palmguru/palmguru/internal/logging"
)

const (
	Placeholder = "Upload or capture an image of your palm to discover your future and personality traits!"
	Disclaimer  = "Disclaimer: This PalmGuru application is for entertainment purposes only. " +
		"It should not be taken as professional advice or a substitute for expert consultations. " +
		"Palmistry interpretations are subjective and should be enjoyed as a fun and imaginative exploration of self."
	LoadingText = "Unveiling your destiny..."
)

//go:embed page.html
var pageHTML string

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

// pageView is the data the page template renders.
type pageView struct {
	App         app.State
	Capture     capture.Snapshot
	Result      template.HTML
	Image       template.URL // data URLs are produced by this process
	Placeholder string
	Disclaimer  string
	LoadingText string
	CopyOK      bool
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)
	// A camera failure leaves the page in upload-only mode.
	_ = sess.MountCamera(r.Context())
	st := snapshot(sess)

	image := st.Capture.Image
	if image == "" {
		image = st.App.Image
	}

	view := pageView{
		App:         st.App,
		Capture:     st.Capture,
		Result:      st.HTML,
		Image:       template.URL(image),
		Placeholder: Placeholder,
		Disclaimer:  Disclaimer,
		LoadingText: LoadingText,
		CopyOK:      st.App.CopySucceeded(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, view); err != nil {
		logging.WithSession(sess.ID).WithError(err).Error("web: rendering page")
	}
}
