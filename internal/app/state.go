package app

// Phase is the coarse page layout derived from State.
type Phase string

const (
	PhaseEmpty  Phase = "empty"  // no image yet
	PhaseImage  Phase = "image"  // image, no reading
	PhaseResult Phase = "result" // image and reading
)

// State is everything the page shows. It is a value; the controller hands
// out copies and never shares its own.
type State struct {
	Image       string `json:"image,omitempty"`
	Result      string `json:"result,omitempty"`
	Loading     bool   `json:"loading"`
	Error       string `json:"error,omitempty"`
	CopyMessage string `json:"copy_message,omitempty"`
}

func (s State) Phase() Phase {
	switch {
	case s.Image == "":
		return PhaseEmpty
	case s.Result == "":
		return PhaseImage
	default:
		return PhaseResult
	}
}

func (s State) HasImage() bool  { return s.Image != "" }
func (s State) HasResult() bool { return s.Result != "" }

// CopySucceeded reports whether the copy message is the success message.
func (s State) CopySucceeded() bool { return s.CopyMessage == CopySuccessMessage }
