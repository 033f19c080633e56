package browser

import (
	_ "embed"
)

// BindingName is the page binding the capture script posts events through
const BindingName = "__todrec_event"

//go:embed js/capture.js
var captureScript string

//go:embed js/overlay.js
var overlayScript string

// pageScripts are installed in every new document and the current one
func pageScripts() []string {
	return []string{captureScript, overlayScript}
}
