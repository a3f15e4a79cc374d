package liveframe

// ViewportBinding names the page elements a session may mutate. The host
// resolves bindings once (from the manifest or by hand) and passes them in
// explicitly; the core never derives element ids from naming conventions.
//
// Only Container is required. Absent optional elements degrade gracefully:
// the corresponding command is simply skipped.
type ViewportBinding struct {
	// Container is the id of the embedding target element (the iframe).
	Container string

	// Loader is the id of the loading indicator element, if any.
	Loader string

	// Status is the id of the status message region, if any.
	Status string

	// Wrapper is the id of an ancestor element whose visibility is toggled
	// instead of the frame's own, if any.
	Wrapper string
}

// frameTarget returns the element whose visibility hides or restores the
// viewport content area during a (re)load.
func (b ViewportBinding) frameTarget() string {
	if b.Wrapper != "" {
		return b.Wrapper
	}
	return b.Container
}
