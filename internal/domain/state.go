package domain

// LifecycleState enumerates the editor states the page renders from.
type LifecycleState string

const (
	StateIdle       LifecycleState = "idle"
	StateUploading  LifecycleState = "uploading"
	StateGenerating LifecycleState = "generating"
	StateSuccess    LifecycleState = "success"
	StateError      LifecycleState = "error"
)

// Busy reports whether the state blocks a new generation.
func (s LifecycleState) Busy() bool {
	return s == StateGenerating || s == StateUploading
}
