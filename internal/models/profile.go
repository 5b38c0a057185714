package models

// WorkerMode controls how a background worker is scheduled across instances.
type WorkerMode string

const (
	WorkerModeDisabled  WorkerMode = "disabled"
	WorkerModeSingleton WorkerMode = "singleton" // one instance at a time, elected through cache locks
	WorkerModeAll       WorkerMode = "all"
)

// Profile is a deployment shape: which of the HTTP server and the
// background workers a given process runs.
type Profile struct {
	Name       string
	HTTPServer bool
	Workers    WorkerConfig
}

type WorkerConfig struct {
	Notifications WorkerMode
}

func (w WorkerConfig) AnyEnabled() bool {
	return w.Notifications != WorkerModeDisabled
}

// NeedsEvents reports whether the profile requires a configured events
// backend. The server publishes and the workers subscribe, so both sides
// need one.
func (p Profile) NeedsEvents() bool {
	return p.HTTPServer || p.Workers.AnyEnabled()
}
