package types

// ReloadReport describes the outcome of reloading one container for a tag event.
type ReloadReport struct {
	ContainerID   ContainerID
	ContainerName string
	Image         string      // Image reference the replacement was created from.
	NewID         ContainerID // Empty unless the replacement was created.
	Removed       bool        // True once the old container was removed.
	Err           error
}

// Failed reports whether the reload did not complete.
func (r ReloadReport) Failed() bool {
	return r.Err != nil
}

// Notifier defines the interface for reporting reload outcomes to external services.
type Notifier interface {
	// SendReload queues a message describing the outcome of a reload.
	SendReload(report ReloadReport)
	// GetNames returns the names of the configured notification services.
	GetNames() []string
	// Close flushes queued messages and releases resources.
	Close()
}
