package exportarchive

import (
	"testing"
	"time"
)

// Archive must hand the upload off to the background even while the one-time
// client setup is still in flight, so a slow or unreachable bucket can never
// delay the download response.
func TestArchiveReturnsWhileSetupBlocked(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	go initOnce.Do(func() {
		close(started)
		<-release
	})
	<-started
	defer close(release)

	done := make(chan struct{})
	go func() {
		Archive(7, "expenses_2025-06-10.csv", []byte("data"), "text/csv")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Archive blocked on client setup instead of running in the background")
	}
}
