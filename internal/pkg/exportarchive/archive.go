package exportarchive

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// uploadTimeout bounds a single archive attempt, including the lazy client
// setup on the first call.
const uploadTimeout = 30 * time.Second

var (
	initOnce sync.Once
	client   *Client
	cfg      *Config
)

func setup() {
	var err error
	cfg, err = LoadConfig()
	if err != nil {
		log.Warnf("[ExportArchive] invalid configuration, archiving disabled: %v", err)
		cfg = &Config{}
		return
	}
	if !cfg.IsEnabled() {
		return
	}
	client, err = NewClient(cfg)
	if err != nil {
		log.Warnf("[ExportArchive] client setup failed, archiving disabled: %v", err)
		client = nil
	}
}

// Archive copies a generated export to the configured bucket in the
// background. Best effort: failures are logged and the download response is
// never delayed, even when the bucket is slow or unreachable.
func Archive(userID uint, filename string, data []byte, contentType string) {
	go archiveUpload(userID, filename, data, contentType)
}

func archiveUpload(userID uint, filename string, data []byte, contentType string) {
	initOnce.Do(setup)
	if client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	key := cfg.GetObjectKey(userID, filename, time.Now().UTC())
	if err := client.UploadBytes(ctx, key, data, contentType); err != nil {
		log.Errorf("[ExportArchive] failed to archive %s for user %d: %v", filename, userID, err)
	}
}
