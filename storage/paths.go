package storage

import (
	"fmt"

	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// namespace returns the directory or key prefix for a content type.
func namespace(contentType interfaces.ContentType) (string, error) {
	switch contentType {
	case interfaces.CheckpointType:
		return "checkpoints", nil
	case interfaces.ManifestType:
		return "manifests", nil
	default:
		return "", fmt.Errorf("unsupported content type: %v", contentType)
	}
}

func shortID(id interfaces.ContentID) string {
	return fmt.Sprintf("%x", id[:8])
}
