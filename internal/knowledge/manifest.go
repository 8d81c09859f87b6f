package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

// EncodeManifest renders m as JSON Lines: one compact object per entry,
// newline separated, no trailing newline.
func EncodeManifest(m domain.Manifest) []byte {
	lines := make([][]byte, 0, len(m))
	for _, e := range m {
		// ManifestEntry has only string fields; Marshal cannot fail.
		b, _ := json.Marshal(e)
		lines = append(lines, b)
	}
	return bytes.Join(lines, []byte("\n"))
}

// DecodeManifest parses JSON Lines produced by EncodeManifest. Blank lines
// are ignored.
func DecodeManifest(data []byte) (domain.Manifest, error) {
	var m domain.Manifest
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var e domain.ManifestEntry
		if err := json.Unmarshal(line, &e); err != nil {
			appErr := apperrors.NewInvalidInputError("invalid manifest line", fmt.Sprintf("line %d", i+1))
			appErr.Cause = err
			return nil, appErr
		}
		m = append(m, e)
	}
	return m, nil
}
