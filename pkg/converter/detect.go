package converter

import (
	"encoding/json"

	"github.com/dukex/soarbridge/pkg/models"
)

const (
	FormatFSR = "fsr"
	FormatFAS = "fas"
)

// Detect inspects an arbitrary document and reports which export format it is. It returns
// nil when the document is not JSON or carries neither discriminator. The result is advisory
// and is not checked by the conversion entry points.
func Detect(raw []byte) *models.Detection {
	var doc struct {
		Type     string `json:"type"`
		Versions []any  `json:"versions"`
		Data     []struct {
			Workflows []json.RawMessage `json:"workflows"`
			Playbooks []json.RawMessage `json:"playbooks"`
		} `json:"data"`
	}

	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	detection := &models.Detection{Collections: len(doc.Data)}

	switch doc.Type {
	case models.WorkflowCollectionsType:
		detection.Format = FormatFSR

		for _, collection := range doc.Data {
			detection.Items += len(collection.Workflows)
		}
	case models.PlaybookCollectionsType:
		detection.Format = FormatFAS
		detection.HasVersions = len(doc.Versions) > 0

		for _, collection := range doc.Data {
			detection.Items += len(collection.Playbooks)
		}
	default:
		return nil
	}

	return detection
}
