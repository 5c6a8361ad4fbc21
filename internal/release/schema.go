// SPDX-License-Identifier: MPL-2.0

package release

import (
	"encoding/json"

	"github.com/ernfleet/cauldron/pkg/cauldron"
)

// schemaVersionOf reads the schema tag of a raw cauldron.json.
func schemaVersionOf(data []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", &cauldron.SchemaError{Reason: "malformed document", Err: err}
	}
	return cauldron.SchemaVersionOf(raw)
}
