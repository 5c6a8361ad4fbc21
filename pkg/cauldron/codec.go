// SPDX-License-Identifier: MPL-2.0

package cauldron

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path"
	"slices"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/ernfleet/cauldron/internal/cueutil"
)

//go:embed cauldron_schema.cue
var schemaBytes []byte

// Decode parses a cauldron.json payload: the raw tree is migrated to the
// current schema, validated against the CUE schema, decoded and checked
// with Validate.
func Decode(data []byte) (*Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &SchemaError{Reason: "malformed document", Err: err}
	}
	if raw == nil {
		return nil, &SchemaError{Reason: "document root must be an object"}
	}
	if _, err := Migrate(raw); err != nil {
		return nil, err
	}
	return decodeCurrent(raw)
}

func decodeCurrent(raw map[string]any) (*Document, error) {
	migrated, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encode migrated document: %w", err)
	}
	if _, err := cueutil.Validate(schemaBytes, migrated, "#Cauldron", cueutil.WithFilename(FileName)); err != nil {
		return nil, &SchemaError{Found: CurrentSchemaVersion, Reason: "document does not match the schema", Err: err}
	}

	doc := &Document{}
	if err := json.Unmarshal(migrated, doc); err != nil {
		return nil, &SchemaError{Found: CurrentSchemaVersion, Reason: "decode document", Err: err}
	}
	doc.normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Encode serializes doc as indented JSON at CurrentSchemaVersion. Absent
// collections are written as empty ones.
func Encode(doc *Document) ([]byte, error) {
	doc.SchemaVersion = CurrentSchemaVersion
	doc.normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// Load reads the document from the root of fs. A missing file yields an
// empty current document.
func Load(fs billy.Filesystem) (*Document, error) {
	data, err := util.ReadFile(fs, FileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}
	return Decode(data)
}

// Save writes the yarn lock blobs staged on doc, then the document itself.
// The document file is replaced through a temporary file and a rename.
func Save(fs billy.Filesystem, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	if len(doc.staged) > 0 {
		if err := fs.MkdirAll(YarnLockDir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", YarnLockDir, err)
		}
		for _, id := range slices.Sorted(maps.Keys(doc.staged)) {
			if err := util.WriteFile(fs, path.Join(YarnLockDir, id), doc.staged[id], 0o644); err != nil {
				return fmt.Errorf("write yarn lock %s: %w", id, err)
			}
		}
		doc.staged = nil
	}

	tmp := FileName + ".tmp"
	if err := util.WriteFile(fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, FileName); err != nil {
		_ = fs.Remove(tmp) // Best-effort cleanup of temp file
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// ReadYarnLock returns the yarn lock blob stored under id. Blobs staged on
// doc but not yet saved are returned from memory.
func ReadYarnLock(fs billy.Filesystem, doc *Document, id string) ([]byte, error) {
	if data, ok := doc.staged[id]; ok {
		return slices.Clone(data), nil
	}
	data, err := util.ReadFile(fs, path.Join(YarnLockDir, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Kind: "yarn lock blob", Key: id}
		}
		return nil, fmt.Errorf("read yarn lock %s: %w", id, err)
	}
	return data, nil
}
