// Package ingest loads register-spec YAML documents into the canonical
// model and applies them to the spec store.
//
// A load is all-or-nothing: any structural problem in the source document
// (unknown keys, inverted bit ranges, bad constraint tokens) fails the
// whole load before anything touches the store.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
	"github.com/sajansshergill/spec2dv-data-modeler/internal/store"
)

// variantOverlay is the shape of a variant overlay document. Overrides are
// stored on the bundle as-is; they do not merge into the spec structure.
// Variants influence instances and parameters, not the register tree.
type variantOverlay struct {
	Variant   string         `yaml:"variant"`
	Overrides map[string]any `yaml:"overrides"`
}

// LoadBundle reads a base spec document plus an optional variant overlay
// (variantPath may be empty) and returns the bundle to ingest.
func LoadBundle(specPath, variantPath string) (ir.Bundle, error) {
	doc, err := loadSpecDoc(specPath)
	if err != nil {
		return ir.Bundle{}, err
	}

	bundle := ir.Bundle{
		SpecVersion:      doc.SpecVersion,
		Doc:              doc,
		VariantOverrides: map[string]any{},
	}

	if variantPath != "" {
		overlay, err := loadOverlay(variantPath)
		if err != nil {
			return ir.Bundle{}, err
		}
		bundle.VariantName = overlay.Variant
		if overlay.Overrides != nil {
			bundle.VariantOverrides = overlay.Overrides
		}
	}

	return bundle, nil
}

// Apply writes a loaded bundle to the store as one atomic replace and
// returns the recorded run ID.
func Apply(ctx context.Context, s *store.Store, bundle ir.Bundle, gitCommit string) (string, error) {
	runID, err := s.ApplyBundle(ctx, bundle, gitCommit)
	if err != nil {
		return "", fmt.Errorf("ingest: %w", err)
	}
	return runID, nil
}

func loadSpecDoc(path string) (ir.SpecDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.SpecDoc{}, fmt.Errorf("read spec %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc ir.SpecDoc
	if err := dec.Decode(&doc); err != nil {
		return ir.SpecDoc{}, fmt.Errorf("parse spec %s: %w", path, err)
	}

	if doc.SpecVersion == "" {
		return ir.SpecDoc{}, fmt.Errorf("parse spec %s: spec_version is required", path)
	}

	return doc, nil
}

func loadOverlay(path string) (variantOverlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return variantOverlay{}, fmt.Errorf("read variant overlay %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var overlay variantOverlay
	if err := dec.Decode(&overlay); err != nil {
		return variantOverlay{}, fmt.Errorf("parse variant overlay %s: %w", path, err)
	}

	if overlay.Variant == "" {
		return variantOverlay{}, fmt.Errorf("parse variant overlay %s: variant name is required", path)
	}

	return overlay, nil
}
