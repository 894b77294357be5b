package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// DV constraint-configuration document. The rule text is an opaque
// expression carried through for the downstream constrained-random
// stimulus generator; this projection re-serializes, never interprets.

type dvConfig struct {
	Constraints []dvConstraint `json:"constraints"`
}

type dvConstraint struct {
	Name      string          `json:"name"`
	AppliesTo string          `json:"applies_to"`
	Match     json.RawMessage `json:"match"`
	Rule      string          `json:"rule"`
	Severity  string          `json:"severity"`
}

// WriteConstraintsJSON projects the stored constraint set as the DV
// constraint-configuration document. Match predicates are emitted in
// canonical JSON so repeated exports of the same store are byte-identical.
func WriteConstraintsJSON(ctx context.Context, reader ir.SpecReader, w io.Writer) error {
	constraints, err := reader.ListConstraints(ctx)
	if err != nil {
		return fmt.Errorf("export constraints: %w", err)
	}

	out := dvConfig{Constraints: []dvConstraint{}}
	for _, c := range constraints {
		match, err := ir.MarshalCanonical(c.Match)
		if err != nil {
			return fmt.Errorf("export constraints: %q: %w", c.Name, err)
		}
		out.Constraints = append(out.Constraints, dvConstraint{
			Name:      c.Name,
			AppliesTo: c.AppliesTo,
			Match:     json.RawMessage(match),
			Rule:      c.Rule,
			Severity:  c.Severity,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("export constraints: encode: %w", err)
	}
	return nil
}
