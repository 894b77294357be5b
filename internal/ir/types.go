package ir

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultRegisterWidth is the register bit width assumed when a source
// document omits the width key.
const DefaultRegisterWidth = 32

// Severity levels for constraint definitions and validation issues.
const (
	SeverityError = "ERROR"
	SeverityWarn  = "WARN"
)

// Constraint scopes for ConstraintDef.AppliesTo.
const (
	AppliesToField = "field"
	AppliesToReg   = "reg"
	AppliesToBlock = "block"
)

// SpecDoc is a complete register-spec source document.
type SpecDoc struct {
	SpecVersion string          `yaml:"spec_version" json:"spec_version"`
	IPBlocks    []IPBlockDef    `yaml:"ip_blocks" json:"ip_blocks"`
	Constraints []ConstraintDef `yaml:"constraints" json:"constraints"`
}

// IPBlockDef is a named, address-based hardware component owning registers.
type IPBlockDef struct {
	Name      string        `yaml:"name" json:"name"`
	BaseAddr  int64         `yaml:"base_addr" json:"base_addr"`
	Registers []RegisterDef `yaml:"registers" json:"registers"`
}

// RegisterDef is an addressable, fixed-width storage unit within a block.
type RegisterDef struct {
	Name   string     `yaml:"name" json:"name"`
	Offset int64      `yaml:"offset" json:"offset"`
	Width  int        `yaml:"width" json:"width"`
	Fields []FieldDef `yaml:"fields" json:"fields"`
}

// UnmarshalYAML applies the default register width when the key is absent.
func (r *RegisterDef) UnmarshalYAML(value *yaml.Node) error {
	if err := rejectUnknownKeys(value, "name", "offset", "width", "fields"); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	type plain RegisterDef
	tmp := plain{Width: DefaultRegisterWidth}
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*r = RegisterDef(tmp)
	return nil
}

// FieldDef is a contiguous bit-range [LSB, MSB] within a register.
// Access is an open classification token (RW, RO, WO, W1C, ...) governing
// read/write legality; it is carried through, never interpreted here.
type FieldDef struct {
	Name   string         `yaml:"name" json:"name"`
	LSB    int            `yaml:"lsb" json:"lsb"`
	MSB    int            `yaml:"msb" json:"msb"`
	Access string         `yaml:"access" json:"access"`
	Reset  int64          `yaml:"reset" json:"reset"`
	Enum   []EnumValueDef `yaml:"enum" json:"enum"`
}

// UnmarshalYAML rejects fields whose bit range is inverted (msb < lsb) or
// whose access token is missing. A field that fails here never reaches the
// store or the validation engine. Out-of-range lsb/msb/reset values are NOT
// rejected here; those are validation-engine findings, not decode errors.
func (f *FieldDef) UnmarshalYAML(value *yaml.Node) error {
	if err := rejectUnknownKeys(value, "name", "lsb", "msb", "access", "reset", "enum"); err != nil {
		return fmt.Errorf("field: %w", err)
	}
	type plain FieldDef
	var tmp plain
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	if tmp.MSB < tmp.LSB {
		return fmt.Errorf("field %q: msb (%d) must be >= lsb (%d)", tmp.Name, tmp.MSB, tmp.LSB)
	}
	if tmp.Access == "" {
		return fmt.Errorf("field %q: access is required", tmp.Name)
	}
	*f = FieldDef(tmp)
	return nil
}

// Width returns the field's bit width, msb - lsb + 1.
func (f FieldDef) Width() int {
	return (f.MSB - f.LSB) + 1
}

// EnumValueDef is a named symbolic value for a field's numeric encoding.
type EnumValueDef struct {
	Name  string `yaml:"name" json:"name"`
	Value int64  `yaml:"value" json:"value"`
}

func (e *EnumValueDef) UnmarshalYAML(value *yaml.Node) error {
	if err := rejectUnknownKeys(value, "name", "value"); err != nil {
		return fmt.Errorf("enum value: %w", err)
	}
	type plain EnumValueDef
	var tmp plain
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*e = EnumValueDef(tmp)
	return nil
}

// ConstraintDef is a user-defined DV constraint. Match is an opaque
// structural predicate (attribute/value pairs selecting targets) and Rule
// is an opaque rule expression; both are stored and re-serialized, never
// evaluated.
type ConstraintDef struct {
	Name      string         `yaml:"name" json:"name"`
	AppliesTo string         `yaml:"applies_to" json:"applies_to"`
	Match     map[string]any `yaml:"match" json:"match"`
	Rule      string         `yaml:"rule" json:"rule"`
	Severity  string         `yaml:"severity" json:"severity"`
}

// UnmarshalYAML defaults severity to ERROR and rejects unknown applies_to
// and severity tokens at construction time.
func (c *ConstraintDef) UnmarshalYAML(value *yaml.Node) error {
	if err := rejectUnknownKeys(value, "name", "applies_to", "match", "rule", "severity"); err != nil {
		return fmt.Errorf("constraint: %w", err)
	}
	type plain ConstraintDef
	tmp := plain{Severity: SeverityError}
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	switch tmp.AppliesTo {
	case AppliesToField, AppliesToReg, AppliesToBlock:
	default:
		return fmt.Errorf("constraint %q: applies_to must be field, reg, or block (got %q)", tmp.Name, tmp.AppliesTo)
	}
	switch tmp.Severity {
	case SeverityError, SeverityWarn:
	default:
		return fmt.Errorf("constraint %q: severity must be ERROR or WARN (got %q)", tmp.Name, tmp.Severity)
	}
	*c = ConstraintDef(tmp)
	return nil
}

// Bundle is a loaded base spec plus optional variant overlay metadata.
//
// Variant overlays do not structurally merge into the doc: the overrides
// map rides alongside and the variant name tags the ingested blocks. This
// mirrors flows where variants influence instances and parameters rather
// than spec structure.
type Bundle struct {
	SpecVersion      string
	VariantName      string
	Doc              SpecDoc
	VariantOverrides map[string]any
}

// rejectUnknownKeys fails on mapping keys outside the known set. The
// decoder's KnownFields mode does not reach inside custom unmarshalers
// (node.Decode spins up a fresh, non-strict decoder), so each unmarshaler
// re-establishes strictness for its own level before decoding.
func rejectUnknownKeys(value *yaml.Node, known ...string) error {
	if value.Kind == yaml.AliasNode {
		value = value.Alias
	}
	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i]
		found := false
		for _, k := range known {
			if key.Value == k {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("line %d: unknown key %q", key.Line, key.Value)
		}
	}
	return nil
}
