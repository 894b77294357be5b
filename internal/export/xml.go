package export

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// XML projection shapes. Addresses and offsets are hexadecimal with a 0x
// prefix; everything else is decimal strings. The variant attribute is
// always present (empty string for base blocks), while a field without
// enumerants omits its <enum> element entirely. The asymmetry with the
// JSON projection's explicit null is intentional per format.

type xmlSpec struct {
	XMLName xml.Name   `xml:"spec"`
	Blocks  []xmlBlock `xml:"ip_block"`
}

type xmlBlock struct {
	Name      string        `xml:"name,attr"`
	BaseAddr  string        `xml:"base_addr,attr"`
	Variant   string        `xml:"variant,attr"`
	Registers []xmlRegister `xml:"register"`
}

type xmlRegister struct {
	Name   string     `xml:"name,attr"`
	Offset string     `xml:"offset,attr"`
	Width  string     `xml:"width,attr"`
	Fields []xmlField `xml:"field"`
}

type xmlField struct {
	Name   string   `xml:"name,attr"`
	LSB    string   `xml:"lsb,attr"`
	MSB    string   `xml:"msb,attr"`
	Access string   `xml:"access,attr"`
	Reset  string   `xml:"reset,attr"`
	Enum   *xmlEnum `xml:"enum,omitempty"`
}

type xmlEnum struct {
	Values []xmlEnumValue `xml:"value"`
}

type xmlEnumValue struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// WriteRegistersXML projects the stored register tree as an XML document.
func WriteRegistersXML(ctx context.Context, reader ir.SpecReader, w io.Writer) error {
	doc, err := Snapshot(ctx, reader)
	if err != nil {
		return fmt.Errorf("export xml: %w", err)
	}

	out := xmlSpec{Blocks: []xmlBlock{}}
	for _, blockNode := range doc.Blocks {
		variant := ""
		if blockNode.Block.Variant != nil {
			variant = *blockNode.Block.Variant
		}

		blk := xmlBlock{
			Name:      blockNode.Block.Name,
			BaseAddr:  fmt.Sprintf("%#x", blockNode.Block.BaseAddr),
			Variant:   variant,
			Registers: []xmlRegister{},
		}

		for _, regNode := range blockNode.Registers {
			reg := xmlRegister{
				Name:   regNode.Register.Name,
				Offset: fmt.Sprintf("%#x", regNode.Register.Offset),
				Width:  strconv.Itoa(regNode.Register.Width),
				Fields: []xmlField{},
			}

			for _, fieldNode := range regNode.Fields {
				f := xmlField{
					Name:   fieldNode.Field.Name,
					LSB:    strconv.Itoa(fieldNode.Field.LSB),
					MSB:    strconv.Itoa(fieldNode.Field.MSB),
					Access: fieldNode.Field.Access,
					Reset:  strconv.FormatInt(fieldNode.Field.Reset, 10),
				}
				if len(fieldNode.Enum) > 0 {
					enum := &xmlEnum{}
					for _, ev := range fieldNode.Enum {
						enum.Values = append(enum.Values, xmlEnumValue{
							Name:  ev.Name,
							Value: strconv.FormatInt(ev.Value, 10),
						})
					}
					f.Enum = enum
				}
				reg.Fields = append(reg.Fields, f)
			}

			blk.Registers = append(blk.Registers, reg)
		}

		out.Blocks = append(out.Blocks, blk)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("export xml: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("export xml: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("export xml: %w", err)
	}
	// Encoder does not emit a final newline after the root element.
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("export xml: %w", err)
	}
	return nil
}
