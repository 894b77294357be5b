package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// JSON projection document shapes. Field order mirrors the contract:
// integers in decimal, variant null for base blocks, enum null (not [])
// for fields without enumerants.

type jsonSpec struct {
	IPBlocks []jsonBlock `json:"ip_blocks"`
}

type jsonBlock struct {
	Name      string         `json:"name"`
	BaseAddr  int64          `json:"base_addr"`
	Variant   *string        `json:"variant"`
	Registers []jsonRegister `json:"registers"`
}

type jsonRegister struct {
	Name   string      `json:"name"`
	Offset int64       `json:"offset"`
	Width  int         `json:"width"`
	Fields []jsonField `json:"fields"`
}

type jsonField struct {
	Name   string     `json:"name"`
	LSB    int        `json:"lsb"`
	MSB    int        `json:"msb"`
	Access string     `json:"access"`
	Reset  int64      `json:"reset"`
	Enum   []jsonEnum `json:"enum"` // nil marshals as null
}

type jsonEnum struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// WriteRegistersJSON projects the stored register tree as a nested JSON
// document.
func WriteRegistersJSON(ctx context.Context, reader ir.SpecReader, w io.Writer) error {
	doc, err := Snapshot(ctx, reader)
	if err != nil {
		return fmt.Errorf("export json: %w", err)
	}

	out := jsonSpec{IPBlocks: []jsonBlock{}}
	for _, blockNode := range doc.Blocks {
		blk := jsonBlock{
			Name:      blockNode.Block.Name,
			BaseAddr:  blockNode.Block.BaseAddr,
			Variant:   blockNode.Block.Variant,
			Registers: []jsonRegister{},
		}

		for _, regNode := range blockNode.Registers {
			reg := jsonRegister{
				Name:   regNode.Register.Name,
				Offset: regNode.Register.Offset,
				Width:  regNode.Register.Width,
				Fields: []jsonField{},
			}

			for _, fieldNode := range regNode.Fields {
				f := jsonField{
					Name:   fieldNode.Field.Name,
					LSB:    fieldNode.Field.LSB,
					MSB:    fieldNode.Field.MSB,
					Access: fieldNode.Field.Access,
					Reset:  fieldNode.Field.Reset,
				}
				for _, ev := range fieldNode.Enum {
					f.Enum = append(f.Enum, jsonEnum{Name: ev.Name, Value: ev.Value})
				}
				reg.Fields = append(reg.Fields, f)
			}

			blk.Registers = append(blk.Registers, reg)
		}

		out.IPBlocks = append(out.IPBlocks, blk)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("export json: encode: %w", err)
	}
	return nil
}
