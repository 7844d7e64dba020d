package catalogdef

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"go/format"
	"io"
	"strconv"
	"text/template"

	"github.com/samber/lo"
	"github.com/ulikunitz/xz"
)

// sourceTemplate renders one []nadam.MessageDescriptor literal. lo.Map
// below does the per-descriptor shaping so the template itself stays a
// flat range over ready-made lines.
var sourceTemplate = template.Must(template.New("catalog").Parse(`// Code generated by nadam-gen. DO NOT EDIT.

package {{.Package}}

import "github.com/tez-capital/nadam/nadam"

// Catalog is the generated message catalog.
var Catalog = []nadam.MessageDescriptor{
{{- range .Entries}}
	{Name: {{.Name}}, Size: {{.SizeExpr}}, Hash: {{.HashExpr}}},
{{- end}}
}
`))

type templateEntry struct {
	Name     string
	SizeExpr string
	HashExpr string
}

// GenerateSource renders a formatted Go source file declaring package's
// Catalog variable from descriptors.
func GenerateSource(pkg string, descriptors []Descriptor) ([]byte, error) {
	entries := lo.Map(descriptors, func(d Descriptor, _ int) templateEntry {
		ctor, arg := "nadam.Fixed", d.Total
		if d.Variable {
			ctor, arg = "nadam.Variable", d.Max
		}
		return templateEntry{
			Name:     quoteGoString(d.Name),
			SizeExpr: fmt.Sprintf("%s(%d)", ctor, arg),
			HashExpr: hashLiteral(d.Hash),
		}
	})

	var buf bytes.Buffer
	if err := sourceTemplate.Execute(&buf, struct {
		Package string
		Entries []templateEntry
	}{Package: pkg, Entries: entries}); err != nil {
		return nil, err
	}

	return format.Source(buf.Bytes())
}

func quoteGoString(s string) string {
	var b bytes.Buffer
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func hashLiteral(hash [HashLen]byte) string {
	parts := lo.Map(hash[:], func(v byte, _ int) string {
		return "0x" + strconv.FormatUint(uint64(v), 16)
	})
	var b bytes.Buffer
	b.WriteString("[20]byte{")
	for i, p := range parts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p)
	}
	b.WriteString("}")
	return b.String()
}

// WriteManifest writes the compact binary distribution format: a
// varint-free stream of length-prefixed records —
//
//	u16 name length | name bytes | u8 variable flag | u32 total-or-max | 20-byte hash
//
// — compressed through xz, mirroring the way tools/updater compresses
// firmware bundles for distribution.
func WriteManifest(w io.Writer, descriptors []Descriptor) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return err
	}
	defer xw.Close()

	for _, d := range descriptors {
		if err := writeRecord(xw, d); err != nil {
			return err
		}
	}
	return nil
}

func writeRecord(w io.Writer, d Descriptor) error {
	nameBytes := []byte(d.Name)
	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], uint16(len(nameBytes)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(nameBytes); err != nil {
		return err
	}

	flag := byte(0)
	size := d.Total
	if d.Variable {
		flag = 1
		size = d.Max
	}
	if _, err := w.Write([]byte{flag}); err != nil {
		return err
	}

	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], size)
	if _, err := w.Write(sizeBuf[:]); err != nil {
		return err
	}

	_, err := w.Write(d.Hash[:])
	return err
}

// ReadManifest is WriteManifest's inverse, for a peer installing a
// catalog distributed as a compressed manifest instead of compiled-in
// Go source.
func ReadManifest(r io.Reader) ([]Descriptor, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}

	var out []Descriptor
	for {
		var hdr [2]byte
		if _, err := io.ReadFull(xr, hdr[:]); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, err
		}
		nameLen := binary.LittleEndian.Uint16(hdr[:])

		name := make([]byte, nameLen)
		if _, err := io.ReadFull(xr, name); err != nil {
			return nil, err
		}

		var flag [1]byte
		if _, err := io.ReadFull(xr, flag[:]); err != nil {
			return nil, err
		}

		var sizeBuf [4]byte
		if _, err := io.ReadFull(xr, sizeBuf[:]); err != nil {
			return nil, err
		}
		size := binary.LittleEndian.Uint32(sizeBuf[:])

		var hash [HashLen]byte
		if _, err := io.ReadFull(xr, hash[:]); err != nil {
			return nil, err
		}

		d := Descriptor{Name: string(name), Hash: hash}
		if flag[0] == 1 {
			d.Variable = true
			d.Max = size
		} else {
			d.Total = size
		}
		out = append(out, d)
	}
}
