package module

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/matzehuels/graphbridge/pkg/ast"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
)

// metadataTag separates a module's code from the trailer that stores node
// identities and editor metadata.
const metadataTag = "\n\n\n#### METADATA ####\n"

// Marshal serializes content as its code followed by a metadata trailer:
// one line with the node ID map and one with the editor metadata.
func Marshal(c Content) ([]byte, error) {
	idmap, err := json.Marshal(ast.IDMapOf(c.Ast))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode id map")
	}
	meta := c.Metadata
	if meta.Nodes == nil {
		meta.Nodes = map[ast.ID]NodeMetadata{}
	}
	metadata, err := json.Marshal(meta)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode metadata")
	}

	var buf bytes.Buffer
	buf.WriteString(c.Code())
	buf.WriteString(metadataTag)
	buf.Write(idmap)
	buf.WriteByte('\n')
	buf.Write(metadata)
	return buf.Bytes(), nil
}

// Unmarshal reads content written by [Marshal]. Plain code without a
// trailer is accepted; its nodes get fresh identities.
func Unmarshal(data []byte) (Content, error) {
	text := string(data)
	idx := strings.LastIndex(text, metadataTag)
	if idx < 0 {
		m, err := ast.Parse(text, nil)
		if err != nil {
			return Content{}, err
		}
		return Content{Ast: m}, nil
	}

	code, trailer := text[:idx], text[idx+len(metadataTag):]
	idLine, metaLine, _ := strings.Cut(trailer, "\n")

	var idmap ast.IDMap
	if err := json.Unmarshal([]byte(idLine), &idmap); err != nil {
		return Content{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode id map")
	}
	var meta Metadata
	if strings.TrimSpace(metaLine) != "" {
		if err := json.Unmarshal([]byte(metaLine), &meta); err != nil {
			return Content{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode metadata")
		}
	}

	m, err := ast.Parse(code, idmap)
	if err != nil {
		return Content{}, err
	}
	return Content{Ast: m, Metadata: meta}, nil
}
