package module

import (
	"strings"
	"testing"

	"github.com/matzehuels/graphbridge/pkg/ast"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
)

func TestMarshalRoundTrip(t *testing.T) {
	m := ast.MustParse("main =\n    a = 1\n    print a\n")
	target := m.Lines[0].Elem.Right.Block.Lines[1].Elem

	var meta Metadata
	meta.SetNode(target.ID, NodeMetadata{Position: &Position{X: 12.5, Y: -3}})
	content := Content{Ast: m, Metadata: meta}

	data, err := Marshal(content)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.HasPrefix(string(data), "main =\n    a = 1\n    print a\n"+metadataTag) {
		t.Errorf("Marshal() does not start with code and tag:\n%s", data)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Code() != content.Code() {
		t.Errorf("code = %q, want %q", got.Code(), content.Code())
	}
	if found := got.Ast.Find(target.ID); found == nil || found.Repr() != "print a" {
		t.Errorf("node %v not restored with its identity", target.ID)
	}
	if !got.Metadata.Equal(meta) {
		t.Errorf("metadata = %+v, want %+v", got.Metadata, meta)
	}
}

func TestUnmarshalPlainCode(t *testing.T) {
	got, err := Unmarshal([]byte("main = 1\n"))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Code() != "main = 1\n" {
		t.Errorf("code = %q", got.Code())
	}
	if len(got.Metadata.Nodes) != 0 {
		t.Error("plain code should have no metadata")
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errs.Code
	}{
		{"bad id map", "main = 1" + metadataTag + "{not json}\n{}", errs.ErrCodeInvalidFormat},
		{"bad metadata", "main = 1" + metadataTag + "[]\n{oops", errs.ErrCodeInvalidFormat},
		{"bad code", "main = (" + metadataTag + "[]\n{}", errs.ErrCodeParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			if !errs.Is(err, tt.code) {
				t.Errorf("Unmarshal() error = %v, want %v", err, tt.code)
			}
		})
	}
}
