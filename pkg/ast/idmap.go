package ast

// Span locates a node in a module's source text by byte offset and length.
type Span struct {
	Index int `json:"index"`
	Size  int `json:"size"`
}

// IDMapEntry ties the node found at Span to its identity.
type IDMapEntry struct {
	Span Span `json:"span"`
	ID   ID   `json:"id"`
}

// IDMap records node identities by source span so they survive a
// print-then-parse round trip. See [IDMapOf] and [Parse].
type IDMap []IDMapEntry

// IDMapOf records the identity of every node of m that has one.
func IDMapOf(m *Module) IDMap {
	var out IDMap
	WalkSpans(m, func(a *Ast, s Span) {
		if a.ID != (ID{}) {
			out = append(out, IDMapEntry{Span: s, ID: a.ID})
		}
	})
	return out
}

// WalkSpans calls fn for every node of m, in source order, together with
// the node's span in m.Repr().
func WalkSpans(m *Module, fn func(*Ast, Span)) {
	pos := 0
	for _, line := range m.Lines {
		if line.Elem != nil {
			walkSpans(line.Elem, pos, fn)
			pos += line.Elem.Len()
		}
		pos += line.Off + 1
	}
}

func walkSpans(a *Ast, pos int, fn func(*Ast, Span)) {
	if a == nil {
		return
	}
	fn(a, Span{Index: pos, Size: a.Len()})
	switch a.Kind {
	case KindGroup:
		walkSpans(a.Left, pos+1+a.LOff, fn)
	case KindPrefix:
		walkSpans(a.Left, pos, fn)
		walkSpans(a.Right, pos+a.Left.Len()+a.ROff, fn)
	case KindInfix:
		walkSpans(a.Left, pos, fn)
		opr := pos + a.Left.Len() + a.LOff
		walkSpans(a.Opr, opr, fn)
		walkSpans(a.Right, opr+a.Opr.Len()+a.ROff, fn)
	case KindBlock:
		for _, line := range a.Block.Lines {
			pos++
			if line.Elem != nil {
				walkSpans(line.Elem, pos+a.Block.Indent, fn)
				pos += a.Block.Indent + line.Elem.Len()
			}
			pos += line.Off
		}
	}
}

// assignIDs gives every node the identity recorded for its span, or a
// fresh one. An identity is never handed out twice.
func assignIDs(m *Module, idmap IDMap) {
	known := make(map[Span]ID, len(idmap))
	for _, e := range idmap {
		known[e.Span] = e.ID
	}
	used := make(map[ID]bool)
	WalkSpans(m, func(a *Ast, s Span) {
		id, ok := known[s]
		if !ok || used[id] {
			id = NewID()
		}
		used[id] = true
		a.ID = id
	})
}
