// Package ast is the syntax layer behind graphbridge: a small,
// whitespace-preserving parser for the line-oriented language that graph
// definitions are written in.
//
// # Overview
//
// A module is a list of lines. A line is one expression, and a line ending
// in an operator takes the following, more deeply indented lines as a
// [Block]:
//
//	main =
//	    a = 1 + 2
//	    print a
//
// Every [Ast] node carries an [ID]. Offsets record the spaces around
// operators, arguments and parentheses, so [Module.Repr] prints back exactly
// the text that was parsed. This is what lets the graph layer rewrite one
// line of a body while leaving every other line byte-for-byte untouched.
//
// # Identities
//
// Identities are assigned at parse time. [IDMapOf] records them by source
// span and [Parse] restores them, so node identities survive saving a
// module and loading it again:
//
//	m, _ := ast.Parse(code, nil)
//	ids := ast.IDMapOf(m)
//	again, _ := ast.Parse(m.Repr(), ids) // same IDs as m
//
// # Grammar
//
// Identifiers may be qualified ("Standard.Base.IO") and may name an
// operator extension ("Int.="). Literals are numbers and quoted text.
// Application is juxtaposition and binds tighter than any operator; the
// assignment operator "=" binds loosest and is right-associative. Tabs are
// rejected.
package ast
