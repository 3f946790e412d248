// Package compiler renders sqlast statement trees through a dialect
// translator.
//
// Compilation is a single depth-first walk with a fresh context per call:
// each node is validated on entry, pushed on a traversal stack for cycle
// detection, and turned into text using only the sections the translator
// supplies. The result is an output tree whose variants and placeholders
// stay open until Render, so one compile serves every combination of null
// versions, inline constants and list lengths a request meets at run time.
//
// Usage:
//
//	c := compiler.New(dialect.MustLookup("postgres"))
//	res, err := c.Compile(stmt)
//	if err != nil {
//	    return err
//	}
//	out, err := res.Render(compiler.RenderOptions{Active: output.NewKeySet(versionBinding)})
package compiler
