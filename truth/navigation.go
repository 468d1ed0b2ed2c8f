package truth

// GetAncestry returns the chain of statements that contain the statement at
// i, outermost first, not including i itself (spec §4.4).
func (d *Document) GetAncestry(i int) []*Statement {
	var chain []*Statement
	indent := d.statements[i].Indent
	for j := i - 1; j >= 0 && indent > 0; j-- {
		s := d.statements[j]
		if s.IsNoop() {
			continue
		}
		if s.Indent < indent {
			chain = append(chain, s)
			indent = s.Indent
		}
	}
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return chain
}

// GetParent returns the nearest enclosing statement, or nil if i is at the
// document's root level (spec §4.4).
func (d *Document) GetParent(i int) *Statement {
	indent := d.statements[i].Indent
	for j := i - 1; j >= 0; j-- {
		s := d.statements[j]
		if s.IsNoop() {
			continue
		}
		if s.Indent < indent {
			return s
		}
	}
	return nil
}

// GetParentFromPosition returns what would parent a hypothetical statement
// inserted at virtualLine with virtualIndent, without mutating the document.
// Used by the edit engine to classify a pending insertion (spec §4.4, §5).
func (d *Document) GetParentFromPosition(virtualLine, virtualIndent int) *Statement {
	for j := virtualLine - 1; j >= 0; j-- {
		if j >= len(d.statements) {
			continue
		}
		s := d.statements[j]
		if s.IsNoop() {
			continue
		}
		if s.Indent < virtualIndent {
			return s
		}
	}
	return nil
}

// getChildrenOf returns the statements one level below parentIdx, using the
// lowest indent actually encountered at that level so irregular indentation
// still yields a consistent child set. parentIdx < 0 means the document root.
func (d *Document) getChildrenOf(parentIdx int) []*Statement {
	parentIndent := -1
	start := 0
	if parentIdx >= 0 {
		parentIndent = d.statements[parentIdx].Indent
		start = parentIdx + 1
	}
	childIndent := -1
	for j := start; j < len(d.statements); j++ {
		s := d.statements[j]
		if s.IsNoop() {
			continue
		}
		if s.Indent <= parentIndent {
			break
		}
		if childIndent == -1 || s.Indent < childIndent {
			childIndent = s.Indent
		}
	}
	if childIndent == -1 {
		return nil
	}
	var children []*Statement
	for j := start; j < len(d.statements); j++ {
		s := d.statements[j]
		if s.IsNoop() {
			continue
		}
		if s.Indent <= parentIndent {
			break
		}
		if s.Indent == childIndent {
			children = append(children, s)
		}
	}
	return children
}

// GetSiblings returns the statements sharing i's parent, including i itself
// (spec §4.4).
func (d *Document) GetSiblings(i int) []*Statement {
	p := d.GetParent(i)
	parentIdx := -1
	if p != nil {
		parentIdx = p.line
	}
	return d.getChildrenOf(parentIdx)
}

// GetChildren returns the statements immediately nested under i (spec §4.4).
func (d *Document) GetChildren(i int) []*Statement {
	return d.getChildrenOf(i)
}

// HasDescendants reports whether any statement is nested under i (spec §4.4).
func (d *Document) HasDescendants(i int) bool {
	indent := d.statements[i].Indent
	for j := i + 1; j < len(d.statements); j++ {
		s := d.statements[j]
		if s.IsNoop() {
			continue
		}
		return s.Indent > indent
	}
	return false
}

// GetDescendants returns every statement nested under i, in document order.
// When includeInitial is true, i itself leads the result (spec §4.4).
func (d *Document) GetDescendants(i int, includeInitial bool) []*Statement {
	var out []*Statement
	if includeInitial {
		out = append(out, d.statements[i])
	}
	indent := d.statements[i].Indent
	for j := i + 1; j < len(d.statements); j++ {
		s := d.statements[j]
		if s.IsNoop() {
			continue
		}
		if s.Indent <= indent {
			break
		}
		out = append(out, s)
	}
	return out
}

// GetNotes returns the run of comment statements immediately preceding i at
// i's own indent, in source order, skipping blank lines between them (spec
// §4.4).
func (d *Document) GetNotes(i int) []*Statement {
	var notes []*Statement
	indent := d.statements[i].Indent
	for j := i - 1; j >= 0; j-- {
		s := d.statements[j]
		if s.IsWhitespace {
			continue
		}
		if s.IsComment && s.Indent == indent {
			notes = append(notes, s)
			continue
		}
		break
	}
	for l, r := 0, len(notes)-1; l < r; l, r = l+1, r-1 {
		notes[l], notes[r] = notes[r], notes[l]
	}
	return notes
}
