package analyzers

// Evidence records where a looked-for pattern was found. Tier is "tree" when
// the AST confirmed it and "text" when only a stripped-text search did.
type Evidence struct {
	Line int
	Tier string
}

// TreeEvidence wraps a tree-walk result.
func TreeEvidence(line int) *Evidence { return &Evidence{Line: line, Tier: "tree"} }

// TextEvidence wraps a stripped-text search result.
func TextEvidence(line int) *Evidence { return &Evidence{Line: line, Tier: "text"} }

// FirstEvidence combines the two evidence tiers: tree evidence wins when
// present, otherwise the text fallback is consulted. The text function runs
// only when needed. Either function may be nil.
func FirstEvidence(tree func() *Evidence, text func() *Evidence) *Evidence {
	if tree != nil {
		if ev := tree(); ev != nil {
			return ev
		}
	}
	if text != nil {
		if ev := text(); ev != nil {
			return ev
		}
	}
	return nil
}
