package tui

// Some terminals and fonts render box-drawing and arrow glyphs poorly, so the outline
// can fall back to plain ASCII.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

func glyphsFor(ascii bool) glyphSet {
	if ascii {
		return glyphSetASCII
	}
	return glyphSetUnicode
}

func (gs glyphSet) twistyCollapsed() string {
	if gs == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func (gs glyphSet) twistyExpanded() string {
	if gs == glyphSetASCII {
		return "v"
	}
	return "▾"
}

func (gs glyphSet) bullet() string {
	if gs == glyphSetASCII {
		return "*"
	}
	return "•"
}

// ghost prefixes the held item while it is being dragged.
func (gs glyphSet) ghost() string {
	if gs == glyphSetASCII {
		return "=>"
	}
	return "⇢"
}

func (gs glyphSet) pointer() string {
	if gs == glyphSetASCII {
		return ">"
	}
	return "›"
}

func (gs glyphSet) sep() string {
	if gs == glyphSetASCII {
		return "|"
	}
	return "·"
}
