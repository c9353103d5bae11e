package plane

// Align positions content within an available span.
type Align int

// Alignments. AlignLeft doubles as top and AlignRight as bottom.
const (
	AlignUnaligned Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Alignment aliases for the vertical axis.
const (
	AlignTop    = AlignLeft
	AlignBottom = AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "unaligned"
	}
}

// AlignOffset returns the offset at which used units start within avail.
// AlignUnaligned yields -1. Content wider than avail starts at 0.
func AlignOffset(avail int, align Align, used int) int {
	switch align {
	case AlignLeft:
		return 0
	case AlignCenter:
		if used >= avail {
			return 0
		}
		return (avail - used) / 2
	case AlignRight:
		if used >= avail {
			return 0
		}
		return avail - used
	default:
		return -1
	}
}
