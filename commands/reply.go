package commands

// Color tints a structured reply. Values are 0xRRGGBB.
type Color int

const (
	ColorDefault   Color = 0
	ColorGold      Color = 0xF1C40F
	ColorDarkRed   Color = 0x992D22
	ColorRed       Color = 0xE74C3C
	ColorOrange    Color = 0xE67E22
	ColorGreen     Color = 0x2ECC71
	ColorBlue      Color = 0x3498DB
	ColorLightGrey Color = 0x979C9F
)

// Field is one named value of a structured reply.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Reply is what a command answers with, independent of the chat platform.
// Text and field values use light markup: **bold**, `code` and ~~strike~~.
type Reply struct {
	Text      string
	Title     string
	Color     Color
	Fields    []Field
	Ephemeral bool
}

// Structured reports whether the reply should be shown as a titled card
// rather than plain text.
func (r Reply) Structured() bool {
	return r.Title != "" || len(r.Fields) > 0
}
