package calendar

// Google event color tokens to display hex. The provider only documents
// tokens "1" through "11" for single events.
var eventPalette = map[string]string{
	"1":  "#a4bdfc",
	"2":  "#7ae7bf",
	"3":  "#dbadff",
	"4":  "#ff887c",
	"5":  "#fbd75b",
	"6":  "#ffb878",
	"7":  "#46d6db",
	"8":  "#e1e1e1",
	"9":  "#5484ed",
	"10": "#51b749",
	"11": "#dc2127",
}

// Palette resolves provider color tokens to display colors, falling back to a
// configured default for unknown or missing tokens.
type Palette struct {
	defaultColor string
}

// NewPalette creates a palette with the given fallback color.
func NewPalette(defaultColor string) Palette {
	if defaultColor == "" {
		defaultColor = "#3174ad"
	}
	return Palette{defaultColor: defaultColor}
}

// Display returns the hex color for a provider token.
func (p Palette) Display(token string) string {
	if hex, ok := eventPalette[token]; ok {
		return hex
	}
	return p.defaultColor
}
