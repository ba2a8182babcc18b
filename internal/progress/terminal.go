package progress

import (
	"os"

	"golang.org/x/term"
)

// Capabilities describes what the status stream can render.
type Capabilities struct {
	IsTTY         bool
	SupportsColor bool
	SpinnerSet    int
}

// Detect inspects f and the environment. NO_COLOR disables color.
func Detect(f *os.File) Capabilities {
	isTTY := f != nil && term.IsTerminal(int(f.Fd()))
	caps := Capabilities{
		IsTTY:         isTTY,
		SupportsColor: isTTY && os.Getenv("NO_COLOR") == "",
		SpinnerSet:    9, // ASCII: | / - \
	}
	if isTTY && os.Getenv("LOGEDIT_ASCII") != "1" {
		caps.SpinnerSet = 14 // braille dots
	}
	return caps
}
