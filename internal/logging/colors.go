package logging

import (
	"github.com/fatih/color"
)

// Level colors. fatih/color turns these into no-ops when the output is not a
// terminal (or NO_COLOR is set), so log files stay free of escape codes.
var (
	prefixColor = color.New(color.FgWhite)

	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgRed)
	infoColor  = color.New(color.Reset)
	debugColor = color.New(color.FgGreen)
	traceColor = color.New(color.FgYellow)
)
