package util

import (
	"bytes"
	"fmt"
	"strings"
)

// SourceContext formats the lines around an error position for terminal
// output: up to two preceding lines, the offending line, and a caret under
// the reported column.
func SourceContext(src string, errorLine, errorCol int) string {
	lines := strings.Split(src, "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	var result bytes.Buffer

	startLine := errorLine - 2
	if startLine < 1 {
		startLine = 1
	}

	for i := startLine; i < errorLine; i++ {
		result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lines[i-1]))
	}

	errLineContent := lines[errorLine-1]
	margin := fmt.Sprintf("  >  %3d | ", errorLine)
	result.WriteString(margin + errLineContent + "\n")

	caretCol := errorCol
	if caretCol > len(errLineContent)+1 {
		caretCol = len(errLineContent) + 1
	}
	result.WriteString(replaceVisibleWithSpaces(margin+errLineContent[:caretCol-1]) + "^ here")

	return result.String()
}

// replaceVisibleWithSpaces blanks non-whitespace characters while preserving
// tabs for correct caret alignment.
func replaceVisibleWithSpaces(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
