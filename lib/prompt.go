package lib

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question on out and reads the answer from in.
// Only "yes" and "y" confirm, anything else (including EOF) declines.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s (yes/no): ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	selected := strings.ToLower(strings.TrimSpace(answer))
	return selected == "yes" || selected == "y"
}
