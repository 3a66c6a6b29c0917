package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// runREPL reads commands line by line and dispatches them to exec until EOF
// or "exit"/"quit". Command errors are printed and the loop continues.
// The reader is shared with prompts issued by commands.
func runREPL(ctx context.Context, exec func(context.Context, []string) error, reader *bufio.Reader, w io.Writer) {
	fmt.Fprintln(w, "Welcome to BioGuard CLI (type 'help' for commands)")

	for {
		fmt.Fprint(w, "bioguard> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		if err := exec(ctx, parts); err != nil {
			fmt.Fprintln(w, "error:", err)
		}
	}
}
