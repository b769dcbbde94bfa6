package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// describeSubcommands appends a subcommand summary to the Long text of every
// command group below root, so `poktwallet wallet --help` reads like a man page.
func describeSubcommands(root *cobra.Command) {
	for _, group := range root.Commands() {
		describeSubcommands(group)

		subs := group.Commands()
		if len(subs) == 0 {
			continue
		}

		width := 0
		for _, sub := range subs {
			width = max(width, len(sub.Name()))
		}

		var sb strings.Builder
		sb.WriteString(strings.TrimRight(group.Long, "\n"))
		sb.WriteString("\n\nSubcommands:\n")
		for _, sub := range subs {
			if sub.IsAvailableCommand() {
				fmt.Fprintf(&sb, "  %-*s  %s\n", width, sub.Name(), sub.Short)
			}
		}
		group.Long = sb.String()
	}
}
