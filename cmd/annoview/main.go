package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/wippyai/annometa/snapshot"
)

func main() {
	var (
		snapFile    = flag.String("snapshot", "", "Path to snapshot file")
		container   = flag.String("container", "", "Show a single container")
		typeFilter  = flag.String("type", "", "Show only annotations whose type name contains this substring")
		list        = flag.Bool("list", false, "List containers and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *snapFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: annoview -snapshot <file> [-container name] [-type substring]")
		fmt.Fprintln(os.Stderr, "       annoview -snapshot <file> -list")
		fmt.Fprintln(os.Stderr, "       annoview -snapshot <file> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*snapFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*snapFile, *container, *typeFilter, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(snapFile, container, typeFilter string, listOnly bool) error {
	f, err := os.Open(snapFile)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	rep, err := snapshot.Inspect(f)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	// Style only when stdout is a terminal so piped output stays plain.
	styled := term.IsTerminal(int(os.Stdout.Fd()))

	fmt.Printf("Snapshot: %s (version %d)\n", snapFile, rep.Version)
	fmt.Printf("Containers: %d\n", len(rep.Containers))
	fmt.Printf("Annotations: %d\n", rep.Len())

	if listOnly {
		fmt.Printf("\nContainers:\n")
		for _, c := range rep.Containers {
			fmt.Printf("  %s (%d)\n", styleContainer(c.Name, styled), len(c.Values))
		}
		return nil
	}

	matched := false
	for _, c := range rep.Containers {
		if container != "" && c.Name != container {
			continue
		}
		matched = true
		values := c.Values
		if typeFilter != "" {
			values = nil
			for _, v := range c.Values {
				if strings.Contains(v.Type, typeFilter) {
					values = append(values, v)
				}
			}
			if len(values) == 0 {
				continue
			}
		}
		fmt.Printf("\n%s (%d annotations)\n", styleContainer(c.Name, styled), len(values))
		for _, v := range values {
			fmt.Printf("  %s\n", formatValue(v, styled))
		}
	}
	if container != "" && !matched {
		return fmt.Errorf("container %q not in snapshot", container)
	}

	return nil
}

func styleContainer(name string, styled bool) string {
	if !styled {
		return name
	}
	return containerStyle.Render(name)
}

// formatValue renders one annotation line, styling the type head only so
// member literals stay copy-pasteable.
func formatValue(v snapshot.ValueReport, styled bool) string {
	head := "@" + v.Type
	if styled {
		head = annoStyle.Render(head)
	}
	if len(v.Members) == 0 {
		return head
	}
	parts := make([]string, len(v.Members))
	for i, m := range v.Members {
		parts[i] = m.Name + "=" + m.Value
	}
	return head + "(" + strings.Join(parts, ", ") + ")"
}
