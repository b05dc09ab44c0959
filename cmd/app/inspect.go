package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/starford/shajara/internal/gedcom"
	"github.com/starford/shajara/internal/treeview"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	nameStyle   = lipgloss.NewStyle().Bold(true)
	rootStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	datesStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	spouseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("105")).Italic(true)
	branchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print stats and the descendant tree of a GEDCOM file",
		ArgsUsage: "FILE.ged",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "Root individual id (defaults to the computed root)"},
			&cli.IntFlag{Name: "depth", Usage: "Generations to print below the root", Value: treeview.DefaultMaxDepth},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("inspect: a GEDCOM file is required")
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			defer f.Close()

			d, err := gedcom.ParseReader(f)
			if err != nil {
				return fmt.Errorf("inspect: parse %s: %w", path, err)
			}
			return inspect(os.Stdout, d, path, cmd.String("root"), int(cmd.Int("depth")))
		},
	}
}

func inspect(w io.Writer, d *gedcom.Data, path, rootID string, depth int) error {
	root, forced, ok := d.ResolveRoot(rootID)
	if !ok {
		return fmt.Errorf("inspect: %s has no individuals", path)
	}
	if rootID != "" && !forced {
		return fmt.Errorf("inspect: individual %s not found", rootID)
	}

	view, err := treeview.Build(d, root.ID, treeview.Options{MaxDepth: depth})
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	total, scoped := d.Stats(), d.ScopedStats(root.ID)
	fmt.Fprintln(w, titleStyle.Render(path))
	fmt.Fprintf(w, "%s %d individuals, %d families\n", labelStyle.Render("file: "), total.Individuals, total.Families)
	fmt.Fprintf(w, "%s %d individuals, %d families\n", labelStyle.Render("tree: "), scoped.Individuals, scoped.Families)
	fmt.Fprintf(w, "%s %s\n\n", labelStyle.Render("root: "), gedcom.Label(d, root))

	if len(view.Nodes) == 0 {
		fmt.Fprintln(w, labelStyle.Render("(root is private)"))
		return nil
	}

	nodes := make(map[string]treeview.Node, len(view.Nodes))
	for _, n := range view.Nodes {
		nodes[n.ID] = n
	}
	children := make(map[string][]string)
	for _, e := range view.Edges {
		children[e.Source] = append(children[e.Source], e.Target)
	}

	var walk func(id, prefix string, last, isRoot bool)
	walk = func(id, prefix string, last, isRoot bool) {
		n := nodes[id]
		branch, next := "", ""
		if !isRoot {
			branch, next = "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
		}
		fmt.Fprintln(w, branchStyle.Render(prefix+branch)+describe(n, isRoot))
		kids := children[id]
		for i, c := range kids {
			walk(c, prefix+next, i == len(kids)-1, false)
		}
	}
	walk(root.ID, "", true, true)
	return nil
}

func describe(n treeview.Node, isRoot bool) string {
	style := nameStyle
	if isRoot {
		style = rootStyle
	}
	var b strings.Builder
	b.WriteString(style.Render(n.Name))
	if n.Dates != "" {
		b.WriteString(" " + datesStyle.Render("("+strings.Trim(n.Dates, " -")+")"))
	}
	if len(n.Spouses) > 0 {
		names := make([]string, len(n.Spouses))
		for i, s := range n.Spouses {
			names[i] = s.Name
		}
		b.WriteString(" " + spouseStyle.Render("∞ "+strings.Join(names, ", ")))
	}
	return b.String()
}
