package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/pipeline"
)

// searchCommand creates the search command for finding entities by name or email.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		file  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find entities by name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), file, args[0], limit)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "read a JSON database instead of the configured source")
	cmd.Flags().IntVarP(&limit, "limit", "n", network.DefaultSearchLimit, "maximum number of results")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, file, query string, limit int) error {
	src, closeSrc, err := c.openSource(ctx, file)
	if err != nil {
		return err
	}
	defer closeSrc()

	ents, err := searchSource(ctx, src, query, limit)
	if err != nil {
		return err
	}
	if len(ents) == 0 {
		printInfo("No entities match %q", query)
		return nil
	}

	fmt.Println(entityTable(ents))
	printDetail("%d result(s)", len(ents))
	return nil
}

// searchSource uses the source's own search when it has one.
func searchSource(ctx context.Context, src network.Source, query string, limit int) ([]network.Entity, error) {
	if s, ok := src.(network.Searcher); ok {
		return s.Search(ctx, query, limit)
	}
	ents, err := src.ListEntities(ctx)
	if err != nil {
		return nil, err
	}
	return network.SearchEntities(ents, query, limit), nil
}

var riskStyles = map[string]lipgloss.Style{
	network.RiskLow:      lipgloss.NewStyle().Foreground(colorGreen),
	network.RiskMedium:   lipgloss.NewStyle().Foreground(colorYellow),
	network.RiskHigh:     lipgloss.NewStyle().Foreground(colorRed),
	network.RiskCritical: lipgloss.NewStyle().Foreground(colorRed).Bold(true),
}

// entityTable renders entities as a bordered table.
func entityTable(ents []network.Entity) string {
	rows := make([][]string, len(ents))
	for i, e := range ents {
		email := e.Email
		if email == "" {
			email = "—"
		}
		rows[i] = []string{strconv.FormatInt(e.ID, 10), e.DisplayName(), email, e.FactionOrNone(), e.Risk()}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Email", "Faction", "Risk").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0, 2:
				return base.Foreground(colorGray)
			case 4:
				if s, ok := riskStyles[ents[row].Risk()]; ok {
					return s.Padding(0, 1)
				}
			}
			return base
		})

	return t.String()
}

// statsCommand creates the stats command summarising a time window.
func (c *CLI) statsCommand() *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the relationships of a time window",
		Long: `Summarise the relationships of a time window.

Prints the number of relationships and distinct entities they touch, broken
down by relationship type and classification. Without --start/--end the whole
time range of the source is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), src)
		},
	}

	src.register(cmd)
	return cmd
}

func (c *CLI) runStats(ctx context.Context, flags sourceFlags) error {
	win, err := flags.window()
	if err != nil {
		return err
	}
	src, closeSrc, err := c.openSource(ctx, flags.file)
	if err != nil {
		return err
	}
	defer closeSrc()

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	w, err := runner.ResolveWindow(ctx, src, win)
	if err != nil {
		return err
	}
	rels, err := src.ListRelationships(ctx, w)
	if err != nil {
		return err
	}
	s := network.Summarize(rels)

	fmt.Println(StyleTitle.Render(network.NameOf(src)))
	printKeyValue("Window", formatWindow(w))
	printKeyValue("Relationships", strconv.Itoa(s.Relationships))
	printKeyValue("Entities", strconv.Itoa(s.Entities))

	if len(rels) > 0 {
		printNewline()
		printCounts("By type", countBy(rels, network.Relationship.TypeOrUnknown))
		printCounts("By classification", countBy(rels, network.Relationship.ClassOrNormal))
	}
	return nil
}

// countBy tallies rels by key.
func countBy(rels []network.Relationship, key func(network.Relationship) string) map[string]int {
	out := make(map[string]int)
	for _, r := range rels {
		out[key(r)]++
	}
	return out
}

// printCounts prints a tally sorted by descending count, then name.
func printCounts(title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Println(StyleDim.Render(title))
	for _, k := range keys {
		printKeyValue("  "+k, strconv.Itoa(counts[k]))
	}
}

func formatWindow(w network.Window) string {
	const day = "2006-01-02"
	if w.Start == nil {
		return "as of " + w.End.Format(day)
	}
	return w.Start.Format(day) + " … " + w.End.Format(day)
}
