package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/lance13c/todrec/internal/dom"
	"github.com/lance13c/todrec/internal/selector"
)

var selectorCmd = &cobra.Command{
	Use:   "selector FILE",
	Short: "Generate selectors for the elements of a saved page",
	Long: `Parse an HTML file (declarative shadow roots included) and print the
selector the recorder would emit for each element, with the number of
elements that selector matches. Use --query to limit the output to the
elements matched by a selector; ' >> ' pierces shadow roots.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelector,
}

func init() {
	rootCmd.AddCommand(selectorCmd)
	selectorCmd.Flags().StringP("query", "q", "", "only report elements matching this selector")
}

func runSelector(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	query, _ := cmd.Flags().GetString("query")
	var elements []*html.Node
	if query != "" {
		elements = selector.Query(doc.Root(), query)
		if len(elements) == 0 {
			return fmt.Errorf("no elements match %q", query)
		}
	} else {
		elements = dom.Elements(doc.Root())
	}

	return printSelectors(cmd.OutOrStdout(), selector.NewGenerator(), elements)
}

func printSelectors(out io.Writer, gen selector.Generator, elements []*html.Node) error {
	warn := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tSELECTOR\tMATCHES")
	for _, n := range elements {
		res := gen.GenerateSelector(n)
		sel := res.Selector
		if sel == "" {
			sel = "-"
		}
		count := fmt.Sprint(len(res.Elements))
		if len(res.Elements) != 1 {
			count = warn.Render(count)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", dom.Tag(n), sel, count)
	}
	return tw.Flush()
}
