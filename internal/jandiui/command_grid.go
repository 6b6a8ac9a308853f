package jandiui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/blogjandi/jandi/internal/calendar"
	"github.com/blogjandi/jandi/internal/jandiui/styles"
	"github.com/blogjandi/jandi/internal/models"
	"github.com/blogjandi/jandi/internal/source"
	"github.com/blogjandi/jandi/internal/topics"
)

// defaultPrintWidth fits a full year of weeks plus labels.
const defaultPrintWidth = 120

type gridOptions struct {
	color string
	width int
	date  string
}

func newGridCmd(root *rootOptions) *cobra.Command {
	opts := gridOptions{color: "auto"}
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the activity calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			renderer, color, width, err := outputMode(out, opts.color)
			if err != nil {
				return err
			}
			if opts.width > 0 {
				width = opts.width
			}

			today := time.Now()
			if opts.date != "" {
				d, err := models.ParseDate(opts.date)
				if err != nil {
					return err
				}
				today = d
			}

			src, err := openSource(cmd.Context(), root.cfg)
			if err != nil {
				return err
			}
			defer src.Close()

			dash, err := source.LoadDashboard(cmd.Context(), src, today)
			if err != nil {
				return err
			}

			r := GridRenderer{
				Theme:    styles.Lookup(root.cfg.TUI.Theme),
				Palette:  topics.Default,
				Locale:   root.calendarLocale(),
				Color:    color,
				Renderer: renderer,
			}
			grid := calendar.Builder{
				Months: root.cfg.Calendar.Months,
				Locale: r.Locale,
			}.Build(dash.Events, today)
			return printGrid(out, r, grid, dash.Stats.Categories, width)
		},
	}
	cmd.Flags().StringVar(&opts.color, "color", opts.color, "colour output: auto|always|never")
	cmd.Flags().IntVar(&opts.width, "width", 0, "output width in columns (default: terminal width)")
	cmd.Flags().StringVar(&opts.date, "date", "", "render as of this date (YYYY-MM-DD)")
	return cmd
}

func printGrid(w io.Writer, r GridRenderer, grid calendar.Grid, summaries []models.CategorySummary, width int) error {
	lines := []string{r.Render(grid, time.Time{}, width)}
	if cell, ok := grid.Cell(grid.End); ok {
		lines = append(lines, "", r.TooltipText(cell))
	}
	if legend := r.Legend(summaries); legend != "" {
		lines = append(lines, legend)
	}
	return writeLines(w, lines...)
}

// outputMode decides colour and width from the output stream and the
// --color flag. Forced colour on a non-terminal renders true colour, since
// the stream itself would be detected as plain text.
func outputMode(w io.Writer, mode string) (*lipgloss.Renderer, bool, int, error) {
	f, ok := w.(*os.File)
	tty := ok && term.IsTerminal(int(f.Fd()))

	width := defaultPrintWidth
	if tty {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}

	renderer := lipgloss.NewRenderer(w)
	switch mode {
	case "always":
		if !tty {
			renderer.SetColorProfile(termenv.TrueColor)
		}
		return renderer, true, width, nil
	case "never":
		return renderer, false, width, nil
	case "auto", "":
		return renderer, tty, width, nil
	default:
		return nil, false, 0, fmt.Errorf("invalid --color %q: must be one of auto, always, never", mode)
	}
}
