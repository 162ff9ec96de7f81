package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/jobwatch/internal/ui"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

// ParseFormat maps a --format value to a Format. Empty means table.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "tsv":
		return FormatTSV, nil
	case "table", "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

type column struct {
	name string
	link bool
	// wide columns are left out of the terminal table.
	wide bool
}

// sheet is the tabular view shared by every non-JSON writer.
type sheet struct {
	columns []column
	rows    [][]string
	// heading is the column shown in bold in markdown; sub follows it in
	// parentheses when >= 0.
	heading int
	sub     int
}

func write(w io.Writer, value any, s sheet, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, value)
	case FormatCSV:
		return writeCSV(w, s, ',')
	case FormatTSV:
		return writeCSV(w, s, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, s)
	default:
		return writeTable(w, s, opts)
	}
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeCSV(w io.Writer, s sheet, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	header := make([]string, 0, len(s.columns))
	for _, col := range s.columns {
		header = append(header, col.name)
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range s.rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, s sheet, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	output := termenv.NewOutput(w)

	header := []string{}
	for _, col := range s.columns {
		if !col.wide {
			header = append(header, col.name)
		}
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range s.rows {
		cells := make([]string, 0, len(header))
		for i, col := range s.columns {
			if col.wide {
				continue
			}
			value := oneLine(row[i])
			if col.link {
				value = linkCell(value, output, opts)
			} else if value == "" {
				value = "-"
			}
			cells = append(cells, value)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, s sheet) error {
	if len(s.rows) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, row := range s.rows {
		first := fmt.Sprintf("- **%s**", safe(row[s.heading]))
		if s.sub >= 0 && safe(row[s.sub]) != "" {
			first += fmt.Sprintf(" (%s)", safe(row[s.sub]))
		}
		lines := []string{first}
		for i, col := range s.columns {
			if i == s.heading || i == s.sub {
				continue
			}
			value := safe(row[i])
			switch {
			case col.link && value != "":
				lines = append(lines, fmt.Sprintf("  %s: [Open](<%s>)", label(col.name), value))
			case col.link:
				lines = append(lines, fmt.Sprintf("  %s: -", label(col.name)))
			case value != "":
				lines = append(lines, fmt.Sprintf("  %s: %s", label(col.name), oneLine(value)))
			}
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func linkCell(raw string, output *termenv.Output, opts WriteOptions) string {
	link := safe(raw)
	if link == "" {
		return "-"
	}
	display := link
	if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
		display = shortURLLabel(link)
	}
	display = ui.ColorizeLink(output, opts.ColorEnabled, display)
	if opts.Hyperlinks {
		display = hyperlink(link, display)
	}
	return display
}

func label(name string) string {
	words := strings.Split(name, "_")
	if len(words) > 0 && words[0] != "" {
		words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	}
	return strings.Join(words, " ")
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func oneLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
