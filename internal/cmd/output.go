package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/jimezsa/jobwatch/internal/export"
	"github.com/jimezsa/jobwatch/internal/ui"
)

type writeFunc func(w io.Writer, format export.Format, opts export.WriteOptions) error

// emit writes a result to --output or stdout in the resolved format.
func emit(ctx *Context, write writeFunc) error {
	outputPath := strings.TrimSpace(ctx.Output)
	format, err := resolveFormat(ctx, outputPath)
	if err != nil {
		return err
	}

	writer := ctx.Out
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled && outputPath == ""
	return write(writer, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   colorEnabled && ui.IsTTY(writer),
		LinkStyle:    export.LinkStyleShort,
	})
}

func resolveFormat(ctx *Context, outputPath string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if ctx.Format != "" {
		return export.ParseFormat(ctx.Format)
	}
	if outputPath == "" && ui.IsTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
