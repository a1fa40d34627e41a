package cmd

import (
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// newExtensionsTable creates the table used by `extensions -o table`.
func newExtensionsTable(w io.Writer) *tablewriter.Table {
	colorCfg := renderer.ColorizedConfig{
		Header: renderer.Tint{
			FG: renderer.Colors{color.FgGreen, color.Bold},
		},
		Column: renderer.Tint{
			FG: renderer.Colors{color.FgCyan},
			Columns: []renderer.Tint{
				{FG: renderer.Colors{color.Reset}},     // Source
				{FG: renderer.Colors{color.FgMagenta}}, // OID
				{},                                     // Name
				{FG: renderer.Colors{color.FgYellow}},  // Critical
				{FG: renderer.Colors{color.Reset}},     // Value
			},
		},
		Footer: renderer.Tint{
			FG: renderer.Colors{color.FgYellow, color.Bold},
		},
		Border:    renderer.Tint{FG: renderer.Colors{color.FgBlue}},
		Separator: renderer.Tint{FG: renderer.Colors{color.FgBlue}},
	}

	borders := tw.Border{
		Left:   tw.Off,
		Right:  tw.Off,
		Top:    tw.Off,
		Bottom: tw.Off,
	}

	symbols := tw.NewSymbolCustom("HorizontalOnly").
		WithRow("─").
		WithCenter("─").
		WithColumn(" ")

	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewColorized(colorCfg)),
		tablewriter.WithRendition(tw.Rendition{Borders: borders, Symbols: symbols}),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
			},
			Row: tw.CellConfig{
				Formatting:   tw.CellFormatting{AutoWrap: tw.WrapBreak},
				Alignment:    tw.CellAlignment{Global: tw.AlignLeft},
				ColMaxWidths: tw.CellWidth{Global: 48},
			},
			Footer: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignRight},
			},
		}),
	)
}
