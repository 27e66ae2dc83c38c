// internal/cli/render.go
package benchlens

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/benchlens/internal/appconfig"
	"github.com/mwiater/benchlens/internal/export"
	"github.com/mwiater/benchlens/internal/logging"
	"github.com/mwiater/benchlens/internal/render"
	"github.com/mwiater/benchlens/internal/util"
)

var (
	renderOpts   queryOptions
	renderFormat string
	renderName   string
	renderWidth  int
	renderFacets bool
)

// renderCmd implements 'render', which draws the chart for a query (or a
// saved result) to the output directory.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a query result as an HTML page, SVG charts or an XLSX workbook",
	Long: `Render a query result to the output directory.

Formats:
  html  interactive chart page; faceted results become a grid of charts
  svg   one static SVG per chart panel (tables are not supported)
  xlsx  workbook with heat-shaded cells; --facets adds a sheet per facet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := renderOpts.run(cmd)
		if err != nil {
			return err
		}
		cfg := GetConfig()
		if cfg == nil {
			cfg = &appconfig.Config{}
		}
		s, err := parseSort(renderOpts.sort)
		if err != nil {
			return err
		}

		dir := cfg.OutputPath()
		base := strings.TrimSpace(renderName)
		if base == "" {
			base = "chart"
		}
		out := cmd.OutOrStdout()

		var written []string
		switch strings.ToLower(renderFormat) {
		case "", "html":
			var buf bytes.Buffer
			opts := render.Options{Title: queryTitle(st), Width: renderWidth, Sort: s}
			if err := render.HTML(&buf, st.Grid(), opts); err != nil {
				return err
			}
			path := filepath.Join(dir, base+".html")
			if err := util.WriteFile(path, buf.Bytes()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		case "svg":
			paths, err := render.SVGFiles(dir, base, st.Grid(), renderWidth)
			if err != nil {
				return err
			}
			written = paths
		case "xlsx":
			path := filepath.Join(dir, base+".xlsx")
			if err := export.SaveXLSX(path, st.Result(), export.Options{Sort: s, Facets: renderFacets}); err != nil {
				return err
			}
			written = append(written, path)
		default:
			return fmt.Errorf("unknown format %q (want html, svg or xlsx)", renderFormat)
		}

		for _, path := range written {
			logging.LogEvent("render: wrote %s", path)
			fmt.Fprintf(out, "%s %s\n", okColor("✔"), path)
		}
		return nil
	},
}

func init() {
	renderOpts.addFlags(renderCmd)
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "output format: html, svg, xlsx")
	renderCmd.Flags().StringVarP(&renderName, "name", "o", "chart", "output file name without extension")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "page or chart width in pixels (0 = default)")
	renderCmd.Flags().BoolVar(&renderFacets, "facets", false, "xlsx: add one sheet per facet")
	rootCmd.AddCommand(renderCmd)
}
