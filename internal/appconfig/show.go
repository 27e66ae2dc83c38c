package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary. A nil cfg prints the
// fallback values instead.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		cfg = &fallback
	}
	chartCfg := cfg.ChartConfig()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Backend URL:     %s\n", cfg.BaseURL())
	fmt.Fprintf(out, "  Timeout:         %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Output Dir:      %s\n", cfg.OutputPath())
	fmt.Fprintf(out, "  Query Limit:     %d\n", cfg.QueryLimit())
	fmt.Fprintf(out, "  Sort:            %s %s\n", cfg.SortBy(), cfg.SortOrder())
	fmt.Fprintf(out, "  Aggregation:     %s\n", cfg.Aggregation())
	fmt.Fprintf(out, "  Chart Type:      %s\n", cfg.DefaultChartType())
	fmt.Fprintf(out, "  Data Labels:     %v\n", chartCfg.ShowDataLabels)
	fmt.Fprintf(out, "  Legend:          %v\n", chartCfg.ShowLegend)
	fmt.Fprintf(out, "  Grid:            %v\n", chartCfg.ShowGrid)
}
