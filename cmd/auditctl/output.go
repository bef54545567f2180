package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Output formats
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// listing is a result that can be printed as a table or serialized
type listing struct {
	headers []string
	rows    [][]string
	value   interface{}
}

func render(w io.Writer, format string, l listing) error {
	switch strings.ToLower(format) {
	case outputTable, "":
		return renderTable(w, l)
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l.value)
	case outputYAML:
		return renderYAML(w, l.value)
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

func renderTable(w io.Writer, l listing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(l.headers, "\t"))
	for _, row := range l.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// renderYAML goes through JSON first so field names follow the json tags
func renderYAML(w io.Writer, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}
