package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// output writes command results as text or JSON.
type output struct {
	w    io.Writer
	json bool
}

// PrintResult writes data as indented JSON in JSON mode; strings and maps
// print as plain text otherwise.
func (o *output) PrintResult(data any) {
	if !o.json {
		switch v := data.(type) {
		case string:
			_, _ = fmt.Fprintln(o.w, v)
			return
		case map[string]string:
			for k, val := range v {
				_, _ = fmt.Fprintf(o.w, "%s: %s\n", k, val)
			}
			return
		}
	}
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// PrintTable writes rows under headers, or an array of objects keyed by
// header in JSON mode.
func (o *output) PrintTable(headers []string, rows [][]string) {
	if o.json {
		result := make([]map[string]string, len(rows))
		for i, row := range rows {
			m := make(map[string]string)
			for j, h := range headers {
				if j < len(row) {
					m[h] = row[j]
				}
			}
			result[i] = m
		}
		o.PrintResult(result)
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	line := func(cells []string) {
		var b strings.Builder
		for i, cell := range cells {
			if i < len(widths) {
				fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
			}
		}
		_, _ = fmt.Fprintln(o.w, strings.TrimRight(b.String(), " "))
	}

	line(headers)
	sep := make([]string, len(headers))
	for i := range headers {
		sep[i] = strings.Repeat("-", widths[i])
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}

// PrintInfo writes a message in text mode only.
func (o *output) PrintInfo(format string, args ...any) {
	if !o.json {
		_, _ = fmt.Fprintf(o.w, format, args...)
	}
}
