/*
Copyright 2017 The Nuclio Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package renderer writes tables and documents for humans
package renderer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nuclio/errors"
	"sigs.k8s.io/yaml"
)

const (
	OutputFormatTable = "table"
	OutputFormatYAML  = "yaml"
	OutputFormatJSON  = "json"
)

type Renderer struct {
	output io.Writer
}

func NewRenderer(output io.Writer) *Renderer {
	return &Renderer{
		output: output,
	}
}

// Render writes items as YAML or JSON, or the rows as a table
func (r *Renderer) Render(format string, items interface{}, header []interface{}, records [][]interface{}) error {
	switch format {
	case OutputFormatTable, "":
		r.RenderTable("", header, records)
		return nil
	case OutputFormatYAML:
		return r.RenderYAML(items)
	case OutputFormatJSON:
		return r.RenderJSON(items)
	default:
		return errors.Errorf("Unknown output format: %s", format)
	}
}

// RenderTable writes a borderless table, titled when title isn't empty
func (r *Renderer) RenderTable(title string, header []interface{}, records [][]interface{}) {
	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(r.output)
	tableWriter.SetStyle(table.Style{
		Name: "Harness",
		Box: table.BoxStyle{
			MiddleVertical: "|",
			PaddingLeft:    " ",
			PaddingRight:   " ",
		},
		Options: table.Options{
			DoNotColorBordersAndSeparators: true,
			DrawBorder:                     false,
			SeparateColumns:                true,
		},
		Color:  table.ColorOptionsDefault,
		Format: table.FormatOptionsDefault,
		HTML:   table.DefaultHTMLOptions,
		Title:  table.TitleOptionsDefault,
	})

	if title != "" {
		tableWriter.SetTitle(title)
	}

	tableWriter.AppendHeader(table.Row(header))

	for _, record := range records {
		tableWriter.AppendRow(table.Row(record))
	}

	tableWriter.Render()
}

func (r *Renderer) RenderYAML(items interface{}) error {
	body, err := yaml.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "Failed to render YAML")
	}

	fmt.Fprint(r.output, string(body)) // nolint: errcheck

	return nil
}

func (r *Renderer) RenderJSON(items interface{}) error {
	body, err := json.MarshalIndent(items, "", "\t")
	if err != nil {
		return errors.Wrap(err, "Failed to render JSON")
	}

	fmt.Fprintln(r.output, string(body)) // nolint: errcheck

	return nil
}
