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

package harnesscli

import (
	"github.com/nuclio/percentile-harness/pkg/harnessconfig"
	"github.com/nuclio/percentile-harness/pkg/renderer"

	"github.com/nuclio/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type scenariosCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	output         string
}

func newScenariosCommandeer(rootCommandeer *RootCommandeer) *scenariosCommandeer {
	commandeer := &scenariosCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "scenarios [selector]",
		Short: "List the configured scenarios, or those a selector picks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selector := ""
			if len(args) == 1 {
				selector = args[0]
			}

			if err := rootCommandeer.readConfig(); err != nil {
				return errors.Wrap(err, "Failed to read configuration")
			}

			selected, err := rootCommandeer.config.SelectScenarios(selector)
			if err != nil {
				return errors.Wrap(err, "Failed to select scenarios")
			}

			selectedNames := lo.Map(selected, func(scenario harnessconfig.Scenario, _ int) string {
				return scenario.Name
			})

			// keep the ordinals the selector matched against
			var records [][]interface{}
			for scenarioIndex, scenario := range rootCommandeer.config.Scenarios {
				if !lo.Contains(selectedNames, scenario.Name) {
					continue
				}

				records = append(records, []interface{}{
					scenarioIndex + 1,
					scenario.Name,
					scenario.Kind,
					scenario.Period,
					scenario.Schedule,
					scenario.Scale,
					scenario.Unit,
				})
			}

			return renderer.NewRenderer(cmd.OutOrStdout()).Render(commandeer.output,
				selected,
				[]interface{}{"#", "Name", "Kind", "Period", "Schedule", "Scale", "Unit"},
				records)
		},
	}

	cmd.Flags().StringVarP(&commandeer.output, "output", "o", renderer.OutputFormatTable, "Output format - \"table\", \"yaml\" or \"json\"")

	commandeer.cmd = cmd

	return commandeer
}
