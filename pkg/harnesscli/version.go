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
	"fmt"

	"github.com/nuclio/percentile-harness/pkg/renderer"
	"github.com/nuclio/percentile-harness/pkg/version"

	"github.com/spf13/cobra"
)

type versionCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	output         string
}

func newVersionCommandeer(rootCommandeer *RootCommandeer) *versionCommandeer {
	commandeer := &versionCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display the version number of the harness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			versionInfo := version.Get()

			switch commandeer.output {
			case renderer.OutputFormatYAML, renderer.OutputFormatJSON:
				return renderer.NewRenderer(cmd.OutOrStdout()).Render(commandeer.output, versionInfo, nil, nil)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Harness version:\n%#v\n", *versionInfo)
			return err
		},
	}

	cmd.Flags().StringVarP(&commandeer.output, "output", "o", "", fmt.Sprintf("Output format - \"%s\" or \"%s\"",
		renderer.OutputFormatYAML,
		renderer.OutputFormatJSON))

	commandeer.cmd = cmd

	return commandeer
}
