// Copyright 2025 Chainguard, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chainguard.dev/shlint/pkg/linter"
)

func rules() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rule codes lint can report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tSEVERITY\tSUGGESTION")
			for _, code := range linter.Rules() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", code, linter.Severity(code), linter.Explain(code))
			}
			return w.Flush()
		},
	}
}
