// SPDX-License-Identifier: Apache-2.0

package docgen

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wkelly17/bibleassembler/pkg/version"
)

// NewVersionCmd prints the binary version as reported by pkg/version.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Version)
		},
	}
}
