// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDepartmentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List the department labels recognized in requests, in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, label := range a.departments.Labels() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), label); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
