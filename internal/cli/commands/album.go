// Copyright 2025 Shoebox Authors
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

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var albumCmd = &cobra.Command{
	Use:   "album",
	Short: "Manage albums",
}

var albumListCmd = &cobra.Command{
	Use:   "list",
	Short: "List albums with photo counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		albums, err := lib.ListAlbums()
		if err != nil {
			return err
		}
		for _, a := range albums {
			marker := ""
			if a.IsDefault {
				marker = " (default)"
			}
			fmt.Printf("%-30s  %d photos%s\n", a.Name, a.PhotoCount, marker)
		}
		return nil
	},
}

var albumCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create an empty album",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		summary, err := lib.CreateAlbum(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created album %s\n", summary.Name)
		return nil
	},
}

var albumRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Delete an empty, non-default album",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		if err := lib.DeleteAlbum(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted album %s\n", args[0])
		return nil
	},
}

func init() {
	albumCmd.AddCommand(albumListCmd, albumCreateCmd, albumRmCmd)
	rootCmd.AddCommand(albumCmd)
}
