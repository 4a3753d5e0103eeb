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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"shoebox/internal/library"
)

var importOpts library.IngestOptions

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import one or more image files into the library",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := make([]library.IngestFile, 0, len(args))
		for _, arg := range args {
			data, err := os.ReadFile(arg)
			if err != nil {
				return fmt.Errorf("read %s: %w", arg, err)
			}
			files = append(files, library.IngestFile{
				Data:         data,
				OriginalName: filepath.Base(arg),
			})
		}

		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		results, err := lib.Ingest(files, importOpts)
		if err != nil {
			return err
		}

		normalized := 0
		for _, r := range results {
			if r.Normalized {
				normalized++
			}
			fmt.Printf("  %s (%s)\n", r.Filename, r.Mimetype)
		}
		fmt.Printf("Imported %d of %d files (%d normalized)\n", len(results), len(args), normalized)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importOpts.Album, "album", "", "target album (default album when empty)")
	importCmd.Flags().StringVar(&importOpts.Title, "title", "", "photo title")
	importCmd.Flags().StringVar(&importOpts.Date, "date", "", "photo date, YYYY-MM-DD (today when empty)")
	importCmd.Flags().StringVar(&importOpts.Location, "location", "", "photo location")
	importCmd.Flags().StringVar(&importOpts.Tags, "tags", "", "comma-separated tags")
	importCmd.Flags().StringVar(&importOpts.Description, "description", "", "photo description")
	rootCmd.AddCommand(importCmd)
}
