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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shoebox/internal/imaging"
)

var cropRect string

var cropCmd = &cobra.Command{
	Use:   "crop FILENAME",
	Short: "Crop a photo; the first crop keeps a one-level undo backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rect, err := parseRect(cropRect)
		if err != nil {
			return err
		}

		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		if err := lib.CropPhoto(args[0], rect); err != nil {
			return err
		}
		fmt.Printf("Cropped %s\n", args[0])
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore FILENAME",
	Short: "Undo the crop, restoring the pre-crop bytes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		if err := lib.RestorePhoto(args[0]); err != nil {
			return err
		}
		fmt.Printf("Restored %s\n", args[0])
		return nil
	},
}

var backupStatusCmd = &cobra.Command{
	Use:   "backup-status FILENAME",
	Short: "Report whether a crop backup exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		if lib.HasBackup(args[0]) {
			fmt.Println("backup present")
		} else {
			fmt.Println("no backup")
		}
		return nil
	},
}

// parseRect parses "x,y,width,height" into a crop rectangle.
func parseRect(s string) (imaging.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return imaging.Rect{}, fmt.Errorf("invalid --rect %q, expected x,y,width,height", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return imaging.Rect{}, fmt.Errorf("invalid --rect component %q", p)
		}
		vals[i] = v
	}
	return imaging.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func init() {
	cropCmd.Flags().StringVar(&cropRect, "rect", "", "crop rectangle as x,y,width,height")
	cropCmd.MarkFlagRequired("rect")

	rootCmd.AddCommand(cropCmd, restoreCmd, backupStatusCmd)
}
