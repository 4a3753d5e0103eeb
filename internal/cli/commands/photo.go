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

	"shoebox/internal/library"
)

var photoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Inspect and edit photos",
}

var photoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all photos in upload order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		records := lib.ListPhotos()
		if len(records) == 0 {
			fmt.Println("No photos in the library")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%-50s  %-15s  %-10s  %s\n", rec.Filename, rec.Album, rec.Date, rec.Title)
		}
		return nil
	},
}

var photoShowCmd = &cobra.Command{
	Use:   "show FILENAME",
	Short: "Show a photo's full metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		rec, err := lib.GetPhoto(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("filename:     %s\n", rec.Filename)
		fmt.Printf("originalName: %s\n", rec.OriginalName)
		fmt.Printf("title:        %s\n", rec.Title)
		fmt.Printf("date:         %s\n", rec.Date)
		fmt.Printf("location:     %s\n", rec.Location)
		fmt.Printf("tags:         %s\n", rec.Tags)
		fmt.Printf("description:  %s\n", rec.Description)
		fmt.Printf("album:        %s\n", rec.Album)
		fmt.Printf("uploadedAt:   %s\n", rec.UploadedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("size:         %d\n", rec.Size)
		fmt.Printf("mimetype:     %s\n", rec.Mimetype)
		fmt.Printf("hasBackup:    %v\n", lib.HasBackup(rec.Filename))
		return nil
	},
}

var photoSetCmd = &cobra.Command{
	Use:   "set FILENAME",
	Short: "Update metadata fields; a changed date renames the file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := library.PhotoPatch{}
		set := func(name string, dst **string) {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetString(name)
				*dst = &v
			}
		}
		set("title", &patch.Title)
		set("date", &patch.Date)
		set("location", &patch.Location)
		set("tags", &patch.Tags)
		set("description", &patch.Description)

		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		rec, err := lib.UpdatePhoto(args[0], patch)
		if err != nil {
			return err
		}
		if rec.Filename != args[0] {
			fmt.Printf("Renamed to %s\n", rec.Filename)
		}
		fmt.Println("Updated")
		return nil
	},
}

var photoRmCmd = &cobra.Command{
	Use:   "rm FILENAME",
	Short: "Delete a photo and its record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		if err := lib.DeletePhoto(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var photoMvCmd = &cobra.Command{
	Use:   "mv FILENAME ALBUM",
	Short: "Move a photo to another album",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		rec, err := lib.MovePhoto(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Moved %s to album %s\n", rec.Filename, rec.Album)
		return nil
	},
}

func init() {
	photoSetCmd.Flags().String("title", "", "new title")
	photoSetCmd.Flags().String("date", "", "new date, YYYY-MM-DD")
	photoSetCmd.Flags().String("location", "", "new location")
	photoSetCmd.Flags().String("tags", "", "new comma-separated tags")
	photoSetCmd.Flags().String("description", "", "new description")

	photoCmd.AddCommand(photoListCmd, photoShowCmd, photoSetCmd, photoRmCmd, photoMvCmd)
	rootCmd.AddCommand(photoCmd)
}
