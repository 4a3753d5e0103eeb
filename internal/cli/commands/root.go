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
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"shoebox/internal/config"
	"shoebox/internal/imaging"
	"shoebox/internal/library"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootDir overrides the configured library root when set via --root.
var rootDir string

// cfg is loaded once in the persistent pre-run.
var cfg *config.Config

// SetVersion sets the version info for --version flag
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

// getVersionString returns the version string with build info
func getVersionString() string {
	buildDate := formatBuildDate(date)
	if strings.HasSuffix(version, "-dev") {
		// Dev build: include epoch and commit for troubleshooting
		return fmt.Sprintf("%s (%s, epoch: %s, commit: %s)", version, buildDate, date, commit)
	}
	// Prod build: version with date
	return fmt.Sprintf("%s (%s)", version, buildDate)
}

// formatBuildDate converts epoch timestamp to readable date
func formatBuildDate(epoch string) string {
	ts, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return epoch
	}
	return time.Unix(ts, 0).Format("2006-01-02")
}

var rootCmd = &cobra.Command{
	Use:   "shoebox",
	Short: "Personal photo library manager",
	Long:  `Shoebox organizes photos into album directories backed by a single JSON index, with metadata editing, album moves and single-level crop undo.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		configureLogging(cfg.LogLevel)
		return nil
	},
}

// configureLogging sets the logrus level from the config (case insensitive).
func configureLogging(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "off":
		log.SetLevel(log.PanicLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// openLibrary opens the configured (or overridden) library root.
func openLibrary() (*library.Library, error) {
	dir := cfg.PhotosDir
	if rootDir != "" {
		dir = rootDir
	}
	return library.Open(dir, imaging.NewProcessorWithQuality(cfg.JPEGQuality))
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("shoebox version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "library root directory (overrides config)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
