// ABOUTME: Version command reporting the build stamp and Go runtime
// ABOUTME: Falls back to module build info when the binary was built with go install
package commands

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"built"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var versionInfo = VersionInfo{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
}

// SetVersion records the release stamp injected by goreleaser
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

// currentVersion fills in what goreleaser did not stamp
func currentVersion() VersionInfo {
	v := versionInfo
	v.GoVersion = runtime.Version()
	v.Platform = runtime.GOOS + "/" + runtime.GOARCH

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if v.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && v.Commit == "none":
			v.Commit = s.Value
		case s.Key == "vcs.time" && v.Date == "unknown":
			v.Date = s.Value
		}
	}
	return v
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Print the confidant release, commit, build date and the Go runtime it was built with.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := currentVersion()
			out := cmd.OutOrStdout()

			if jsonOutput() {
				data, err := json.MarshalIndent(v, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "confidant %s\n", v.Version)
			fmt.Fprintf(out, "Commit: %s\n", v.Commit)
			fmt.Fprintf(out, "Built:  %s\n", v.Date)
			fmt.Fprintf(out, "Go:     %s %s\n", v.GoVersion, v.Platform)
			return nil
		},
	}
}
