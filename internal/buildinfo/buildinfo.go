// Package buildinfo exposes version data stamped at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/loginflow/internal/buildinfo.buildVersion=v1.2.0"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

// Info is the stamped build data.
type Info struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

// Get returns the stamped build data.
func Get() Info {
	return Info{Version: buildVersion, Date: buildDate, Commit: buildCommit}
}

// PrintBuildData writes the build data to w, one field per line.
func PrintBuildData(w io.Writer) {
	i := Get()
	fmt.Fprintf(w, "Build version: %s\n", i.Version)
	fmt.Fprintf(w, "Build date: %s\n", i.Date)
	fmt.Fprintf(w, "Build commit: %s\n", i.Commit)
}
