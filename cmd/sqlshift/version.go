package main

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func getVersionString() string {
	var details []string

	if info, ok := debug.ReadBuildInfo(); ok {
		details = append(details, fmt.Sprintf("go: %s", info.GoVersion))
		modified := false
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if commit == "" {
					commit = setting.Value
				}
			case "vcs.time":
				if date == "" {
					date = setting.Value
				}
			case "vcs.modified":
				modified = setting.Value == "true"
			}
		}
		if modified && commit != "" {
			commit += "-dirty"
		}
	}

	if commit != "" {
		details = append(details, fmt.Sprintf("commit: %s", commit))
	}
	if date != "" {
		details = append(details, fmt.Sprintf("built: %s", date))
	}

	if len(details) == 0 {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, strings.Join(details, ", "))
}
