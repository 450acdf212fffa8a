package medra

import (
	"runtime/debug"
)

const modulePath = "github.com/medracompute/medra"

// Version returns the module version and checksum recorded in the
// running binary, or empty strings when built without module support.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, m := range b.Deps {
		if m.Path != modulePath {
			continue
		}
		if m.Replace != nil {
			return m.Version + "=>" + m.Replace.Path + " " + m.Replace.Version, m.Replace.Sum
		}
		return m.Version, m.Sum
	}
	return "", ""
}
