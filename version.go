package pictemplate

import "fmt"

// Version information for the picture template library.
const (
	VersionMajor = 1
	VersionMinor = 1
	VersionPatch = 0
)

// Version is the full version string of the picture template library.
var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
