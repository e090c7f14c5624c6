package runtime

import "fmt"

const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0

	// Name identifies this runtime to loaders and logs.
	Name = "pvrxr"
)

// PrettyName is the human-readable runtime identification string.
func PrettyName() string {
	return fmt.Sprintf("%s v%d.%d.%d", Name, VersionMajor, VersionMinor, VersionPatch)
}
