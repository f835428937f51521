package binding

import (
	"usbkey/internal/config"
	"usbkey/internal/device"
	"usbkey/internal/utils"
)

// Matches reports whether the probed identity is the configured key device.
// The comparison is exact: no case folding, no trimming. An identity without
// a UUID, an empty target and the unset placeholder never match.
func Matches(id device.Identity, target string) bool {
	if !id.HasUUID() || target == "" || target == config.Placeholder {
		return false
	}
	return utils.SubtleConstTimeEq(id.UUID, target)
}
