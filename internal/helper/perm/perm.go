// Package perm provides constants for file and directory permissions.
//
// Note that these permissions are further restricted by the system configured
// umask.
package perm

import "io/fs"

const (
	// SharedDir is the permission given for a directory that may be read
	// outside of sobfilter.
	SharedDir fs.FileMode = 0o755

	// SharedFile is the permission given for a file that may be read outside
	// of sobfilter, like the log files written next to other git tooling logs.
	SharedFile fs.FileMode = 0o644
)
