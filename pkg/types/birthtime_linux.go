//go:build linux

package types

import (
	"io/fs"
	"syscall"
	"time"
)

// birthTime approximates the creation time from the inode change time.
// Linux does not expose a portable birth time through os.Stat.
func birthTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return info.ModTime()
}
