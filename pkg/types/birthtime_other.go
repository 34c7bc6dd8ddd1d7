//go:build !linux

package types

import (
	"io/fs"
	"time"
)

func birthTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
