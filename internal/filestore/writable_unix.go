//go:build unix

package filestore

import "golang.org/x/sys/unix"

// osWritable asks the kernel whether dir accepts new files.
func osWritable(dir string) error {
	return unix.Access(dir, unix.W_OK)
}
