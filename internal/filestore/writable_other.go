//go:build !unix

package filestore

// osWritable falls back to the probe file.
func osWritable(string) error {
	return errNoAccessCheck
}
