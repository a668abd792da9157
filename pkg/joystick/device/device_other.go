// +build !linux

package device

// Open is unsupported.
func Open(index int) (Device, error) {
	return nil, ErrUnsupported
}

// DetectAndOpen is unsupported.
func DetectAndOpen(startIndex int) (Device, error) {
	return nil, ErrUnsupported
}
