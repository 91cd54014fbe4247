//go:build !unix

package terminal

func columns(uintptr) int {
	return 0
}
