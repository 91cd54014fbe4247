package port

// XDGPaths provides XDG Base Directory paths.
type XDGPaths interface {
	// ConfigDir is the application config directory.
	ConfigDir() (string, error)
	// DownloadDir is the user download directory.
	DownloadDir() (string, error)
	// ManDir is the user man page directory (section 1).
	ManDir() (string, error)
}
