package process

// Config names the executables and files used inside a slot directory.
// Relative paths are joined to the slot's Directory.
type Config struct {
	Installer string
	ServerCtl string
	LogFile   string

	// Tail is the line-tailing utility, looked up on PATH when not absolute.
	Tail     string
	LogLines int

	RunningPrefix string
	StoppedPrefix string
}

// DefaultConfig matches the layout produced by the portal server installer.
func DefaultConfig() Config {
	return Config{
		Installer:     "bin/install",
		ServerCtl:     "bin/dcc-portal-server",
		LogFile:       "logs/dcc-portal-server.log",
		Tail:          "tail",
		LogLines:      500,
		RunningPrefix: "DCC Portal is running:",
		StoppedPrefix: "DCC Portal is not running.",
	}
}
