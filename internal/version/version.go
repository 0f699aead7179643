package version

// Set at build time via -ldflags.
var (
	AppName        = "skipjack"
	AppDescription = "Voice playback bot with collective skip/stop votes"
	BuildDate      = ""
	GoVersion      = ""
)
