package app

// Build metadata, set with -ldflags "-X tasktrack/cmd/internal/app.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)
