package version

// Set via -ldflags "-X github.com/egoavara/formguard/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)
