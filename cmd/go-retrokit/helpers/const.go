package helpers

import "time"

const (
	dirSuffix               = ".cache/go-retrokit"
	installSuffix           = "RetroKit"
	defaultHomeDir          = "/root"
	defaultTimeout          = 30 * time.Second
	defaultCrocDBURL        = "https://api.crocdb.net"
	defaultRetroArchVersion = "1.21.0"
	defaultConfigPath       = "retrokit.toml"

	// UserAgent is sent with every outbound request.
	UserAgent = "go-retrokit"
)
