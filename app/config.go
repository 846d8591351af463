package app

import (
	"encoding/json"
	"time"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
)

const defaultDiskpartTimeout = 2 * time.Minute

// Config carries the operator-tunable knobs. All fields are optional; an
// empty config path yields working defaults with no protected disks and no
// imaging tools.
type Config struct {
	DiskpartTimeoutSeconds int
	ProtectedDiskNames     []string

	GhostPath   string
	ImagePath   string
	BCDBootPath string
	PayloadPath string
}

func LoadConfigFromPath(fs boshsys.FileSystem, path string) (Config, error) {
	var config Config

	if path == "" {
		return config, nil
	}

	bytes, err := fs.ReadFile(path)
	if err != nil {
		return config, bosherr.WrapError(err, "Reading config file")
	}

	err = json.Unmarshal(bytes, &config)
	if err != nil {
		return config, bosherr.WrapError(err, "Parsing config file")
	}

	return config, nil
}

func (c Config) DiskpartTimeout() time.Duration {
	if c.DiskpartTimeoutSeconds <= 0 {
		return defaultDiskpartTimeout
	}
	return time.Duration(c.DiskpartTimeoutSeconds) * time.Second
}
