package metrics

import (
	"github.com/grafana/pyroscope-go"
)

type ProfilerConfig struct {
	Enabled       bool              `yaml:"enabled"`
	AppName       string            `yaml:"app_name"`
	ServerAddr    string            `yaml:"server_addr"`
	AuthToken     string            `yaml:"auth_token"`
	Tags          map[string]string `yaml:"tags"`
	AppInstanceID string            `yaml:"-"`
}

// InitProfiler starts continuous profiling when enabled; scraping spends
// most of its time blocked on the browser, so goroutine and block profiles
// matter more here than allocation detail.
func InitProfiler(cfg *ProfilerConfig) (*pyroscope.Profiler, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	pTags := map[string]string{
		"instance": cfg.AppInstanceID,
	}
	for k, v := range cfg.Tags {
		pTags[k] = v
	}

	return pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.AppName,
		ServerAddress:   cfg.ServerAddr,
		AuthToken:       cfg.AuthToken,
		Logger:          pyroscope.StandardLogger,
		Tags:            pTags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		},
	})
}
