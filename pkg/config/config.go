package config

import "time"

// CollisionPolicy selects how the persistence writer treats an existing file
// at an encoded path. Overwrite models idempotent re-crawls; suffix appends a
// numeric suffix instead of clobbering. Both reference behaviors exist; the
// policy is a configuration choice, not a defect to pick one side of.
type CollisionPolicy string

const (
	CollisionOverwrite CollisionPolicy = "overwrite"
	CollisionSuffix    CollisionPolicy = "suffix"
)

// SiteConfig holds configuration for one seed-site crawl.
type SiteConfig struct {
	SeedURLs        []string        `yaml:"seed_urls"`
	MaxDepth        int             `yaml:"max_depth"`            // Inclusive hop bound; 0 = unbounded
	MaxPages        int             `yaml:"max_pages"`            // Inclusive result-count bound; 0 = unbounded
	UserAgent       string          `yaml:"user_agent,omitempty"`
	SettleDelay     *time.Duration  `yaml:"settle_delay,omitempty"`
	CollisionPolicy CollisionPolicy `yaml:"collision_policy,omitempty"`
	SaveMarkdown    *bool           `yaml:"save_markdown,omitempty"`
}

// AppConfig holds the global application configuration.
type AppConfig struct {
	DefaultUserAgent   string                `yaml:"default_user_agent"`
	NumWorkers         int                   `yaml:"num_workers"`
	MaxRequests        int                   `yaml:"max_requests"`
	OutputBaseDir      string                `yaml:"output_base_dir"`
	StateDir           string                `yaml:"state_dir,omitempty"` // Non-empty enables the persistent visited store
	SettleDelay        time.Duration         `yaml:"settle_delay,omitempty"`
	RenderTimeout      time.Duration         `yaml:"render_timeout,omitempty"`
	CollisionPolicy    CollisionPolicy       `yaml:"collision_policy,omitempty"`
	SaveMarkdown       bool                  `yaml:"save_markdown,omitempty"`
	EnableOutputMap    bool                  `yaml:"enable_output_mapping,omitempty"`
	OutputMapFilename  string                `yaml:"output_mapping_filename,omitempty"`
	EnableMetadataYAML bool                  `yaml:"enable_metadata_yaml,omitempty"`
	MetadataFilename   string                `yaml:"metadata_yaml_filename,omitempty"`
	ExportFilename     string                `yaml:"export_filename,omitempty"`
	HTTPClientSettings HTTPClientConfig      `yaml:"http_client_settings,omitempty"`
	Sites              map[string]SiteConfig `yaml:"sites"`
}

// HTTPClientConfig holds settings for the shared HTTP client used to fetch
// binary documents (rendered pages go through the browser instead).
type HTTPClientConfig struct {
	Timeout             time.Duration `yaml:"timeout,omitempty"`
	MaxIdleConns        int           `yaml:"max_idle_conns,omitempty"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host,omitempty"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout,omitempty"`
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout,omitempty"`
	DialerTimeout       time.Duration `yaml:"dialer_timeout,omitempty"`
	DialerKeepAlive     time.Duration `yaml:"dialer_keep_alive,omitempty"`
	MaxBodyBytes        int64         `yaml:"max_body_bytes,omitempty"`
}

// GetEffectiveUserAgent determines the user agent for a site.
func GetEffectiveUserAgent(siteCfg SiteConfig, appCfg AppConfig) string {
	if siteCfg.UserAgent != "" {
		return siteCfg.UserAgent
	}
	return appCfg.DefaultUserAgent
}

// GetEffectiveSettleDelay determines the post-navigation settle delay.
func GetEffectiveSettleDelay(siteCfg SiteConfig, appCfg AppConfig) time.Duration {
	if siteCfg.SettleDelay != nil {
		return *siteCfg.SettleDelay
	}
	return appCfg.SettleDelay
}

// GetEffectiveCollisionPolicy determines the persistence collision policy.
func GetEffectiveCollisionPolicy(siteCfg SiteConfig, appCfg AppConfig) CollisionPolicy {
	if siteCfg.CollisionPolicy != "" {
		return siteCfg.CollisionPolicy
	}
	if appCfg.CollisionPolicy != "" {
		return appCfg.CollisionPolicy
	}
	return CollisionOverwrite
}

// GetEffectiveSaveMarkdown determines whether the markdown sidecar is written.
func GetEffectiveSaveMarkdown(siteCfg SiteConfig, appCfg AppConfig) bool {
	if siteCfg.SaveMarkdown != nil {
		return *siteCfg.SaveMarkdown
	}
	return appCfg.SaveMarkdown
}

// GetEffectiveOutputMapFilename determines the TSV mapping filename.
func GetEffectiveOutputMapFilename(appCfg AppConfig) string {
	if appCfg.OutputMapFilename != "" {
		return appCfg.OutputMapFilename
	}
	return "url_to_file_map.tsv"
}

// GetEffectiveMetadataFilename determines the YAML metadata filename.
func GetEffectiveMetadataFilename(appCfg AppConfig) string {
	if appCfg.MetadataFilename != "" {
		return appCfg.MetadataFilename
	}
	return "metadata.yaml"
}

// GetEffectiveExportFilename determines the aggregated record export filename.
func GetEffectiveExportFilename(appCfg AppConfig) string {
	if appCfg.ExportFilename != "" {
		return appCfg.ExportFilename
	}
	return "crawl_results.json"
}
