package config

import "time"

// TopLevel wraps the App config so the config file can namespace everything
// under a single "todoboard" key.
type TopLevel struct {
	Todoboard Todoboard `json:"todoboard" mapstructure:"todoboard"`
}

type Todoboard struct {
	Server App `json:"server" mapstructure:"server"`
}

type App struct {
	BindAddress     string              `json:"bind_address" mapstructure:"bind_address"`
	ShutdownTimeout time.Duration       `json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	Elasticsearch   ElasticsearchClient `json:"elasticsearch" mapstructure:"elasticsearch"`
	ApmClient       *ApmClient          `json:"apm,omitempty" mapstructure:"apm"`
	Auth            *Auth               `json:"auth,omitempty" mapstructure:"auth"`
	Logging         *Logging            `json:"logging,omitempty" mapstructure:"logging"`
	Tasks           Tasks               `json:"tasks" mapstructure:"tasks"`
	Conflicts       Conflicts           `json:"conflicts" mapstructure:"conflicts"`
	Notifications   Notifications       `json:"notifications" mapstructure:"notifications"`
}

type Logging struct {
	Json  *bool   `json:"json,omitempty" mapstructure:"json"`
	File  *string `json:"file,omitempty" mapstructure:"file"`
	Level *string `json:"level,omitempty" mapstructure:"level"`
}

type ElasticsearchClient struct {
	Addresses []string       `json:"addresses" mapstructure:"addresses"`
	User      *BasicAuthUser `json:"user,omitempty" mapstructure:"user"`
}

type ApmClient struct {
	Address     *string `json:"address,omitempty" mapstructure:"address"`
	SecretToken *string `json:"secret_token,omitempty" mapstructure:"secret_token"`
}

type Tasks struct {
	Defaults TasksDefaults `json:"defaults" mapstructure:"defaults"`
}

type TasksDefaults struct {
	ListSize                  uint `json:"list_size" mapstructure:"list_size"`
	VersionConflictRetryTimes uint `json:"version_conflict_retry_times" mapstructure:"version_conflict_retry_times"`
}

// Conflicts configures the conflict record store and its pending-record
// expiry sweep.
type Conflicts struct {
	ListSize   uint          `json:"list_size" mapstructure:"list_size"`
	PendingTtl time.Duration `json:"pending_ttl" mapstructure:"pending_ttl"`
	Sweep      ConflictSweep `json:"sweep" mapstructure:"sweep"`
	LeaderLock LeaderLock    `json:"leader_lock" mapstructure:"leader_lock"`
}

type ConflictSweep struct {
	RunInterval time.Duration `json:"run_interval" mapstructure:"run_interval"`
	BatchSize   uint          `json:"batch_size" mapstructure:"batch_size"`
}

// Notifications configures the in-process fanout of conflict events to
// connected clients.
type Notifications struct {
	BufferSize uint `json:"buffer_size" mapstructure:"buffer_size"`
}

type Auth struct {
	BasicAuth []BasicAuthUser `json:"basic_auth" mapstructure:"basic_auth"`
}

type BasicAuthUser struct {
	Name     string `json:"name" mapstructure:"name"`
	Password string `json:"password" mapstructure:"password"`
}

type LeaderLock struct {
	CheckInterval      time.Duration `json:"check_interval" mapstructure:"check_interval"`
	ReportLagTolerance time.Duration `json:"report_lag_tolerance" mapstructure:"report_lag_tolerance"`
}
