package spec

type KafkaSinkSpec struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Acks    int16    `yaml:"required_acks"` // 0,1,-1
	Version string   `yaml:"version"`
}

type StdoutSinkSpec struct {
	PrintValue    bool `yaml:"print_value"`
	ValueMaxBytes int  `yaml:"value_max_bytes"`
}

type PipelineSpec struct {
	Transform        string `yaml:"transform"`
	BatchSize        int    `yaml:"batch_size"`
	PollWaitMS       int    `yaml:"poll_wait_ms"`
	IdleWaitMS       int    `yaml:"idle_wait_ms"`
	PublishTimeoutMS int    `yaml:"publish_timeout_ms"`
	ErrorPolicy      string `yaml:"error_policy"` // "retry" | "skip"
	RetryPolicy      struct {
		Attempts   int     `yaml:"attempts"`
		BackoffMS  int     `yaml:"backoff_ms"`
		Multiplier float64 `yaml:"multiplier"`
		CapMS      int     `yaml:"cap_ms"`
	} `yaml:"retry_policy"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Source struct {
		Kind   string `yaml:"kind"`
		Driver string `yaml:"driver"`
		Config string `yaml:"config"`
	} `yaml:"source"`

	Pipeline PipelineSpec `yaml:"pipeline"`

	Sink struct {
		Driver string         `yaml:"driver"`
		Kafka  KafkaSinkSpec  `yaml:"kafka"`
		Stdout StdoutSinkSpec `yaml:"stdout"`
	} `yaml:"sink"`

	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`

	Ops struct {
		MetricsPort int `yaml:"metrics_port"`
		HealthPort  int `yaml:"health_port"`
	} `yaml:"ops"`
}
