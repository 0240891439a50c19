package constants

import "time"

var CacheTTL = struct {
	ImageURL time.Duration
}{
	ImageURL: 24 * time.Hour, // Commons search results rarely change
}

var CacheKeys = struct {
	ImageURLPrefix string
}{
	ImageURLPrefix: "carfinder:image:",
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 3,                // 3 consecutive failures open the circuit
	ResetTimeout:     30 * time.Second, // wait before a half-open probe
}

var PaginationConfig = struct {
	ItemsPerPage int
	Timeout      time.Duration
}{
	ItemsPerPage: 10,               // options per page
	Timeout:      30 * time.Second, // per wait cycle
}

var APIConfig = struct {
	WikimediaBaseURL  string
	WikimediaFileURL  string
	WikimediaTimeout  time.Duration
	DefaultUserAgent  string
	FileTitlePrefix   string
	FileNamespace     string
	SearchResultLimit string
}{
	WikimediaBaseURL:  "https://commons.wikimedia.org/w/api.php",
	WikimediaFileURL:  "https://commons.wikimedia.org/wiki/Special:FilePath/%s",
	WikimediaTimeout:  10 * time.Second,
	DefaultUserAgent:  "carfinder-bot-go/1.0 (https://github.com/kapu/carfinder-bot-go)",
	FileTitlePrefix:   "File:",
	FileNamespace:     "6",
	SearchResultLimit: "1",
}

var StringLimits = struct {
	MessageText  int
	PhotoCaption int
	OptionLabel  int
}{
	MessageText:  4096,
	PhotoCaption: 1024,
	OptionLabel:  64,
}

var ShutdownConfig = struct {
	FlowDrainTimeout time.Duration
}{
	FlowDrainTimeout: 5 * time.Second,
}
