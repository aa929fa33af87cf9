package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// BackgroundPeriod is the fixed interval of the periodic classification trigger.
	BackgroundPeriod = 60 * time.Second
	// QueueTimeout bounds every enqueue and dequeue on the request queues.
	QueueTimeout = 10 * time.Millisecond
)

type Config struct {
	Port          int
	Password      string // empty disables the login middleware
	StaticDir     string
	DataDirectory string
	RegionsPath   string // persisted rectangle list (JSON)
	ResultLogPath string // append-only classification log
	DatabasePath  string
	LogDirectory  string

	Engine     string // "tflite" or "dnn"
	ModelPath       string
	ModelConfigPath string // dnn only; empty for self-contained formats
	NumThreads      int

	CameraSource string // device index, stream URL or still image path
	CameraMode   string // "webcam" or "still"
	FrameWidth   int    // 0 when the geometry is only known after the first capture
	FrameHeight  int

	BackgroundPeriod time.Duration
	QueueTimeout     time.Duration
	RequestTimeout   time.Duration

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", filepath.Join(".", "data"))

	return &Config{
		Port:          getEnvAsInt("PORT", 8080),
		Password:      getEnv("PASSWORD", ""),
		StaticDir:     getEnv("STATIC_DIR", filepath.Join(".", "static")),
		DataDirectory: dataDir,
		RegionsPath:   getEnv("REGIONS_PATH", filepath.Join(dataDir, "config.json")),
		ResultLogPath: getEnv("RESULT_LOG_PATH", filepath.Join(dataDir, "log.txt")),
		DatabasePath:  getEnv("DB_PATH", filepath.Join(dataDir, "results.db")),
		LogDirectory:  getEnv("LOG_DIR", filepath.Join(".", "logs")),

		Engine:     getEnv("ENGINE", "tflite"),
		ModelPath:       getEnv("MODEL_PATH", filepath.Join(".", "model", "tmnist_model.tflite")),
		ModelConfigPath: getEnv("MODEL_CONFIG_PATH", ""),
		NumThreads:      getEnvAsInt("NUM_THREADS", 1),

		CameraSource: getEnv("CAMERA_SOURCE", "0"),
		CameraMode:   getEnv("CAMERA_MODE", "webcam"),
		FrameWidth:   getEnvAsInt("FRAME_WIDTH", 0),
		FrameHeight:  getEnvAsInt("FRAME_HEIGHT", 0),

		BackgroundPeriod: BackgroundPeriod,
		QueueTimeout:     getEnvAsDuration("QUEUE_TIMEOUT", QueueTimeout),
		RequestTimeout:   getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second), // web UI client timeout

		MQTTBroker:   getEnv("MQTT_BROKER", ""),
		MQTTTopic:    getEnv("MQTT_TOPIC", "digitcam/results"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "digitcam"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
