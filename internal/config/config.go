package config

import (
	"os"
	"path"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Server Server `yaml:"server" validate:"required"`
	Media  Media  `yaml:"media" validate:"required"`
	Log    Log    `yaml:"log"`
	Engine Engine `yaml:"engine"`
}

type Server struct {
	Port            int   `yaml:"port" validate:"required,gt=0,lte=65535"`
	MaxUploadBytes  int64 `yaml:"max_upload_bytes" validate:"required,gt=0"`
	ShutdownTimeout int   `yaml:"shutdown_timeout_sec" validate:"gte=0"`
}

type Media struct {
	// "fs" keeps uploads on local disk, "s3" in an S3-compatible bucket.
	Backend          string `yaml:"backend" validate:"required,oneof=fs s3"`
	RootPath         string `yaml:"root_path"`
	ThumbMaxDim      int    `yaml:"thumb_max_dim" validate:"required,gt=0"`
	ThumbJPEGQuality int    `yaml:"thumb_jpeg_quality" validate:"required,gte=1,lte=100"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Engine struct {
	// How often the background janitor re-checks board capacity and sweeps
	// orphaned media objects. Zero disables it.
	JanitorIntervalSec int `yaml:"janitor_interval_sec" validate:"gte=0"`
}

type Private struct {
	Pg Pg `yaml:"pg" validate:"required"`
	S3 S3 `yaml:"s3"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password" validate:"required"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type S3 struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err = yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		panic("invalid config: " + err.Error())
	}
	if cfg.Public.Media.Backend == "fs" && cfg.Public.Media.RootPath == "" {
		panic("invalid config: media.root_path is required for the fs backend")
	}
	if cfg.Public.Media.Backend == "s3" && (cfg.Private.S3.Endpoint == "" || cfg.Private.S3.Bucket == "") {
		panic("invalid config: s3.endpoint and s3.bucket are required for the s3 backend")
	}

	return cfg
}
