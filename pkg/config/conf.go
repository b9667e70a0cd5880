// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	AppName      = "cloutcheck"
	dirMode      = 0700
	weightTarget = 1.0
	weightSlack  = 0.01

	CleanupImmediate = "immediate"
	CleanupEnd       = "end"
	CleanupNone      = "none"
)

var (
	// ErrMissingToken is returned when analysis is requested without an
	// inference token.
	ErrMissingToken = errors.New("inference token not set (HF_TOKEN or `cloutcheck auth`)")

	validate = validator.New()
)

// Config holds every runtime setting.
type Config struct {
	Home       string `env:"CLOUTCHECK_HOME"`
	DataDir    string `env:"DATA_DIR,default=data" validate:"required"`
	DatasetDir string `env:"DATASET_DIR,default=dataset" validate:"required"`
	ResultsDir string `env:"RESULTS_DIR,default=results" validate:"required"`
	BrandsDir  string `env:"BRANDS_DIR,default=brands" validate:"required"`
	InputDir   string `env:"INPUT_DIR,default=." validate:"required"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`

	InferenceURL     string        `env:"INFERENCE_URL,default=https://api-inference.huggingface.co" validate:"required,url"`
	Token            string        `env:"HF_TOKEN"`
	ToxicityModel    string        `env:"TOXICITY_MODEL,default=unitary/unbiased-toxic-roberta" validate:"required"`
	SentimentModel   string        `env:"SENTIMENT_MODEL,default=cardiffnlp/twitter-roberta-base-sentiment-latest" validate:"required"`
	NSFWModel        string        `env:"NSFW_MODEL,default=Falconsai/nsfw_image_detection" validate:"required"`
	ASRModel         string        `env:"ASR_MODEL,default=openai/whisper-tiny"`
	InferenceTimeout time.Duration `env:"INFERENCE_TIMEOUT,default=60s"`

	NSFWThreshold      float64       `env:"NSFW_THRESHOLD,default=0.7" validate:"gte=0,lte=1"`
	VideoNSFWThreshold float64       `env:"VIDEO_NSFW_THRESHOLD,default=0.7" validate:"gte=0,lte=1"`
	MaxFrames          int           `env:"MAX_FRAMES,default=10" validate:"gte=1"`
	VideoFPS           float64       `env:"VIDEO_FPS_SAMPLE,default=1" validate:"gt=0"`
	DownloadTimeout    time.Duration `env:"DOWNLOAD_TIMEOUT,default=30s"`
	MaxRetries         int           `env:"MAX_RETRIES,default=3" validate:"gte=0"`
	CleanupMedia       bool          `env:"CLEANUP_MEDIA,default=true"`
	CleanupMode        string        `env:"CLEANUP_MODE,default=immediate" validate:"oneof=immediate end none"`
	KeepImages         bool          `env:"KEEP_IMAGES,default=true"`

	DBDriver  string `env:"DB_DRIVER,default=sqlite" validate:"oneof=sqlite postgres"`
	DBDSN     string `env:"DB_DSN"`
	RedisAddr string `env:"REDIS_ADDR"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"MINIO_BUCKET,default=cloutcheck-reports"`
	MinIOSecure    bool   `env:"MINIO_SECURE,default=true"`

	WeightTextToxicity       float64 `env:"WEIGHT_TEXT_TOXICITY,default=0.25" validate:"gte=0,lte=1"`
	WeightImageNSFW          float64 `env:"WEIGHT_IMAGE_NSFW,default=0.25" validate:"gte=0,lte=1"`
	WeightEngagement         float64 `env:"WEIGHT_ENGAGEMENT,default=0.30" validate:"gte=0,lte=1"`
	WeightAuthenticity       float64 `env:"WEIGHT_AUTHENTICITY,default=0.20" validate:"gte=0,lte=1"`
	WeightSemanticSimilarity float64 `env:"WEIGHT_SEMANTIC_SIMILARITY,default=0.30" validate:"gte=0,lte=1"`
	WeightCategoryAlignment  float64 `env:"WEIGHT_CATEGORY_ALIGNMENT,default=0.25" validate:"gte=0,lte=1"`
	WeightValueAlignment     float64 `env:"WEIGHT_VALUE_ALIGNMENT,default=0.25" validate:"gte=0,lte=1"`
	WeightAudienceFit        float64 `env:"WEIGHT_AUDIENCE_FIT,default=0.20" validate:"gte=0,lte=1"`
}

// Load reads an optional .env file and then the environment. Relative
// directories are resolved against the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("no .env loaded", "error", err)
	}

	var c Config
	if _, err := env.UnmarshalFromEnviron(&c); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return &c, nil
}

// FusionWeights returns the content fusion weights by name.
func (c *Config) FusionWeights() map[string]float64 {
	return map[string]float64{
		"text_toxicity": c.WeightTextToxicity,
		"image_nsfw":    c.WeightImageNSFW,
		"engagement":    c.WeightEngagement,
		"authenticity":  c.WeightAuthenticity,
	}
}

// BrandWeights returns the brand fit weights by name.
func (c *Config) BrandWeights() map[string]float64 {
	return map[string]float64{
		"semantic_similarity": c.WeightSemanticSimilarity,
		"category_alignment":  c.WeightCategoryAlignment,
		"value_alignment":     c.WeightValueAlignment,
		"audience_fit":        c.WeightAudienceFit,
	}
}

// Validate checks field ranges and that each weight group sums to 1.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		errs = append(errs, err)
	}
	if err := checkSum("content fusion", c.FusionWeights()); err != nil {
		errs = append(errs, err)
	}
	if err := checkSum("brand fit", c.BrandWeights()); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateForAnalysis additionally requires the inference token.
func (c *Config) ValidateForAnalysis() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

// DSN returns the database DSN, defaulting to the sqlite file in home.
func (c *Config) DSN(defaultFile string) string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	return filepath.Join(c.Home, defaultFile)
}

func checkSum(name string, weights map[string]float64) error {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-weightTarget) > weightSlack {
		return fmt.Errorf("%s weights must sum to 1.0 (current: %.2f)", name, sum)
	}
	return nil
}

// GetOrCreateHomeDir returns the home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	return EnsureDir(filepath.Join(home, name))
}

// EnsureDir creates dir when missing.
func EnsureDir(dir string) (path string, created bool, err error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
