package adapters

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"mlflow-algorithmia/internal/ports"
	"mlflow-algorithmia/internal/types"
)

const (
	EnvAPIKey             = "ALGORITHMIA_API_KEY"
	EnvUsername           = "ALGORITHMIA_USERNAME"
	EnvAPIEndpoint        = "ALGORITHMIA_API"
	EnvGitEndpoint        = "ALGORITHMIA_GIT_ENDPOINT"
	EnvTagline            = "ALGORITHM_TAGLINE"
	EnvSummary            = "ALGORITHM_SUMMARY"
	EnvTmpDir             = "MLFLOW_ALGO_TMP_DIR"
	EnvHTTPTimeout        = "MLFLOW_ALGO_HTTP_TIMEOUT"
	EnvLegacyRequirements = "MLFLOW_ALGO_LEGACY_REQUIREMENTS"
	EnvStrictVersions     = "MLFLOW_ALGO_STRICT_VERSIONS"
	EnvExcludePackages    = "MLFLOW_ALGO_EXCLUDE_PACKAGES"
)

const (
	DefaultAPIEndpoint    = "https://api.algorithmia.com"
	DefaultDescription    = "Mlflow deployment"
	DefaultTmpDir         = "./algorithmia_tmp/"
	DefaultHTTPTimeoutSec = 300
)

// EnvSettingsAdapter resolves Settings from environment variables through
// a dedicated viper instance. Config-file keys of the same name are
// honoured when the caller has loaded one into the instance.
type EnvSettingsAdapter struct {
	v *viper.Viper
}

func NewEnvSettingsAdapter(v *viper.Viper) EnvSettingsAdapter {
	if v == nil {
		v = viper.New()
	}
	bindings := map[string]string{
		"api_key":             EnvAPIKey,
		"username":            EnvUsername,
		"api_endpoint":        EnvAPIEndpoint,
		"git_endpoint":        EnvGitEndpoint,
		"tagline":             EnvTagline,
		"summary":             EnvSummary,
		"tmp_dir":             EnvTmpDir,
		"http_timeout_sec":    EnvHTTPTimeout,
		"legacy_requirements": EnvLegacyRequirements,
		"strict_versions":     EnvStrictVersions,
		"exclude_packages":    EnvExcludePackages,
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
	v.SetDefault("api_endpoint", DefaultAPIEndpoint)
	v.SetDefault("tagline", DefaultDescription)
	v.SetDefault("summary", DefaultDescription)
	v.SetDefault("tmp_dir", DefaultTmpDir)
	v.SetDefault("http_timeout_sec", DefaultHTTPTimeoutSec)
	return EnvSettingsAdapter{v: v}
}

// Load resolves the settings and fails fast when the API key or the
// username is missing.
func (a EnvSettingsAdapter) Load() (types.Settings, error) {
	settings := a.LoadLocal()
	if settings.APIKey == "" {
		return types.Settings{}, &types.MissingEnvironmentValueError{Name: EnvAPIKey}
	}
	if settings.Username == "" {
		return types.Settings{}, &types.MissingEnvironmentValueError{Name: EnvUsername}
	}
	return settings, nil
}

// LoadLocal resolves the settings without requiring platform credentials,
// for operations that never reach the platform.
func (a EnvSettingsAdapter) LoadLocal() types.Settings {
	apiKey := strings.TrimSpace(a.v.GetString("api_key"))
	username := strings.TrimSpace(a.v.GetString("username"))
	apiEndpoint := strings.TrimRight(strings.TrimSpace(a.v.GetString("api_endpoint")), "/")
	gitEndpoint := strings.TrimSpace(a.v.GetString("git_endpoint"))
	if gitEndpoint == "" {
		gitEndpoint = DeriveGitEndpoint(apiEndpoint)
	}
	return types.Settings{
		APIKey:             apiKey,
		Username:           username,
		APIEndpoint:        apiEndpoint,
		GitEndpoint:        gitEndpoint,
		Tagline:            a.v.GetString("tagline"),
		Summary:            a.v.GetString("summary"),
		TmpDir:             a.v.GetString("tmp_dir"),
		HTTPTimeout:        time.Duration(a.v.GetInt("http_timeout_sec")) * time.Second,
		LegacyRequirements: a.v.GetBool("legacy_requirements"),
		StrictVersions:     a.v.GetBool("strict_versions"),
		ExcludePackages:    a.stringList("exclude_packages"),
		Algorithm:          types.DefaultAlgorithmSettings(),
	}
}

// stringList accepts both a comma separated string, as set through the
// environment, and a YAML list from a config file.
func (a EnvSettingsAdapter) stringList(key string) []string {
	if raw, ok := a.v.Get(key).(string); ok {
		return splitList(raw)
	}
	return splitList(strings.Join(a.v.GetStringSlice(key), ","))
}

// DeriveGitEndpoint maps an API endpoint such as https://api.test.example.com
// to its git host git.test.example.com. One leading "www." and then one
// leading "api." are stripped from the host.
func DeriveGitEndpoint(apiEndpoint string) string {
	host := ""
	if parsed, err := url.Parse(apiEndpoint); err == nil {
		host = parsed.Host
	}
	if host == "" {
		host = strings.Trim(strings.TrimSpace(apiEndpoint), "/")
	}
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "api.")
	return "git." + host
}

// LoadEnvFiles exports the variables of the given .env files into the
// process environment without overriding variables that are already set.
func LoadEnvFiles(paths []string) error {
	var files []string
	for _, path := range paths {
		if strings.TrimSpace(path) != "" {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to load env file").
			WithCause(err)
	}
	return nil
}

// ApplyOverrides updates settings with per-deployment "key=value" config.
// Unknown keys are ignored with a warning, matching how deployment
// config is passed through untouched by the host framework.
func ApplyOverrides(settings types.Settings, overrides map[string]string) (types.Settings, error) {
	for key, value := range overrides {
		var err error
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "tagline":
			settings.Tagline = value
		case "summary":
			settings.Summary = value
		case "tmp_dir":
			settings.TmpDir = value
		case "package_set":
			settings.Algorithm.PackageSet = value
		case "source_visibility":
			settings.Algorithm.SourceVisibility = value
		case "license":
			settings.Algorithm.License = value
		case "network_access":
			settings.Algorithm.NetworkAccess = value
		case "pipeline_enabled":
			settings.Algorithm.PipelineEnabled, err = strconv.ParseBool(value)
		case "legacy_requirements":
			settings.LegacyRequirements, err = strconv.ParseBool(value)
		case "strict_versions":
			settings.StrictVersions, err = strconv.ParseBool(value)
		case "exclude_packages":
			settings.ExcludePackages = splitList(value)
		default:
			log.Warn().Str("key", key).Msg("ignoring unknown deployment config key")
		}
		if err != nil {
			return types.Settings{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid value for %s: %q", key, value)).
				WithCause(err)
		}
	}
	return settings, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

var _ ports.SettingsPort = EnvSettingsAdapter{}
