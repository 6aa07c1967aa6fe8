package main

import (
	"fmt"
	"strconv"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// Settings is every configurable value, resolved once at startup and handed
// to the components that need it.
type Settings struct {
	Base string

	Pages     PagesSettings
	Stats     StatsSettings
	Remote    RemoteSettings
	Qualtrics QualtricsSettings
	Prolific  ProlificSettings
	OSF       OSFSettings
}

type PagesSettings struct {
	File     string
	Template string
	Mapping  string
	Output   string
	Script   string
	Images   string
}

type StatsSettings struct {
	Command    string
	MinVersion string
}

type RemoteSettings struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DashboardDir string
	DataPath     string
}

type QualtricsSettings struct {
	DataCenter   string
	BaseURL      string
	APIToken     string
	SurveyID     string
	PollInterval time.Duration
	PollTimeout  time.Duration
	DownloadPath string
}

type ProlificSettings struct {
	APIURL           string
	APIToken         string
	StudyID          string
	PatchDelay       time.Duration
	DemographicsPath string
}

type OSFSettings struct {
	APIURL    string
	APIToken  string
	ProjectID string
	Folder    string
	DataPath  string
}

const defaultDashboardDir = "/home/{{.Username}}/public_html/social-science-dashboard-inator/jjjp-ai-daily-dashboard"

type settingsReader struct {
	conf ConfigGetter
	err  error
}

func (sr *settingsReader) str(key, def string) string {
	if sr.err != nil {
		return def
	}
	val, err := sr.conf.Get(key)
	if err != nil {
		sr.err = errors.Wrapf(err, "unable to read %s", key)
		return def
	}
	if len(val) == 0 {
		return def
	}
	return val
}

func (sr *settingsReader) path(key, def string) string {
	val := sr.str(key, def)
	if sr.err != nil {
		return val
	}
	expanded, err := homedir.Expand(val)
	if err != nil {
		sr.err = errors.Wrapf(err, "unable to expand %s", key)
		return val
	}
	return expanded
}

func (sr *settingsReader) integer(key string, def int) int {
	val := sr.str(key, "")
	if sr.err != nil || len(val) == 0 {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		sr.err = fmt.Errorf("%s must be an integer: %q", key, val)
		return def
	}
	return i
}

func (sr *settingsReader) duration(key string, def time.Duration) time.Duration {
	val := sr.str(key, "")
	if sr.err != nil || len(val) == 0 {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		sr.err = fmt.Errorf("%s must be a duration: %q", key, val)
		return def
	}
	return d
}

// LoadSettings reads every setting from conf, filling in defaults.
func LoadSettings(conf ConfigGetter) (*Settings, error) {
	sr := &settingsReader{conf: conf}

	s := &Settings{
		Base: sr.path("paths.base", "/home/ec2-user/ai_daily"),
		Pages: PagesSettings{
			File:     sr.path("pages.file", ""),
			Template: sr.str("pages.template", "{{.Base}}/templates-html/template-{{.Page}}.html"),
			Mapping:  sr.str("pages.mapping", "{{.Base}}/json/{{.Page}}.json"),
			Output:   sr.str("pages.output", "{{.Base}}/{{.Page}}.html"),
			Script:   sr.str("pages.script", "{{.Base}}/R/create-{{.Page}}-dictionary.R"),
			Images:   sr.str("pages.images", "{{.Base}}/images/*.*"),
		},
		Stats: StatsSettings{
			Command:    sr.str("stats.command", "Rscript"),
			MinVersion: sr.str("stats.min_version", ""),
		},
		Remote: RemoteSettings{
			Host:         sr.str("ninja.host", "premium15.web-hosting.com"),
			Port:         sr.integer("ninja.port", 21098),
			Username:     sr.str("ninja.username", ""),
			Password:     sr.str("ninja.password", ""),
			DashboardDir: sr.str("ninja.dashboard_dir", defaultDashboardDir),
			DataPath:     sr.str("ninja.data_path", defaultDashboardDir+"/data/jjjp-ai-support-daily.csv"),
		},
		Qualtrics: QualtricsSettings{
			DataCenter:   sr.str("qualtrics.data_center", ""),
			BaseURL:      sr.str("qualtrics.base_url", ""),
			APIToken:     sr.str("qualtrics.api_token", ""),
			SurveyID:     sr.str("qualtrics.survey_id", ""),
			PollInterval: sr.duration("qualtrics.poll_interval", 10*time.Second),
			PollTimeout:  sr.duration("qualtrics.poll_timeout", 30*time.Minute),
			DownloadPath: sr.str("qualtrics.download_path", "{{.Base}}/data/qualtrics-download-{{.Date}}.zip"),
		},
		Prolific: ProlificSettings{
			APIURL:           sr.str("prolific.api_url", "https://api.prolific.com/api/v1"),
			APIToken:         sr.str("prolific.api_token", ""),
			StudyID:          sr.str("prolific.survey_id", ""),
			PatchDelay:       sr.duration("prolific.patch_delay", 5*time.Second),
			DemographicsPath: sr.str("prolific.demographics_path", "{{.Base}}/data/prolific-demographics-download-{{.Date}}.csv"),
		},
		OSF: OSFSettings{
			APIURL:    sr.str("osf.api_url", "https://api.osf.io/v2"),
			APIToken:  sr.str("osf.api_token", ""),
			ProjectID: sr.str("osf.project_id", "2ndsf"),
			Folder:    sr.str("osf.folder", "ai-support"),
			DataPath:  sr.str("osf.data_path", "{{.Base}}/data/jjjp-ai-support-daily-{{.Date}}.csv"),
		},
	}

	if sr.err != nil {
		return nil, sr.err
	}

	if len(s.Qualtrics.BaseURL) == 0 && len(s.Qualtrics.DataCenter) > 0 && len(s.Qualtrics.SurveyID) > 0 {
		s.Qualtrics.BaseURL = fmt.Sprintf("https://%s.qualtrics.com/API/v3/surveys/%s/export-responses",
			s.Qualtrics.DataCenter, s.Qualtrics.SurveyID)
	}

	return s, nil
}

// Templater returns a path templater for the given day.
func (s *Settings) Templater(now time.Time) Templater {
	return Templater{
		Base:     s.Base,
		Date:     now.Format(dateLayout),
		Username: s.Remote.Username,
	}
}

func requireSettings(values map[string]string) error {
	for key, val := range values {
		if len(val) == 0 {
			return fmt.Errorf("%s is not configured (set %s)", key, envName(key))
		}
	}
	return nil
}
