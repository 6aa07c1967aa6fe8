package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kr/pretty"
	"github.com/pkg/errors"
)

// Jobs carries what every daily job needs. Each exported method is one
// cron entry.
type Jobs struct {
	System
	Logger
	Runner
	Settings *Settings
	HTTP     *resty.Client
	Sleep    func(context.Context, time.Duration) error
}

func NewDefaultJobs() (*Jobs, error) {
	system := &DefaultSystem{}
	logger := &LogrusLogger{}

	conf, err := NewDefaultConfigClient(system)
	if err != nil {
		return nil, err
	}

	settings, err := LoadSettings(conf)
	if err != nil {
		return nil, err
	}
	logger.Debugf("settings: %# v", pretty.Formatter(redacted(settings)))

	return &Jobs{
		System:   system,
		Logger:   logger,
		Runner:   &DefaultRunner{logger},
		Settings: settings,
		HTTP:     NewHTTPClient(logger),
		Sleep:    sleepContext,
	}, nil
}

func redacted(s *Settings) Settings {
	out := *s
	for _, secret := range []*string{
		&out.Remote.Password,
		&out.Qualtrics.APIToken,
		&out.Prolific.APIToken,
		&out.OSF.APIToken,
	} {
		if len(*secret) > 0 {
			*secret = "<redacted>"
		}
	}
	return out
}

func (j *Jobs) templater() Templater {
	return j.Settings.Templater(j.Now())
}

func (j *Jobs) path(tmpl string) (string, error) {
	p, err := j.templater().Template(tmpl)
	if err != nil {
		return "", errors.Wrapf(err, "unable to template path %q", tmpl)
	}
	return p, nil
}

func (j *Jobs) date() string {
	return j.Now().Format(dateLayout)
}

func (j *Jobs) renderer() Renderer {
	return Renderer{System: j.System, Logger: j.Logger}
}

func (j *Jobs) statsRunner() StatsRunner {
	return StatsRunner{Logger: j.Logger, Runner: j.Runner, Command: j.Settings.Stats.Command}
}

func (j *Jobs) transferrer() Transferrer {
	return Transferrer{Logger: j.Logger, Runner: j.Runner, Remote: j.Settings.Remote}
}

// UpdateOptions selects the stages of UpdatePages.
type UpdateOptions struct {
	SkipStats bool
	SkipPush  bool
}

// UpdatePages regenerates the statistics, renders every page and publishes
// the images and pages. Every stage isolates failures per page.
func (j *Jobs) UpdatePages(ctx context.Context, opts UpdateOptions) ([]Result, error) {
	pages, err := LoadPages(j.System, j.Settings)
	if err != nil {
		return nil, err
	}

	statsFailures := map[string]error{}
	if !opts.SkipStats {
		stats := j.statsRunner()
		if err := stats.CheckVersion(ctx, j.Settings.Stats.MinVersion); err != nil {
			return nil, err
		}
		statsFailures = stats.GenerateAll(ctx, pages)
	}

	results := j.renderer().RenderAll(pages)
	for i := range results {
		results[i].StatsErr = statsFailures[results[i].Page]
	}

	if !opts.SkipPush {
		j.publish(ctx, pages, results)
	}

	return results, nil
}

// RenderPages renders every page without running statistics or publishing.
func (j *Jobs) RenderPages() ([]Result, error) {
	pages, err := LoadPages(j.System, j.Settings)
	if err != nil {
		return nil, err
	}
	return j.renderer().RenderAll(pages), nil
}

func (j *Jobs) publish(ctx context.Context, pages []Page, results []Result) {
	transfer := j.transferrer()

	dashboardDir, err := j.path(j.Settings.Remote.DashboardDir)
	if err != nil {
		j.Errorf("images overwrite failed: %v", err)
		return
	}

	imagesGlob, err := j.path(j.Settings.Pages.Images)
	if err == nil {
		var images []string
		images, err = j.Glob(imagesGlob)
		if err == nil {
			err = transfer.Push(ctx, images, dashboardDir+"/images/", false)
		}
	}
	if err != nil {
		j.Errorf("images overwrite failed: %v", err)
	} else {
		j.Infof("images overwritten")
	}

	for i, page := range pages {
		logger := j.WithFields(map[string]interface{}{"page": page.Name})
		if !results[i].OK() {
			logger.Warnf("%s HTML page not overwritten, render failed", page.Name)
			continue
		}

		remote := dashboardDir + "/" + filepath.Base(page.Output)
		if err := transfer.Push(ctx, []string{page.Output}, remote, true); err != nil {
			logger.Errorf("%s HTML page overwrite failed: %v", page.Name, err)
			continue
		}
		logger.Infof("%s HTML page overwritten", page.Name)
	}
}

// DownloadResponses exports the cumulative survey responses to the data
// directory and returns the path written.
func (j *Jobs) DownloadResponses(ctx context.Context, unpack bool) (string, error) {
	dest, err := j.path(j.Settings.Qualtrics.DownloadPath)
	if err != nil {
		return "", err
	}

	client := QualtricsClient{
		Logger:   j.Logger,
		Client:   j.HTTP,
		Settings: j.Settings.Qualtrics,
		Sleep:    j.Sleep,
	}
	data, err := client.Export(ctx)
	if err != nil {
		return "", err
	}

	if err := j.WriteFileAtomic(dest, data); err != nil {
		return "", errors.Wrapf(err, "unable to save %s", dest)
	}
	j.Infof("%s download responses from Qualtrics completed", j.date())

	if unpack {
		if err := j.UnpackArchive(dest, filepath.Dir(dest)); err != nil {
			return dest, err
		}
		j.Infof("unpacked %s", dest)
	}

	return dest, nil
}

func (j *Jobs) prolific() ProlificClient {
	return ProlificClient{
		Logger:   j.Logger,
		Client:   j.HTTP,
		Settings: j.Settings.Prolific,
		Sleep:    j.Sleep,
	}
}

// DownloadDemographics saves the participant demographics CSV and returns
// the path written.
func (j *Jobs) DownloadDemographics(ctx context.Context) (string, error) {
	dest, err := j.path(j.Settings.Prolific.DemographicsPath)
	if err != nil {
		return "", err
	}

	data, err := j.prolific().DownloadDemographics(ctx)
	if err != nil {
		return "", err
	}

	if err := j.WriteFileAtomic(dest, data); err != nil {
		return "", errors.Wrapf(err, "unable to save %s", dest)
	}
	j.Infof("%s download demographics from Prolific completed", j.date())
	return dest, nil
}

// IncreasePlaces raises the study's place count by n.
func (j *Jobs) IncreasePlaces(ctx context.Context, n int) (int, error) {
	total, err := j.prolific().IncreasePlaces(ctx, n)
	if err != nil {
		return 0, err
	}
	j.Infof("%s update Prolific spaces to %d completed", j.date(), total)
	return total, nil
}

// UploadData publishes today's cumulative data file to the dashboard host
// and backs it up to the research repository. A failed push is logged and
// the backup still runs.
func (j *Jobs) UploadData(ctx context.Context) (UploadOutcome, error) {
	local, err := j.path(j.Settings.OSF.DataPath)
	if err != nil {
		return 0, err
	}

	remote, err := j.path(j.Settings.Remote.DataPath)
	if err == nil {
		err = j.transferrer().Push(ctx, []string{local}, remote, true)
	}
	if err != nil {
		j.Errorf("%s send failed: %v", local, err)
	} else {
		j.Infof("%s sent to dashboard host", local)
	}

	client := OSFClient{
		Logger:   j.Logger,
		System:   j.System,
		Client:   j.HTTP,
		Settings: j.Settings.OSF,
	}
	outcome, err := client.Backup(ctx, local)
	if err != nil {
		return 0, err
	}

	switch outcome {
	case Uploaded:
		j.Infof("%s upload canonical cumulative file completed", j.date())
	case AlreadyExists:
		j.Warnf("a file named %s already exists on OSF", filepath.Base(local))
	}
	return outcome, nil
}
