package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// QualtricsClient exports the cumulative survey responses.
type QualtricsClient struct {
	Logger
	Client   *resty.Client
	Settings QualtricsSettings
	Sleep    func(context.Context, time.Duration) error
}

type qualtricsEnvelope struct {
	Result struct {
		ID         string  `json:"id"`
		ProgressID string  `json:"progressId"`
		Status     string  `json:"status"`
		FileID     string  `json:"fileId"`
		Percent    float64 `json:"percentComplete"`
	} `json:"result"`
	Meta struct {
		Error struct {
			ErrorMessage string `json:"errorMessage"`
		} `json:"error"`
	} `json:"meta"`
}

func (qc QualtricsClient) request(ctx context.Context) *resty.Request {
	return qc.Client.R().
		SetContext(ctx).
		SetHeader("X-API-TOKEN", qc.Settings.APIToken).
		SetHeader("Content-Type", "application/json")
}

func (qc QualtricsClient) decode(op string, res *resty.Response) (*qualtricsEnvelope, error) {
	env := &qualtricsEnvelope{}
	err := json.Unmarshal(res.Body(), env)

	if !isSuccess(res) {
		if err == nil && len(env.Meta.Error.ErrorMessage) > 0 {
			return nil, &StatusError{Op: op, Status: res.StatusCode(), Body: env.Meta.Error.ErrorMessage}
		}
		return nil, &StatusError{Op: op, Status: res.StatusCode(), Body: res.String()}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s: unable to decode response", op)
	}
	return env, nil
}

// StartExport creates a CSV export job and returns its id.
func (qc QualtricsClient) StartExport(ctx context.Context) (string, error) {
	payload := map[string]interface{}{
		"surveyId":  qc.Settings.SurveyID,
		"format":    "csv",
		"useLabels": true,
	}

	res, err := qc.request(ctx).SetBody(payload).Post(qc.Settings.BaseURL)
	if err != nil {
		return "", errors.Wrap(err, "unable to create export")
	}

	env, err := qc.decode("create export", res)
	if err != nil {
		return "", err
	}

	id := env.Result.ID
	if len(id) == 0 {
		id = env.Result.ProgressID
	}
	if len(id) == 0 {
		return "", fmt.Errorf("create export: no job id in response")
	}

	qc.Debugf("export job %s created", id)
	return id, nil
}

// WaitForExport polls the job until it completes and returns the id to
// download the file with.
func (qc QualtricsClient) WaitForExport(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, qc.Settings.PollTimeout)
	defer cancel()

	for {
		res, err := qc.request(ctx).Get(qc.Settings.BaseURL + "/" + id)
		if err != nil {
			return "", errors.Wrap(err, "unable to check export status")
		}

		env, err := qc.decode("export status", res)
		if err != nil {
			return "", err
		}

		switch env.Result.Status {
		case "complete":
			if len(env.Result.FileID) > 0 {
				return env.Result.FileID, nil
			}
			return id, nil
		case "failed":
			return "", fmt.Errorf("export job %s failed", id)
		}

		qc.Debugf("export job %s is %s (%.0f%%)", id, env.Result.Status, env.Result.Percent)
		if err := qc.Sleep(ctx, qc.Settings.PollInterval); err != nil {
			return "", errors.Wrapf(err, "gave up waiting for export job %s", id)
		}
	}
}

// DownloadExport fetches the finished export archive.
func (qc QualtricsClient) DownloadExport(ctx context.Context, fileID string) ([]byte, error) {
	res, err := qc.request(ctx).Get(qc.Settings.BaseURL + "/" + fileID + "/file")
	if err != nil {
		return nil, errors.Wrap(err, "unable to download export")
	}
	if !isSuccess(res) {
		return nil, &StatusError{Op: "download export", Status: res.StatusCode(), Body: res.String()}
	}
	return res.Body(), nil
}

// Export runs the whole create, poll and download sequence.
func (qc QualtricsClient) Export(ctx context.Context) ([]byte, error) {
	if err := requireSettings(map[string]string{
		"qualtrics.base_url":  qc.Settings.BaseURL,
		"qualtrics.api_token": qc.Settings.APIToken,
		"qualtrics.survey_id": qc.Settings.SurveyID,
	}); err != nil {
		return nil, err
	}

	id, err := qc.StartExport(ctx)
	if err != nil {
		return nil, err
	}

	fileID, err := qc.WaitForExport(ctx, id)
	if err != nil {
		return nil, err
	}

	return qc.DownloadExport(ctx, fileID)
}
