package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// ProlificClient manages the study on the participant recruitment platform.
type ProlificClient struct {
	Logger
	Client   *resty.Client
	Settings ProlificSettings
	Sleep    func(context.Context, time.Duration) error
}

// places accepts the place count as a JSON number or a numeric string.
type places int

func (p *places) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid place count %s", string(data))
	}
	*p = places(n)
	return nil
}

type Study struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Status               string `json:"status"`
	TotalAvailablePlaces places `json:"total_available_places"`
}

func (pc ProlificClient) request(ctx context.Context) *resty.Request {
	return pc.Client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Token "+pc.Settings.APIToken).
		SetHeader("Content-Type", "application/json")
}

func (pc ProlificClient) studyURL() string {
	return fmt.Sprintf("%s/studies/%s", strings.TrimSuffix(pc.Settings.APIURL, "/"), pc.Settings.StudyID)
}

func (pc ProlificClient) checkSettings() error {
	return requireSettings(map[string]string{
		"prolific.api_token": pc.Settings.APIToken,
		"prolific.survey_id": pc.Settings.StudyID,
	})
}

func (pc ProlificClient) GetStudy(ctx context.Context) (*Study, error) {
	res, err := pc.request(ctx).Get(pc.studyURL())
	if err != nil {
		return nil, errors.Wrap(err, "unable to fetch study")
	}
	if res.StatusCode() != 200 {
		return nil, &StatusError{Op: "fetch study", Status: res.StatusCode(), Body: res.String()}
	}

	study := &Study{}
	if err := json.Unmarshal(res.Body(), study); err != nil {
		return nil, errors.Wrap(err, "unable to decode study")
	}
	return study, nil
}

// IncreasePlaces adds n places to the study and returns the new total.
func (pc ProlificClient) IncreasePlaces(ctx context.Context, n int) (int, error) {
	if err := pc.checkSettings(); err != nil {
		return 0, err
	}

	study, err := pc.GetStudy(ctx)
	if err != nil {
		return 0, err
	}

	total := int(study.TotalAvailablePlaces) + n
	pc.Debugf("study %s has %d places, raising to %d", pc.Settings.StudyID, study.TotalAvailablePlaces, total)

	// pause between calls to stay clear of the rate limit
	if err := pc.Sleep(ctx, pc.Settings.PatchDelay); err != nil {
		return 0, err
	}

	payload := map[string]string{
		"total_available_places": strconv.Itoa(total),
	}
	res, err := pc.request(ctx).SetBody(payload).Patch(pc.studyURL())
	if err != nil {
		return 0, errors.Wrap(err, "unable to update study")
	}
	if res.StatusCode() != 200 {
		return 0, &StatusError{Op: "update study", Status: res.StatusCode(), Body: res.String()}
	}

	return total, nil
}

// DownloadDemographics returns the CSV export of participant demographics.
func (pc ProlificClient) DownloadDemographics(ctx context.Context) ([]byte, error) {
	if err := pc.checkSettings(); err != nil {
		return nil, err
	}

	res, err := pc.request(ctx).Get(pc.studyURL() + "/export/")
	if err != nil {
		return nil, errors.Wrap(err, "unable to download demographics")
	}
	if res.StatusCode() != 200 {
		return nil, &StatusError{Op: "download demographics", Status: res.StatusCode(), Body: res.String()}
	}
	return res.Body(), nil
}
