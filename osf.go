package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// UploadOutcome reports what the repository did with an upload.
type UploadOutcome int

const (
	Uploaded UploadOutcome = iota
	AlreadyExists
)

// OSFClient uploads the cumulative data file to the research repository.
type OSFClient struct {
	Logger
	System
	Client   *resty.Client
	Settings OSFSettings
}

type osfListing struct {
	Data []struct {
		Attributes struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"attributes"`
		Links struct {
			Upload string `json:"upload"`
		} `json:"links"`
	} `json:"data"`
}

func (oc OSFClient) request(ctx context.Context) *resty.Request {
	req := oc.Client.R().SetContext(ctx)
	if len(oc.Settings.APIToken) > 0 {
		req.SetHeader("Authorization", "Bearer "+oc.Settings.APIToken)
	}
	return req
}

// FindUploadURL returns the upload link of the configured storage folder.
func (oc OSFClient) FindUploadURL(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/nodes/%s/files/osfstorage/",
		strings.TrimSuffix(oc.Settings.APIURL, "/"), oc.Settings.ProjectID)

	res, err := oc.request(ctx).Get(url)
	if err != nil {
		return "", errors.Wrap(err, "unable to retrieve folder info")
	}
	if res.StatusCode() != 200 {
		return "", &StatusError{Op: "retrieve folder info", Status: res.StatusCode(), Body: res.String()}
	}

	listing := osfListing{}
	if err := json.Unmarshal(res.Body(), &listing); err != nil {
		return "", errors.Wrap(err, "unable to decode folder info")
	}

	for _, item := range listing.Data {
		if item.Attributes.Name == oc.Settings.Folder {
			if len(item.Links.Upload) == 0 {
				return "", fmt.Errorf("folder %s has no upload link", oc.Settings.Folder)
			}
			return item.Links.Upload, nil
		}
	}

	return "", fmt.Errorf("the %q folder was not found in OSF storage", oc.Settings.Folder)
}

// Upload puts the local file into the folder behind uploadURL under its
// base name. An existing file of that name is reported, not replaced.
func (oc OSFClient) Upload(ctx context.Context, uploadURL, localPath string) (UploadOutcome, error) {
	data, err := oc.ReadFile(localPath)
	if err != nil {
		return 0, errors.Wrap(err, "unable to read data file")
	}

	res, err := oc.request(ctx).
		SetQueryParam("kind", "file").
		SetQueryParam("name", filepath.Base(localPath)).
		SetBody(data).
		Put(uploadURL)
	if err != nil {
		return 0, errors.Wrap(err, "unable to upload data file")
	}

	switch res.StatusCode() {
	case 201:
		return Uploaded, nil
	case 409:
		return AlreadyExists, nil
	}
	return 0, &StatusError{Op: "upload data file", Status: res.StatusCode(), Body: res.String()}
}

// Backup finds the folder and uploads localPath into it.
func (oc OSFClient) Backup(ctx context.Context, localPath string) (UploadOutcome, error) {
	if err := requireSettings(map[string]string{"osf.api_token": oc.Settings.APIToken}); err != nil {
		return 0, err
	}

	uploadURL, err := oc.FindUploadURL(ctx)
	if err != nil {
		return 0, err
	}

	return oc.Upload(ctx, uploadURL, localPath)
}
