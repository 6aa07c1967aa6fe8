package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeProlific struct {
	places      string
	patchStatus int
	patched     map[string]interface{}
	auth        []string
	slept       []time.Duration
}

func (fp *fakeProlific) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fp.auth = append(fp.auth, r.Header.Get("Authorization"))

	switch {
	case r.Method == "GET" && r.URL.Path == "/api/v1/studies/study42":
		fmt.Fprintf(w, `{"id": "study42", "name": "AI support", "total_available_places": %s}`, fp.places)
	case r.Method == "PATCH" && r.URL.Path == "/api/v1/studies/study42":
		json.NewDecoder(r.Body).Decode(&fp.patched)
		if fp.patchStatus != 0 {
			w.WriteHeader(fp.patchStatus)
			fmt.Fprint(w, `{"error": "not allowed"}`)
			return
		}
		fmt.Fprint(w, `{}`)
	case r.Method == "GET" && r.URL.Path == "/api/v1/studies/study42/export/":
		fmt.Fprint(w, "participant_id,age,sex\np1,34,Female\n")
	default:
		w.WriteHeader(404)
		fmt.Fprint(w, `{"error": "not found"}`)
	}
}

func newTestProlific(server *httptest.Server, fp *fakeProlific) ProlificClient {
	logger := &MemLogger{}
	return ProlificClient{
		Logger: logger,
		Client: NewHTTPClient(logger),
		Settings: ProlificSettings{
			APIURL:     server.URL + "/api/v1",
			APIToken:   "ptoken",
			StudyID:    "study42",
			PatchDelay: 5 * time.Second,
		},
		Sleep: func(ctx context.Context, d time.Duration) error {
			fp.slept = append(fp.slept, d)
			return nil
		},
	}
}

func TestIncreasePlaces(t *testing.T) {
	assert := assert.New(t)

	for _, places := range []string{`100`, `"100"`} {
		fp := &fakeProlific{places: places}
		server := httptest.NewServer(fp)

		pc := newTestProlific(server, fp)
		total, err := pc.IncreasePlaces(context.Background(), 11)

		assert.Nil(err)
		assert.Equal(111, total)
		assert.Equal(map[string]interface{}{"total_available_places": "111"}, fp.patched)
		assert.Equal([]time.Duration{5 * time.Second}, fp.slept)
		assert.Equal([]string{"Token ptoken", "Token ptoken"}, fp.auth)

		server.Close()
	}
}

func TestIncreasePlacesErrors(t *testing.T) {
	assert := assert.New(t)

	fp := &fakeProlific{places: "100", patchStatus: 403}
	server := httptest.NewServer(fp)
	defer server.Close()

	pc := newTestProlific(server, fp)
	_, err := pc.IncreasePlaces(context.Background(), 11)
	if assert.NotNil(err) {
		se, ok := err.(*StatusError)
		if assert.True(ok) {
			assert.Equal("update study", se.Op)
			assert.Equal(403, se.Status)
		}
	}

	pc.Settings.StudyID = "missing"
	fp.patched = nil
	_, err = pc.IncreasePlaces(context.Background(), 11)
	assert.NotNil(err)
	assert.Nil(fp.patched)

	fp.places = `"lots"`
	pc.Settings.StudyID = "study42"
	_, err = pc.IncreasePlaces(context.Background(), 11)
	assert.NotNil(err)
}

func TestDownloadDemographics(t *testing.T) {
	assert := assert.New(t)

	fp := &fakeProlific{}
	server := httptest.NewServer(fp)
	defer server.Close()

	pc := newTestProlific(server, fp)
	data, err := pc.DownloadDemographics(context.Background())
	assert.Nil(err)
	assert.Equal("participant_id,age,sex\np1,34,Female\n", string(data))

	pc.Settings.StudyID = "missing"
	_, err = pc.DownloadDemographics(context.Background())
	if assert.NotNil(err) {
		assert.Contains(err.Error(), "404")
	}

	pc.Settings.APIToken = ""
	_, err = pc.DownloadDemographics(context.Background())
	if assert.NotNil(err) {
		assert.Contains(err.Error(), "PROLIFIC_API_TOKEN")
	}
}
