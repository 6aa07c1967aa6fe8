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

type fakeQualtrics struct {
	polls     int
	readyAt   int
	status    string
	fileID    string
	createdID string
	body      map[string]interface{}
	tokens    []string
}

func (fq *fakeQualtrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fq.tokens = append(fq.tokens, r.Header.Get("X-API-TOKEN"))

	switch {
	case r.Method == "POST" && r.URL.Path == "/export-responses":
		json.NewDecoder(r.Body).Decode(&fq.body)
		fmt.Fprintf(w, `{"result": {"id": %q}, "meta": {"httpStatus": "200 - OK"}}`, fq.createdID)
	case r.Method == "GET" && r.URL.Path == "/export-responses/"+fq.createdID:
		fq.polls++
		status := "inProgress"
		if fq.polls >= fq.readyAt {
			status = fq.status
		}
		fmt.Fprintf(w, `{"result": {"status": %q, "percentComplete": 50.0, "fileId": %q}}`, status, fq.fileID)
	case r.Method == "GET" && r.URL.Path == "/export-responses/"+fq.downloadID()+"/file":
		w.Write([]byte("PK-archive-bytes"))
	default:
		w.WriteHeader(404)
		fmt.Fprint(w, `{"meta": {"error": {"errorMessage": "not found"}}}`)
	}
}

func (fq *fakeQualtrics) downloadID() string {
	if len(fq.fileID) > 0 {
		return fq.fileID
	}
	return fq.createdID
}

func newTestQualtrics(server *httptest.Server) (*MemLogger, QualtricsClient) {
	logger := &MemLogger{}
	return logger, QualtricsClient{
		Logger: logger,
		Client: NewHTTPClient(logger),
		Settings: QualtricsSettings{
			BaseURL:      server.URL + "/export-responses",
			APIToken:     "qtoken",
			SurveyID:     "SV_123",
			PollInterval: time.Millisecond,
			PollTimeout:  time.Minute,
		},
		Sleep: noSleep,
	}
}

func TestQualtricsExport(t *testing.T) {
	assert := assert.New(t)

	fq := &fakeQualtrics{createdID: "ES_1", readyAt: 3, status: "complete"}
	server := httptest.NewServer(fq)
	defer server.Close()

	_, qc := newTestQualtrics(server)
	data, err := qc.Export(context.Background())

	assert.Nil(err)
	assert.Equal("PK-archive-bytes", string(data))
	assert.Equal(3, fq.polls)
	assert.Equal(map[string]interface{}{"surveyId": "SV_123", "format": "csv", "useLabels": true}, fq.body)
	for _, token := range fq.tokens {
		assert.Equal("qtoken", token)
	}
}

func TestQualtricsExportWithFileID(t *testing.T) {
	assert := assert.New(t)

	fq := &fakeQualtrics{createdID: "ES_2", readyAt: 1, status: "complete", fileID: "FILE_9"}
	server := httptest.NewServer(fq)
	defer server.Close()

	_, qc := newTestQualtrics(server)
	data, err := qc.Export(context.Background())

	assert.Nil(err)
	assert.Equal("PK-archive-bytes", string(data))
}

func TestQualtricsExportFailed(t *testing.T) {
	assert := assert.New(t)

	fq := &fakeQualtrics{createdID: "ES_3", readyAt: 2, status: "failed"}
	server := httptest.NewServer(fq)
	defer server.Close()

	_, qc := newTestQualtrics(server)
	_, err := qc.Export(context.Background())

	if assert.NotNil(err) {
		assert.Contains(err.Error(), "failed")
	}
}

func TestQualtricsExportTimeout(t *testing.T) {
	assert := assert.New(t)

	fq := &fakeQualtrics{createdID: "ES_4", readyAt: 1000000, status: "complete"}
	server := httptest.NewServer(fq)
	defer server.Close()

	_, qc := newTestQualtrics(server)
	qc.Settings.PollTimeout = 50 * time.Millisecond
	qc.Sleep = sleepContext

	_, err := qc.Export(context.Background())
	assert.NotNil(err)
}

func TestQualtricsErrors(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		fmt.Fprint(w, `{"meta": {"error": {"errorMessage": "invalid token"}}}`)
	}))
	defer server.Close()

	_, qc := newTestQualtrics(server)
	_, err := qc.Export(context.Background())
	if assert.NotNil(err) {
		se, ok := err.(*StatusError)
		if assert.True(ok) {
			assert.Equal(401, se.Status)
			assert.Equal("invalid token", se.Body)
		}
	}

	qc.Settings.APIToken = ""
	_, err = qc.Export(context.Background())
	if assert.NotNil(err) {
		assert.Contains(err.Error(), "QUALTRICS_API_TOKEN")
	}
}
