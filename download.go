package main

import "fmt"

type DownloadResponsesCommand struct {
	Unpack bool `short:"u" long:"unpack" description:"Extract the downloaded archive into the data directory."`
}

type DownloadDemographicsCommand struct{}

type IncreasePlacesCommand struct {
	Increase int `short:"n" long:"increase" default:"11" description:"Number of places to add to the study."`
}

type UploadDataCommand struct{}

var downloadResponsesCommand DownloadResponsesCommand
var downloadDemographicsCommand DownloadDemographicsCommand
var increasePlacesCommand IncreasePlacesCommand
var uploadDataCommand UploadDataCommand

func (x *DownloadResponsesCommand) Execute(args []string) error {
	jobs, err := NewDefaultJobs()
	if err != nil {
		return err
	}

	_, err = jobs.DownloadResponses(rootContext, downloadResponsesCommand.Unpack)
	return err
}

func (x *DownloadDemographicsCommand) Execute(args []string) error {
	jobs, err := NewDefaultJobs()
	if err != nil {
		return err
	}

	_, err = jobs.DownloadDemographics(rootContext)
	return err
}

func (x *IncreasePlacesCommand) Execute(args []string) error {
	if increasePlacesCommand.Increase <= 0 {
		return fmt.Errorf("--increase must be positive")
	}

	jobs, err := NewDefaultJobs()
	if err != nil {
		return err
	}

	_, err = jobs.IncreasePlaces(rootContext, increasePlacesCommand.Increase)
	return err
}

func (x *UploadDataCommand) Execute(args []string) error {
	jobs, err := NewDefaultJobs()
	if err != nil {
		return err
	}

	_, err = jobs.UploadData(rootContext)
	return err
}

func init() {
	for _, c := range []struct {
		name, desc string
		data       interface{}
	}{
		{"download-responses", "Download the cumulative survey responses from Qualtrics.", &downloadResponsesCommand},
		{"download-demographics", "Download participant demographics from Prolific.", &downloadDemographicsCommand},
		{"increase-places", "Add places to the Prolific study.", &increasePlacesCommand},
		{"upload-data", "Publish today's data file and back it up to OSF.", &uploadDataCommand},
	} {
		_, err := parser.AddCommand(c.name, c.desc, "", c.data)
		if err != nil {
			fmt.Println(err)
		}
	}
}
