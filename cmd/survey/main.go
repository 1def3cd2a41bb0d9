package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/gradetool/internal/survey"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in"     description:"Readings file (YAML/JSON) or exported CSV table. Reads from stdin if empty"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" choice:"csv" choice:"geojson" default:"json"`
	CSV    bool   `long:"csv"              description:"Treat input as a CSV table regardless of file extension"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	isTable := opts.CSV || strings.EqualFold(filepath.Ext(opts.Input), ".csv")

	var s survey.Survey
	if isTable {
		sightings, err := survey.ReadTable(bytes.NewReader(inputData))
		if err == nil {
			s, err = survey.New(sightings)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading table: %v\n", err)
			os.Exit(1)
		}
	} else {
		readings, err := survey.ParseReadings(inputData)
		if err == nil {
			s, err = survey.FromReadings(readings)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading readings: %v\n", err)
			os.Exit(1)
		}
	}

	// marshal
	var outputData []byte
	switch opts.Format {
	case "yaml":
		outputData, err = yaml.Marshal(s.Report())
	case "csv":
		var buf bytes.Buffer
		err = survey.WriteTable(&buf, s.Sightings())
		outputData = buf.Bytes()
	case "geojson":
		outputData, err = json.MarshalIndent(s.GeoJSON(), "", "  ")
	default:
		outputData, err = json.MarshalIndent(s.Report(), "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d sightings to %s (format: %s)\n", s.Len(), opts.Output, opts.Format)
	} else {
		_, _ = os.Stdout.Write(outputData)
		if len(outputData) > 0 && outputData[len(outputData)-1] != '\n' {
			fmt.Println()
		}
	}
}
