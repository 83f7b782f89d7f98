package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"traincast/internal/calibration"
	"traincast/internal/logger"
	"traincast/internal/models"
	"traincast/internal/projection"
)

func main() {
	requestPath := flag.String("request", "", "Path to a projection request file (YAML or JSON)")
	calibrationPath := flag.String("calibration", "", "Optional calibration override file (YAML)")
	logMode := flag.String("log", "dev", "Log mode: dev or prod")
	pretty := flag.Bool("pretty", true, "Indent the payload JSON")
	flag.Parse()

	if *requestPath == "" {
		fmt.Fprintln(os.Stderr, "usage: projection -request plan.yaml [-calibration cal.yaml]")
		os.Exit(2)
	}

	log, err := logger.New(*logMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	data, err := os.ReadFile(*requestPath)
	if err != nil {
		log.Error("reading request file", "path", *requestPath, "err", err)
		os.Exit(1)
	}

	var req models.ProjectionRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		// YAML is a superset of JSON, but give JSON its own chance in
		// case the file uses constructs yaml chokes on.
		if jerr := json.Unmarshal(data, &req); jerr != nil {
			log.Error("parsing request file", "path", *requestPath, "err", err)
			os.Exit(1)
		}
	}

	if *calibrationPath != "" {
		cal, err := calibration.LoadOverrides(*calibrationPath)
		if err != nil {
			log.Error("loading calibration overrides", "err", err)
			os.Exit(1)
		}
		if req.Config == nil {
			req.Config = &models.CreationConfig{}
		}
		req.Config.Calibration = cal
	}

	payload, err := projection.New(log).Project(req)
	if err != nil {
		log.Error("projection failed", "err", err)
		os.Exit(1)
	}

	var out []byte
	if *pretty {
		out, err = json.MarshalIndent(payload, "", "  ")
	} else {
		out, err = json.Marshal(payload)
	}
	if err != nil {
		log.Error("encoding payload", "err", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
