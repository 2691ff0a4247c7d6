package report

import (
	"encoding/json"
	"io"

	"github.com/camel-leaked/camel-leaked/internal/rules"
	"github.com/camel-leaked/camel-leaked/internal/types"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	ShortDescription sarifMessage  `json:"shortDescription"`
	DefaultConfig    sarifRuleConf `json:"defaultConfiguration"`
}

type sarifRuleConf struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	RuleIndex int          `json:"ruleIndex"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int          `json:"startLine"`
	Snippet   sarifMessage `json:"snippet"`
}

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevMed:
		return "warning"
	case types.SevLow:
		return "note"
	default:
		return "error"
	}
}

// SARIFOptions carries the run metadata written alongside the results.
type SARIFOptions struct {
	Version string
	// Rules describes the active rule set; rules that produced findings but
	// are missing here still get a minimal descriptor.
	Rules []rules.Rule
	Stats map[string]int
}

// WriteSARIF writes findings as a SARIF 2.1.0 log with one run.
func WriteSARIF(w io.Writer, findings []types.Finding, opts SARIFOptions) error {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	driver := sarifDriver{
		Name:           "camel-leaked",
		Version:        version,
		InformationURI: "https://github.com/camel-leaked/camel-leaked",
		Rules:          []sarifRule{},
	}
	index := map[string]int{}
	addRule := func(r sarifRule) int {
		if i, ok := index[r.ID]; ok {
			return i
		}
		index[r.ID] = len(driver.Rules)
		driver.Rules = append(driver.Rules, r)
		return index[r.ID]
	}
	for _, r := range opts.Rules {
		desc := r.Description
		if desc == "" {
			desc = r.Name
		}
		addRule(sarifRule{
			ID:               r.Name,
			Name:             r.Name,
			ShortDescription: sarifMessage{Text: desc},
			DefaultConfig:    sarifRuleConf{Level: sevToLevel(r.Severity)},
		})
	}

	run := sarifRun{Tool: sarifTool{Driver: driver}, Results: []sarifResult{}}
	for _, f := range findings {
		idx := addRule(sarifRule{
			ID:               f.RuleName,
			Name:             f.RuleName,
			ShortDescription: sarifMessage{Text: f.RuleName},
			DefaultConfig:    sarifRuleConf{Level: sevToLevel(f.Severity)},
		})
		phys := sarifPhys{ArtifactLocation: sarifArt{URI: displayFile(f.File)}}
		if f.LineNumber > 0 {
			phys.Region = &sarifRegion{
				StartLine: f.LineNumber,
				Snippet:   sarifMessage{Text: MaskValue(f.Content)},
			}
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:    f.RuleName,
			RuleIndex: idx,
			Level:     sevToLevel(f.Severity),
			Message:   sarifMessage{Text: f.RuleName + " detected"},
			Locations: []sarifLoc{{PhysicalLocation: phys}},
		})
	}
	// rules may have grown while adding results
	run.Tool.Driver.Rules = driver.Rules
	if len(opts.Stats) > 0 {
		run.Properties = map[string]any{"scanStats": opts.Stats}
	}

	doc := sarif{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteJSON writes findings as an indented JSON array. A nil slice is
// written as [].
func WriteJSON(w io.Writer, findings []types.Finding) error {
	if findings == nil {
		findings = []types.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}
