package app

import "encoding/json"

type DeployRequest struct {
	Name     string
	ModelURI string
	Flavor   string
	Config   map[string]string
}

type DeployResult struct {
	Name    string `json:"name"`
	Flavor  string `json:"flavor"`
	Version string `json:"version,omitempty"`
}

type DeleteRequest struct {
	Name string
}

type GetRequest struct {
	Name string
}

type PredictRequest struct {
	Name  string
	Input json.RawMessage
}

type PredictResult struct {
	Result json.RawMessage
}

type RequirementsRequest struct {
	ModelURI string
	EnvFile  string
	Output   string
	Config   map[string]string
}

type RequirementsResult struct {
	Name         string   `json:"name,omitempty"`
	Channels     []string `json:"channels"`
	Requirements []string `json:"requirements"`
	Output       string   `json:"output,omitempty"`
}

type RunLocalRequest struct {
	Name     string
	ModelURI string
	Flavor   string
	Config   map[string]string
}
