package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"mlflow-algorithmia/internal/ports"
	"mlflow-algorithmia/internal/shared"
	"mlflow-algorithmia/internal/types"
)

const dataScheme = "data://"

// AlgorithmiaClient talks to the serving platform REST API. One client is
// built per process and shared by every operation; it holds no mutable
// state after construction.
type AlgorithmiaClient struct {
	settings types.Settings
	client   *resty.Client
}

type createAlgorithmRequest struct {
	Name     string                  `json:"name"`
	Details  types.AlgorithmDetails  `json:"details"`
	Settings types.AlgorithmSettings `json:"settings"`
}

type algorithmResponse struct {
	Name string `json:"name"`
}

type buildsResponse struct {
	Results []types.Build `json:"results"`
}

type createDirRequest struct {
	Name string `json:"name"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type pipeResponse struct {
	Result json.RawMessage `json:"result"`
	apiError
}

func NewAlgorithmiaClient(settings types.Settings) *AlgorithmiaClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(settings.APIEndpoint, "/")).
		SetHeader("Authorization", "Simple "+settings.APIKey).
		SetHeader("Accept", "application/json")
	if settings.HTTPTimeout > 0 {
		client.SetTimeout(settings.HTTPTimeout)
	}
	return &AlgorithmiaClient{settings: settings, client: client}
}

func (c *AlgorithmiaClient) CreateAlgorithm(ctx context.Context, name string, details types.AlgorithmDetails, settings types.AlgorithmSettings) error {
	body := createAlgorithmRequest{Name: name, Details: details, Settings: settings}
	_, err := c.do(ctx, http.MethodPost, c.algorithmsPath(), body)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("algorithm", c.settings.AlgorithmPath(name)).Msg("algorithm created")
	return nil
}

func (c *AlgorithmiaClient) GetAlgorithm(ctx context.Context, name string) (types.Deployment, error) {
	resp, err := c.do(ctx, http.MethodGet, c.algorithmsPath(name), nil)
	if err != nil {
		return types.Deployment{}, err
	}
	var algo algorithmResponse
	if err := json.Unmarshal(resp.Body(), &algo); err != nil {
		return types.Deployment{}, decodeError(err)
	}
	if algo.Name == "" {
		algo.Name = name
	}
	return types.Deployment{
		Name:     algo.Name,
		Username: c.settings.Username,
		URL:      c.client.BaseURL + escapePath("v1", "algo", c.settings.Username, algo.Name),
	}, nil
}

func (c *AlgorithmiaClient) DeleteAlgorithm(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodDelete, c.algorithmsPath(name), nil)
	return err
}

func (c *AlgorithmiaClient) ListBuilds(ctx context.Context, name string) ([]types.Build, error) {
	resp, err := c.do(ctx, http.MethodGet, c.algorithmsPath(name, "builds"), nil)
	if err != nil {
		return nil, err
	}
	var builds buildsResponse
	if err := json.Unmarshal(resp.Body(), &builds); err != nil {
		return nil, decodeError(err)
	}
	return builds.Results, nil
}

func (c *AlgorithmiaClient) DirExists(ctx context.Context, dataDir string) (bool, error) {
	segments, err := dataSegments(dataDir)
	if err != nil {
		return false, err
	}
	resp, err := c.do(ctx, http.MethodGet, connectorPath(segments...), nil)
	if err != nil {
		if resp != nil && resp.StatusCode() == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *AlgorithmiaClient) CreateDir(ctx context.Context, dataDir string) error {
	segments, err := dataSegments(dataDir)
	if err != nil {
		return err
	}
	if len(segments) < 2 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cannot create a top level data directory: " + dataDir)
	}
	parent := segments[:len(segments)-1]
	_, err = c.do(ctx, http.MethodPost, connectorPath(parent...), createDirRequest{Name: segments[len(segments)-1]})
	return err
}

func (c *AlgorithmiaClient) PutFile(ctx context.Context, remotePath string, localPath string) error {
	segments, err := dataSegments(remotePath)
	if err != nil {
		return err
	}
	file, err := os.Open(localPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open upload file").
			WithCause(err)
	}
	defer file.Close()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetContentLength(true).
		SetBody(file).
		Put(connectorPath(segments...))
	if err != nil {
		return requestError(err)
	}
	if resp.IsError() {
		return statusError(resp)
	}
	log.Ctx(ctx).Debug().Str("remote", remotePath).Msg("file uploaded")
	return nil
}

func (c *AlgorithmiaClient) Pipe(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodPost, escapePath("v1", "algo", c.settings.Username, name), []byte(input))
	if err != nil {
		return nil, err
	}
	var out pipeResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, decodeError(err)
	}
	if out.Error.Message != "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("algorithm error: " + out.Error.Message)
	}
	return out.Result, nil
}

func (c *AlgorithmiaClient) algorithmsPath(segments ...string) string {
	return escapePath(append([]string{"v1", "algorithms", c.settings.Username}, segments...)...)
}

func (c *AlgorithmiaClient) do(ctx context.Context, method string, endpoint string, body any) (*resty.Response, error) {
	req := c.client.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, requestError(err)
	}
	if resp.IsError() {
		return resp, statusError(resp)
	}
	return resp, nil
}

// dataSegments splits "data://user/collection/file" into its path segments.
func dataSegments(dataPath string) ([]string, error) {
	if !strings.HasPrefix(dataPath, dataScheme) {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported data path %q, expected %s prefix", dataPath, dataScheme))
	}
	var segments []string
	for _, part := range strings.Split(strings.TrimPrefix(dataPath, dataScheme), "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty data path")
	}
	return segments, nil
}

func connectorPath(segments ...string) string {
	return escapePath(append([]string{"v1", "connector", "data"}, segments...)...)
}

func escapePath(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}
	return path.Join(append([]string{"/"}, escaped...)...)
}

func requestError(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("algorithmia request failed").
		WithCause(err)
}

func decodeError(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to decode algorithmia response").
		WithCause(err)
}

func statusError(resp *resty.Response) error {
	code := errbuilder.CodeInternal
	switch resp.StatusCode() {
	case http.StatusNotFound:
		code = errbuilder.CodeNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		code = errbuilder.CodePermissionDenied
	case http.StatusConflict:
		code = errbuilder.CodeAlreadyExists
	case http.StatusBadRequest:
		code = errbuilder.CodeInvalidArgument
	}
	message := "algorithmia request failed"
	var body apiError
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error.Message != "" {
		message = body.Error.Message
	}
	return errbuilder.New().
		WithCode(code).
		WithMsg(message).
		WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode(), resp.Request.URL, strings.TrimSpace(string(resp.Body()))))
}

var _ ports.PlatformPort = (*AlgorithmiaClient)(nil)
