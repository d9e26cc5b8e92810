package geoserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Publisher pushes GeoTIFFs to a GeoServer instance over its REST API:
// one coverage store per file, one coverage layer per store. All calls are
// sequential; a failed call for one resource is logged and skipped while the
// batch continues.
type Publisher struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

// NewPublisher checks connectivity before anything else: if the server's web
// interface is unreachable the whole publishing run is aborted.
func NewPublisher(baseURL, username, password string) (*Publisher, error) {
	p := &Publisher{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: 60 * time.Second},
	}

	resp, err := p.do(http.MethodGet, p.baseURL+"/web/", "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GeoServer: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to connect to GeoServer: HTTP %d", resp.StatusCode)
	}
	return p, nil
}

func (p *Publisher) do(method, url, contentType string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(p.username, p.password)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return p.client.Do(req)
}

// exists maps a GET to a boolean: 200 means the resource is there.
func (p *Publisher) exists(url string) (bool, error) {
	resp, err := p.do(http.MethodGet, url, "", nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (p *Publisher) WorkspaceExists(workspace string) (bool, error) {
	return p.exists(fmt.Sprintf("%s/rest/workspaces/%s", p.baseURL, workspace))
}

func (p *Publisher) CreateWorkspace(workspace string) error {
	exists, err := p.WorkspaceExists(workspace)
	if err != nil {
		return err
	}
	if exists {
		fmt.Printf("Workspace %s already exists\n", workspace)
		return nil
	}

	xml := fmt.Sprintf("<workspace><name>%s</name></workspace>", workspace)
	resp, err := p.do(http.MethodPost, p.baseURL+"/rest/workspaces", "application/xml", []byte(xml))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to create workspace %s: HTTP %d", workspace, resp.StatusCode)
	}
	fmt.Printf("Created workspace %s\n", workspace)
	return nil
}

func (p *Publisher) CoverageStoreExists(workspace, store string) (bool, error) {
	return p.exists(fmt.Sprintf("%s/rest/workspaces/%s/coveragestores/%s", p.baseURL, workspace, store))
}

// CreateGeoTIFFStore registers a coverage store pointing at a file already on
// the server's filesystem.
func (p *Publisher) CreateGeoTIFFStore(workspace, store, tifPath string) error {
	exists, err := p.CoverageStoreExists(workspace, store)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	absPath, err := filepath.Abs(tifPath)
	if err != nil {
		return err
	}
	xml := fmt.Sprintf(`<coverageStore>
  <name>%s</name>
  <type>GeoTIFF</type>
  <enabled>true</enabled>
  <workspace>%s</workspace>
  <url>file:%s</url>
</coverageStore>`, store, workspace, absPath)

	resp, err := p.do(http.MethodPost,
		fmt.Sprintf("%s/rest/workspaces/%s/coveragestores", p.baseURL, workspace),
		"application/xml", []byte(xml))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to create store %s: HTTP %d - %s", store, resp.StatusCode, string(body))
	}
	return nil
}

func (p *Publisher) LayerExists(workspace, layer string) (bool, error) {
	return p.exists(fmt.Sprintf("%s/rest/layers/%s:%s", p.baseURL, workspace, layer))
}

// CreateLayer publishes one coverage layer backed by a GeoTIFF store. The
// native coverage name is the file base name without extension.
func (p *Publisher) CreateLayer(workspace, store, layer, title, tifPath string) error {
	exists, err := p.LayerExists(workspace, layer)
	if err != nil {
		return err
	}
	if exists {
		fmt.Printf("Layer %s already exists\n", layer)
		return nil
	}

	if err := p.CreateGeoTIFFStore(workspace, store, tifPath); err != nil {
		return err
	}

	nativeName := strings.TrimSuffix(filepath.Base(tifPath), filepath.Ext(tifPath))
	xml := fmt.Sprintf(`<coverage>
  <name>%s</name>
  <nativeName>%s</nativeName>
  <title>%s</title>
  <enabled>true</enabled>
</coverage>`, layer, nativeName, title)

	resp, err := p.do(http.MethodPost,
		fmt.Sprintf("%s/rest/workspaces/%s/coveragestores/%s/coverages", p.baseURL, workspace, store),
		"application/xml", []byte(xml))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to publish layer %s: HTTP %d - %s", layer, resp.StatusCode, string(body))
	}
	return nil
}

// CleanWorkspace deletes every layer, coverage store and layer group of the
// workspace so a fresh batch starts from a known state.
func (p *Publisher) CleanWorkspace(workspace string) error {
	fmt.Printf("Cleaning workspace %s\n", workspace)

	var layerList struct {
		Layers struct {
			Layer []struct {
				Name string `json:"name"`
			} `json:"layer"`
		} `json:"layers"`
	}
	if err := p.getJSON(p.baseURL+"/rest/layers.json", &layerList); err == nil {
		for _, layer := range layerList.Layers.Layer {
			if !strings.HasPrefix(layer.Name, workspace+":") {
				continue
			}
			p.deleteQuiet(fmt.Sprintf("%s/rest/layers/%s", p.baseURL, layer.Name))
		}
	}

	var storeList struct {
		CoverageStores struct {
			CoverageStore []struct {
				Name string `json:"name"`
			} `json:"coverageStore"`
		} `json:"coverageStores"`
	}
	if err := p.getJSON(fmt.Sprintf("%s/rest/workspaces/%s/coveragestores.json", p.baseURL, workspace), &storeList); err == nil {
		for _, store := range storeList.CoverageStores.CoverageStore {
			p.deleteQuiet(fmt.Sprintf("%s/rest/workspaces/%s/coveragestores/%s?recurse=true", p.baseURL, workspace, store.Name))
		}
	}

	var groupList struct {
		LayerGroups struct {
			LayerGroup []struct {
				Name string `json:"name"`
			} `json:"layerGroup"`
		} `json:"layerGroups"`
	}
	if err := p.getJSON(fmt.Sprintf("%s/rest/workspaces/%s/layergroups.json", p.baseURL, workspace), &groupList); err == nil {
		for _, group := range groupList.LayerGroups.LayerGroup {
			p.deleteQuiet(fmt.Sprintf("%s/rest/workspaces/%s/layergroups/%s", p.baseURL, workspace, group.Name))
		}
	}

	fmt.Printf("Workspace %s cleaned\n", workspace)
	return nil
}

func (p *Publisher) getJSON(url string, out interface{}) error {
	resp, err := p.do(http.MethodGet, url, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *Publisher) deleteQuiet(url string) {
	resp, err := p.do(http.MethodDelete, url, "", nil)
	if err != nil {
		color.Yellow("Delete failed for %s: %s", url, err.Error())
		return
	}
	resp.Body.Close()
}
