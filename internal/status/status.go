// Package status reports on running topologies by querying the cluster UI's
// REST API. It sits outside the packaging pipeline: requests arrive exactly
// as parsed from the command line and are answered read-only.
package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hashicorp/go-hclog"
)

// ErrStatus covers failures reaching or reading the cluster UI.
var ErrStatus = errors.New("status query failed")

// Request is one status invocation: the nimbus host plus optional filters.
// Nil filters were omitted on the command line, which is distinct from an
// empty value; an omitted filter matches everything.
type Request struct {
	Nimbus   string
	Worker   *string
	Port     *string
	Topology *string
}

// topologySummary is the slice of /api/v1/topology/summary this tool reads.
type topologySummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

type summaryPage struct {
	Topologies []topologySummary `json:"topologies"`
}

// topologyWorker is one worker row of /api/v1/topology/<id>.
type topologyWorker struct {
	Host           string         `json:"host"`
	Port           int            `json:"port"`
	Uptime         string         `json:"uptime"`
	ExecutorsTotal int            `json:"executorsTotal"`
	ComponentTasks map[string]int `json:"componentNumTasks"`
}

type topologyPage struct {
	Workers []topologyWorker `json:"workers"`
}

// Client renders topology status tables from one cluster UI endpoint. Scheme
// and Port locate the UI next to the nimbus host named per request.
type Client struct {
	Scheme string
	Port   int
	Out    io.Writer
	Logger hclog.Logger

	// HTTPClient overrides the transport; nil means a 30s-timeout default.
	HTTPClient *http.Client
}

func (c *Client) logger() hclog.Logger {
	if c.Logger == nil {
		return hclog.NewNullLogger()
	}
	return c.Logger
}

func (c *Client) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: 30 * time.Second}
	}
	return c.HTTPClient
}

func (c *Client) baseURL(nimbus string) string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, nimbus, c.Port)
}

// Report fetches the topology summary, expands each topology into its worker
// rows, applies the request's filters, and renders the result as a table.
func (c *Client) Report(req Request) error {
	base := c.baseURL(req.Nimbus)
	c.logger().Debug("🔍 Querying cluster UI", "url", base)

	var summary summaryPage
	if err := c.getJSON(base+"/api/v1/topology/summary", &summary); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPOLOGY\tSTATUS\tUPTIME\tHOST\tPORT\tEXECUTORS\tCOMPONENTS")

	for _, topo := range summary.Topologies {
		if req.Topology != nil && topo.Name != *req.Topology {
			continue
		}

		var page topologyPage
		if err := c.getJSON(base+"/api/v1/topology/"+url.PathEscape(topo.ID), &page); err != nil {
			return err
		}

		matched := false
		for _, worker := range page.Workers {
			if req.Worker != nil && worker.Host != *req.Worker {
				continue
			}
			if req.Port != nil && strconv.Itoa(worker.Port) != *req.Port {
				continue
			}
			matched = true
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				topo.Name, topo.Status, topo.Uptime,
				worker.Host, worker.Port, worker.ExecutorsTotal,
				componentList(worker.ComponentTasks))
		}

		// A topology whose workers are all filtered out (or not yet
		// assigned) still gets a row, so it stays visible in the report.
		if !matched && req.Worker == nil && req.Port == nil {
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\t-\t-\t-\n",
				topo.Name, topo.Status, topo.Uptime)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("%w: rendering report: %v", ErrStatus, err)
	}
	return nil
}

// getJSON fetches endpoint and decodes the response body into v.
func (c *Client) getJSON(endpoint string, v any) error {
	resp, err := c.httpClient().Get(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStatus, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s",
			ErrStatus, endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrStatus, endpoint, err)
	}
	return nil
}

// componentList renders a worker's component task counts as
// "name=count,name=count", component names sorted for stable output.
func componentList(tasks map[string]int) string {
	if len(tasks) == 0 {
		return "-"
	}
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, tasks[name]))
	}
	return strings.Join(parts, ",")
}
