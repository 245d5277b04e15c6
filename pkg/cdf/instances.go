package cdf

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// The CogniteFile view in the core data model. File-carrying nodes declare a
// source against this view.
const (
	fileViewSpace      = "cdf_cdm"
	fileViewExternalID = "CogniteFile"
	fileViewVersion    = "v1"
)

// NodeID identifies an instance node by (space, externalId).
type NodeID struct {
	Space      string `json:"space"`
	ExternalID string `json:"externalId"`
}

type viewReference struct {
	Type       string `json:"type"`
	Space      string `json:"space"`
	ExternalID string `json:"externalId"`
	Version    string `json:"version"`
}

// NodeSource is one typed property bundle on a node.
type NodeSource struct {
	Source     viewReference          `json:"source"`
	Properties map[string]interface{} `json:"properties"`
}

// NewFileSource builds a CogniteFile source declaring that the node describes
// a file whose content lives in the files resource under fileExternalID.
func NewFileSource(fileExternalID, name, mimeType string) NodeSource {
	return NodeSource{
		Source: viewReference{
			Type:       "view",
			Space:      fileViewSpace,
			ExternalID: fileViewExternalID,
			Version:    fileViewVersion,
		},
		Properties: map[string]interface{}{
			"fileExternalId": fileExternalID,
			"name":           name,
			"mimeType":       mimeType,
		},
	}
}

// NodeApply is a request to create or update one node.
type NodeApply struct {
	InstanceType string       `json:"instanceType"`
	Space        string       `json:"space"`
	ExternalID   string       `json:"externalId"`
	Sources      []NodeSource `json:"sources"`
}

// NodeInfo is the identity and version of a node as reported by the platform
// after an apply.
type NodeInfo struct {
	InstanceType string `json:"instanceType"`
	Space        string `json:"space"`
	ExternalID   string `json:"externalId"`
	Version      int64  `json:"version"`
	WasModified  bool   `json:"wasModified"`
}

type nodeApplyItems struct {
	Items []NodeApply `json:"items"`
}

type nodeInfoItems struct {
	Items []NodeInfo `json:"items"`
}

// ApplyNode creates or updates a single node. Re-applying an identical node
// is an upsert on the platform side.
func (self *Client) ApplyNode(ctx context.Context, space, externalID string, sources []NodeSource) (*NodeInfo, error) {
	req := nodeApplyItems{Items: []NodeApply{{
		InstanceType: "node",
		Space:        space,
		ExternalID:   externalID,
		Sources:      sources,
	}}}

	var resp nodeInfoItems
	err := self.do(ctx, http.MethodPost, self.projectURL("/models/instances"), &req, &resp)
	if err != nil {
		return nil, errors.Wrap(err, "instance apply failed")
	}
	if len(resp.Items) == 0 {
		return nil, errors.New("instance apply returned no items")
	}
	return &resp.Items[0], nil
}
