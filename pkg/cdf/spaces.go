package cdf

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// Space is a data-modeling namespace. The zero values of Name and
// Description are valid (CDF treats them as unset).
type Space struct {
	Space       string `json:"space"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type spaceReference struct {
	Space string `json:"space"`
}

type spaceItems struct {
	Items []Space `json:"items"`
}

type spaceReferenceItems struct {
	Items []spaceReference `json:"items"`
}

// RetrieveSpace looks a space up by id. A missing space yields an error for
// which IsNotFound returns true, whether the platform answers 404 or an empty
// item list.
func (self *Client) RetrieveSpace(ctx context.Context, space string) (*Space, error) {
	req := spaceReferenceItems{Items: []spaceReference{{Space: space}}}
	var resp spaceItems
	err := self.do(ctx, http.MethodPost, self.projectURL("/models/spaces/byids"), &req, &resp)
	if err != nil {
		return nil, errors.Wrap(err, "space lookup failed")
	}
	if len(resp.Items) == 0 {
		return nil, notFound("space " + space)
	}
	return &resp.Items[0], nil
}

// ApplySpace creates the space, or upserts it if it already exists.
func (self *Client) ApplySpace(ctx context.Context, space Space) (*Space, error) {
	req := spaceItems{Items: []Space{space}}
	var resp spaceItems
	err := self.do(ctx, http.MethodPost, self.projectURL("/models/spaces"), &req, &resp)
	if err != nil {
		return nil, errors.Wrap(err, "space apply failed")
	}
	if len(resp.Items) == 0 {
		return nil, errors.New("space apply returned no items")
	}
	return &resp.Items[0], nil
}
