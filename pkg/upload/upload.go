// Orchestration of the space -> instance -> content upload sequence. The
// sequence is strictly linear with short-circuit on failure: a failed
// instance apply means the content upload is never attempted. Nothing is
// rolled back; every step is keyed by caller-assigned external ids so a
// re-run converges instead of duplicating.
package upload

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cdftools/cdmup/pkg/cdf"
)

// ContentSuffix is appended to the instance external id to form the content
// object's external id.
const ContentSuffix = "_content"

// Job is one file to push into the data model.
type Job struct {
	// Path of the local file whose bytes become the content object
	LocalFilePath string
	// Space the instance node lives in
	Space string
	// External id of the instance node
	InstanceExternalID string
	// Display name recorded on the file facet. Defaults to the local file's
	// base name.
	InstanceName string
	// MIME type override. When empty the type is guessed once from
	// LocalFilePath and used for both the facet and the content object.
	MimeType string
}

// Result reports what a successful run produced.
type Result struct {
	SpaceCreated      bool
	Node              *cdf.NodeInfo
	File              *cdf.FileMetadata
	ContentExternalID string
}

// Runner executes upload jobs against one authenticated client.
type Runner struct {
	client *cdf.Client
	log    logrus.FieldLogger
}

func NewRunner(logger logrus.FieldLogger, client *cdf.Client) *Runner {
	return &Runner{client: client, log: logger}
}

// SpaceName derives a human-readable name from a space id:
// "my_files_space" becomes "My Files Space Space".
func SpaceName(space string) string {
	return strings.Title(strings.ReplaceAll(space, "_", " ")) + " Space"
}

// SpaceDescription derives the description recorded on a created space.
func SpaceDescription(space string) string {
	return "Space for " + space + " data models and instances."
}

// EnsureSpace checks that the space exists and creates it when the lookup
// answers not-found. Returns whether a create happened. Failures are logged
// but never propagated: if the space is truly unusable the instance apply
// will fail with the real error.
func (self *Runner) EnsureSpace(ctx context.Context, space string) bool {
	_, err := self.client.RetrieveSpace(ctx, space)
	if err == nil {
		self.log.WithField("space", space).Info("Space already exists")
		return false
	}
	if !cdf.IsNotFound(err) {
		self.log.WithField("space", space).Errorf("Space lookup failed: %v", err)
		return false
	}

	self.log.WithField("space", space).Info("Space not found, creating it")
	_, err = self.client.ApplySpace(ctx, cdf.Space{
		Space:       space,
		Name:        SpaceName(space),
		Description: SpaceDescription(space),
	})
	if err != nil {
		self.log.WithField("space", space).Errorf("Space create failed: %v", err)
		return false
	}
	self.log.WithField("space", space).Info("Space created")
	return true
}

// CreateFileInstance applies an instance node with a single file facet
// pointing at contentExternalID. mimeType must already be resolved (see
// ResolveMimeType); it is recorded verbatim on the facet.
func (self *Runner) CreateFileInstance(ctx context.Context, space, externalID, contentExternalID, name, mimeType string) (*cdf.NodeInfo, error) {
	log := self.log.WithFields(logrus.Fields{
		"space":      space,
		"externalId": externalID,
		"contentId":  contentExternalID,
	})
	log.Info("Applying file instance node")

	source := cdf.NewFileSource(contentExternalID, name, mimeType)
	node, err := self.client.ApplyNode(ctx, space, externalID, []cdf.NodeSource{source})
	if err != nil {
		log.Errorf("Instance apply failed: %v", err)
		return nil, err
	}

	log.WithField("version", node.Version).Info("Instance node applied")
	return node, nil
}

// UploadContent reads the local file into memory and uploads it as the
// content object, back-referencing the given instance node. The node must
// already exist. A missing local file is reported as a LocalFileError before
// any network call.
func (self *Runner) UploadContent(ctx context.Context, localPath, contentExternalID string, node cdf.NodeID, name, mimeType string) (*cdf.FileMetadata, error) {
	log := self.log.WithFields(logrus.Fields{
		"path":      localPath,
		"contentId": contentExternalID,
	})

	content, err := ioutil.ReadFile(localPath)
	if err != nil {
		log.Errorf("Failed to read local file: %v", err)
		return nil, &LocalFileError{Path: localPath, Err: err}
	}

	log.WithField("bytes", len(content)).Info("Uploading file content")
	meta, err := self.client.UploadFile(ctx, cdf.FileUpload{
		ExternalID: contentExternalID,
		Name:       name,
		MimeType:   mimeType,
		SourceID:   &node,
	}, content)
	if err != nil {
		log.Errorf("Content upload failed: %v", err)
		return nil, err
	}

	log.WithField("externalId", meta.ExternalID).Info("Content uploaded and linked")
	return meta, nil
}

// Run executes the full sequence for one job. The MIME type is resolved once
// here and threaded through both the facet and the content object. Partial
// state (a created space or instance node) persists on failure; re-running
// with the same ids upserts rather than duplicates.
func (self *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	if job.LocalFilePath == "" {
		return nil, errors.New("no local file path given")
	}
	if job.Space == "" {
		return nil, errors.New("no space given")
	}
	if job.InstanceExternalID == "" {
		return nil, errors.New("no instance external id given")
	}

	name := job.InstanceName
	if name == "" {
		name = filepath.Base(job.LocalFilePath)
	}
	mimeType := ResolveMimeType(job.LocalFilePath, job.MimeType)
	contentExternalID := job.InstanceExternalID + ContentSuffix

	spaceCreated := self.EnsureSpace(ctx, job.Space)

	node, err := self.CreateFileInstance(ctx, job.Space, job.InstanceExternalID, contentExternalID, name, mimeType)
	if err != nil {
		return nil, &StageError{Stage: StageInstance, Err: err}
	}

	target := cdf.NodeID{Space: node.Space, ExternalID: node.ExternalID}
	meta, err := self.UploadContent(ctx, job.LocalFilePath, contentExternalID, target, name, mimeType)
	if err != nil {
		return nil, &StageError{Stage: StageContent, Err: err}
	}

	return &Result{
		SpaceCreated:      spaceCreated,
		Node:              node,
		File:              meta,
		ContentExternalID: contentExternalID,
	}, nil
}
