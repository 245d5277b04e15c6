package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMimeTypeKnownExtension(t *testing.T) {
	assert.Equal(t, "text/plain", ResolveMimeType("./test_file.txt", ""))
	assert.Equal(t, "application/pdf", ResolveMimeType("/data/report.pdf", ""))
}

func TestResolveMimeTypeUnknownExtension(t *testing.T) {
	assert.Equal(t, DefaultMimeType, ResolveMimeType("./blob.jules", ""))
	assert.Equal(t, DefaultMimeType, ResolveMimeType("./no-extension", ""))
}

func TestResolveMimeTypeExplicitOverride(t *testing.T) {
	// An explicit type wins even when the extension disagrees
	assert.Equal(t, "application/json", ResolveMimeType("./data.txt", "application/json"))
}

func TestSpaceNameDerivation(t *testing.T) {
	assert.Equal(t, "My Files Space Space", SpaceName("my_files_space"))
	assert.Equal(t, "Sandbox Space", SpaceName("sandbox"))
}

func TestSpaceDescriptionMentionsID(t *testing.T) {
	assert.Contains(t, SpaceDescription("my_files_space"), "my_files_space")
}
