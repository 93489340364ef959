package manifest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberclient/emberclient/internal/manifest"
	"github.com/emberclient/emberclient/pkg/sdk"
)

const validManifest = `
name: chatfilter
version: 1.2.3
sdk: "1.0"
events:
  - evn_chat_send
  - evn_chat_log
capabilities:
  - chatfilter.rules
  - chatfilter.stats.*
`

func TestParse_Valid(t *testing.T) {
	m, err := manifest.Parse([]byte(validManifest))
	require.NoError(t, err)

	assert.Equal(t, "chatfilter", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, []string{"evn_chat_send", "evn_chat_log"}, m.Events)
	assert.Equal(t, []string{"chatfilter.rules", "chatfilter.stats.*"}, m.Capabilities)

	v, err := m.SDKVersion()
	require.NoError(t, err)
	assert.Equal(t, sdk.Version{Major: 1, Minor: 0}, v)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "empty data", yaml: "", wantErr: "empty"},
		{name: "broken yaml", yaml: "name: [", wantErr: "invalid YAML"},
		{name: "missing name", yaml: "version: 1.0.0\nsdk: \"1.0\"", wantErr: "name"},
		{name: "uppercase name", yaml: "name: ChatFilter\nversion: 1.0.0\nsdk: \"1.0\"", wantErr: "name"},
		{name: "trailing hyphen", yaml: "name: chat-\nversion: 1.0.0\nsdk: \"1.0\"", wantErr: "name"},
		{name: "name too long", yaml: "name: " + strings.Repeat("a", 65) + "\nversion: 1.0.0\nsdk: \"1.0\"", wantErr: "64 characters"},
		{name: "missing version", yaml: "name: chat\nsdk: \"1.0\"", wantErr: "version"},
		{name: "not semver", yaml: "name: chat\nversion: latest\nsdk: \"1.0\"", wantErr: "semver"},
		{name: "two number version", yaml: "name: chat\nversion: \"1.0\"\nsdk: \"1.0\"", wantErr: "semver"},
		{name: "missing sdk", yaml: "name: chat\nversion: 1.0.0", wantErr: "sdk"},
		{name: "sdk without dot", yaml: "name: chat\nversion: 1.0.0\nsdk: \"1\"", wantErr: "major.minor"},
		{name: "sdk bad major", yaml: "name: chat\nversion: 1.0.0\nsdk: \"x.0\"", wantErr: "major"},
		{name: "empty event id", yaml: "name: chat\nversion: 1.0.0\nsdk: \"1.0\"\nevents: [\"\"]", wantErr: "event id"},
		{name: "empty capability", yaml: "name: chat\nversion: 1.0.0\nsdk: \"1.0\"\ncapabilities: [\"\"]", wantErr: "capability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_SingleCharacterName(t *testing.T) {
	m, err := manifest.Parse([]byte("name: x\nversion: 0.1.0\nsdk: \"1.0\""))
	require.NoError(t, err)
	assert.Equal(t, "x", m.Name)
}
