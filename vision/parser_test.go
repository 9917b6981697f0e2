package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roverkit/seeker/core"
)

func TestParseDetections_Envelope(t *testing.T) {
	raw := `{"objects": [{"name": "keys", "present": true, "position": "bottom left", "distance": "close", "confidence": 0.92, "description": "keyring on the table edge"}]}`

	dets, err := ParseDetections(raw, "keys")
	require.NoError(t, err)
	require.Len(t, dets, 1)

	assert.Equal(t, "keys", dets[0].Name)
	assert.Equal(t, 0.92, dets[0].Confidence)
	assert.Equal(t, core.HorizontalLeft, dets[0].Position.Horizontal)
	assert.Equal(t, core.VerticalBottom, dets[0].Position.Vertical)
	assert.Equal(t, core.DistanceClose, dets[0].Distance)
}

func TestParseDetections_FencedAndProseWrapped(t *testing.T) {
	raw := "Here is what I found:\n```json\n{\"objects\": [{\"name\": \"remote\", \"present\": true, \"position\": \"center\", \"confidence\": 0.8}]}\n```"

	dets, err := ParseDetections(raw, "remote")
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "remote", dets[0].Name)
	assert.True(t, dets[0].Position.Centered())
}

func TestParseDetections_BareArray(t *testing.T) {
	raw := `[{"name": "phone", "confidence": 0.75, "position": "upper right"}]`

	dets, err := ParseDetections(raw, "phone")
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, core.HorizontalRight, dets[0].Position.Horizontal)
	assert.Equal(t, core.VerticalTop, dets[0].Position.Vertical)
}

func TestParseDetections_SkipsAbsentAndUnnamed(t *testing.T) {
	raw := `{"objects": [
		{"name": "wallet", "present": false, "confidence": 0.9},
		{"name": "  ", "present": true, "confidence": 0.9},
		{"name": "wallet", "present": true, "confidence": 1.4}
	]}`

	dets, err := ParseDetections(raw, "wallet")
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, 1.0, dets[0].Confidence)
}

func TestParseDetections_EmptyObjects(t *testing.T) {
	dets, err := ParseDetections(`{"objects": []}`, "keys")
	require.NoError(t, err)
	assert.Empty(t, dets)
}

func TestParseDetections_EmptyResponse(t *testing.T) {
	dets, err := ParseDetections("   \n ", "keys")
	require.NoError(t, err)
	assert.Nil(t, dets)
}

func TestParseDetections_HeuristicFallback(t *testing.T) {
	raw := "Visible objects:\nkeys\nConfidence: 85\nPosition: bottom left of the frame\nDistance: close"

	dets, err := ParseDetections(raw, "keys")
	require.NoError(t, err)
	require.Len(t, dets, 1)

	assert.Equal(t, "keys", dets[0].Name)
	assert.InDelta(t, 0.85, dets[0].Confidence, 1e-9)
	assert.Equal(t, core.HorizontalLeft, dets[0].Position.Horizontal)
	assert.Equal(t, core.DistanceClose, dets[0].Distance)
}

func TestParseDetections_AttributesOnlyCreditTarget(t *testing.T) {
	// No object line at all, just attributes. The sighting is credited to
	// the object being searched for.
	raw := "Confidence: 85\nPosition: left side of the frame"

	dets, err := ParseDetections(raw, "keys")
	require.NoError(t, err)
	require.Len(t, dets, 1)

	assert.Equal(t, "keys", dets[0].Name)
	assert.InDelta(t, 0.85, dets[0].Confidence, 1e-9)
	assert.Equal(t, core.HorizontalLeft, dets[0].Position.Horizontal)
	assert.Equal(t, core.DistanceUnknown, dets[0].Distance)
}

func TestParseDetections_UnrecognizedTextErrors(t *testing.T) {
	_, err := ParseDetections("sorry: nothing useful here: really", "keys")
	require.Error(t, err)

	kind, ok := core.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorKindDetectionParse, kind)
}
