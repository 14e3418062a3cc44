package codec

import (
	"encoding/json"
	"testing"

	"mindmap/domain/config"
	"mindmap/domain/core/aggregates"
	"mindmap/domain/core/valueobjects"
	pkgerrors "mindmap/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleDocument(t *testing.T) *aggregates.Document {
	t.Helper()
	doc := aggregates.NewEmptyDocument(nil)
	a, err := doc.AddChild("root", "Idea A", valueobjects.SideLeft)
	require.NoError(t, err)
	_, err = doc.AddChild(a.String(), "Detail", valueobjects.SideNone)
	require.NoError(t, err)
	_, err = doc.AddChild("root", "Idea B", valueobjects.SideNone)
	require.NoError(t, err)
	_, err = doc.AddChild("root", "", valueobjects.SideNone)
	require.NoError(t, err)
	return doc
}

func TestRoundTrip(t *testing.T) {
	doc := buildSampleDocument(t)

	decoded := DecodeNode(Encode(doc), nil)

	assert.Equal(t, doc.View(), decoded.View())
	assert.NoError(t, decoded.Validate())
}

func TestRoundTripThroughRecord(t *testing.T) {
	doc := buildSampleDocument(t)

	record, err := MarshalEnvelope("My Map", doc)
	require.NoError(t, err)

	loaded, err := LoadDocument(record, nil)
	require.NoError(t, err)
	assert.Equal(t, doc.View(), loaded.View())
}

func TestEncode_CompactShape(t *testing.T) {
	doc := buildSampleDocument(t)

	data, err := json.Marshal(Encode(doc))
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "root", raw["id"])
	assert.Equal(t, "Central Topic", raw["topic"])
	assert.NotContains(t, raw, "side")
	assert.NotContains(t, raw, "isRoot")

	children := raw["children"].([]interface{})
	require.Len(t, children, 3)
	ideaA := children[0].(map[string]interface{})
	assert.Equal(t, "left", ideaA["side"])
	detail := ideaA["children"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, detail, "side")
	assert.NotContains(t, detail, "children")
	ideaB := children[1].(map[string]interface{})
	assert.Equal(t, "right", ideaB["side"])
}

func TestNewEnvelope(t *testing.T) {
	doc := aggregates.NewEmptyDocument(nil)

	env := NewEnvelope("Plans", doc)

	assert.Equal(t, Meta{Name: "Plans", Author: "User", Version: "1.0"}, env.Meta)
	assert.Equal(t, FormatNodeTree, env.Format)
	require.NotNil(t, env.Data)
	assert.Equal(t, "root", env.Data.ID)
}

func TestDecode_Empty(t *testing.T) {
	tests := []struct {
		name string
		env  *Envelope
	}{
		{name: "nil envelope", env: nil},
		{name: "envelope without data", env: &Envelope{Format: FormatNodeTree}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Decode(tt.env, nil)

			assert.Equal(t, 1, doc.NodeCount())
			assert.Equal(t, "Central Topic", doc.Root().Label())
		})
	}
}

func TestDecode_Placeholders(t *testing.T) {
	data := &WireNode{
		ID: "anything",
		Children: []*WireNode{
			{Side: "left"},
			{ID: "b", Topic: Topic(""), Side: "sideways"},
			nil,
			{ID: "c", Topic: Topic("C"), Children: []*WireNode{{ID: "d", Topic: Topic("D"), Side: "right"}}},
		},
	}

	doc := DecodeNode(data, nil)

	require.NoError(t, doc.Validate())
	root := doc.Root()
	assert.True(t, root.IsRoot())
	assert.Equal(t, "Unknown Topic", root.Label())

	children := root.Children()
	require.Len(t, children, 3)
	assert.Equal(t, "Unknown Topic", children[0].Label())
	assert.False(t, children[0].ID().IsZero())
	assert.Equal(t, valueobjects.SideLeft, children[0].Side())
	assert.Equal(t, "", children[1].Label())
	assert.False(t, children[1].Side().IsSet())

	deep, ok := doc.Find("d")
	require.True(t, ok)
	assert.False(t, deep.Side().IsSet())
}

func TestDecode_ScenarioFromStoredRecord(t *testing.T) {
	record := `{"meta":{"name":"Plans","author":"User","version":"1.0"},"format":"node_tree",` +
		`"data":{"id":"root","topic":"Central","children":[` +
		`{"id":"a","topic":"Idea A","side":"left"},{"id":"b","topic":"Idea B","side":"right"}]}}`

	doc, err := LoadDocument(record, nil)
	require.NoError(t, err)

	root := doc.Root()
	assert.Equal(t, "Central", root.Label())
	children := root.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "Idea A", children[0].Label())
	assert.Equal(t, valueobjects.SideLeft, children[0].Side())
	assert.Equal(t, "Idea B", children[1].Label())
	assert.Equal(t, valueobjects.SideRight, children[1].Side())
}

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantNil bool
		wantErr bool
	}{
		{name: "null", data: "null", wantNil: true},
		{name: "valid", data: `{"meta":{},"format":"node_tree","data":{"id":"root","topic":"x"}}`},
		{name: "missing format", data: `{"data":{"id":"root"}}`},
		{name: "malformed json", data: `{"data":`, wantErr: true},
		{name: "unknown format", data: `{"format":"mind_graph","data":{}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ParseEnvelope(tt.data)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsDataIntegrity(err))
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, env)
			} else {
				assert.NotNil(t, env)
			}
		})
	}
}

func TestLoadDocument_MalformedFallsBack(t *testing.T) {
	cfg := config.DefaultDomainConfig()

	doc, err := LoadDocument("{not json", cfg)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDataIntegrity(err))
	require.NotNil(t, doc)
	assert.Equal(t, 1, doc.NodeCount())
	assert.Equal(t, "Failed to Load", doc.Root().Label())
}
