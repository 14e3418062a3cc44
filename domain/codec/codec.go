// Package codec converts between the persisted wire format and the editing tree.
//
// Decoding is total: missing ids are regenerated, missing topics fall back to
// a placeholder, and the resulting tree is normalised by the document
// aggregate so the structural invariants hold. Encoding is the inverse and
// keeps payloads compact by omitting empty sides and empty child lists.
package codec

import (
	"encoding/json"

	"mindmap/domain/config"
	"mindmap/domain/core/aggregates"
	"mindmap/domain/core/entities"
	"mindmap/domain/core/valueobjects"
	pkgerrors "mindmap/pkg/errors"
	"mindmap/pkg/utils"
)

// Decode turns an envelope into a document.
// A nil envelope or an envelope without data yields the canonical empty document.
func Decode(env *Envelope, cfg *config.DomainConfig) *aggregates.Document {
	if env == nil {
		return aggregates.NewEmptyDocument(cfg)
	}
	return DecodeNode(env.Data, cfg)
}

// DecodeNode turns a wire tree into a document
func DecodeNode(data *WireNode, cfg *config.DomainConfig) *aggregates.Document {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if data == nil {
		return aggregates.NewEmptyDocument(cfg)
	}
	return aggregates.HydrateDocument(toEntity(data, cfg), cfg)
}

func toEntity(w *WireNode, cfg *config.DomainConfig) *entities.Node {
	// Zero ids are assigned by the aggregate during hydration
	id, _ := valueobjects.NewNodeIDFromString(w.ID)
	side, err := valueobjects.ParseSide(w.Side)
	if err != nil {
		side = valueobjects.SideNone
	}

	node := entities.NewNode(id, w.TopicOr(cfg.UnknownTopicLabel), side)
	for _, child := range w.Children {
		if child == nil {
			continue
		}
		node.AppendChild(toEntity(child, cfg))
	}
	return node
}

// Encode turns a document into its wire tree
func Encode(doc *aggregates.Document) *WireNode {
	if doc == nil {
		return nil
	}
	return EncodeNode(doc.Root())
}

// EncodeNode turns a subtree into its wire shape
func EncodeNode(n *entities.Node) *WireNode {
	if n == nil {
		return nil
	}

	w := &WireNode{
		ID:    n.ID().String(),
		Topic: Topic(n.Label()),
	}
	if n.Side().IsSet() {
		w.Side = n.Side().String()
	}

	children := n.Children()
	if len(children) > 0 {
		w.Children = make([]*WireNode, 0, len(children))
		for _, child := range children {
			w.Children = append(w.Children, EncodeNode(child))
		}
	}
	return w
}

// NewEnvelope wraps an encoded document with its metadata
func NewEnvelope(title string, doc *aggregates.Document) Envelope {
	cfg := doc.Config()
	return Envelope{
		Meta: Meta{
			Name:    title,
			Author:  cfg.EnvelopeAuthor,
			Version: cfg.EnvelopeVersion,
		},
		Format: FormatNodeTree,
		Data:   Encode(doc),
	}
}

// MarshalEnvelope produces the mindMapDataJson string for a document
func MarshalEnvelope(title string, doc *aggregates.Document) (string, error) {
	data, err := json.Marshal(NewEnvelope(title, doc))
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to encode mind map").WithCause(err)
	}
	return string(data), nil
}

// ParseEnvelope parses a mindMapDataJson string.
// The literal "null" parses to a nil envelope.
func ParseEnvelope(data string) (*Envelope, error) {
	var env *Envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, pkgerrors.NewDataIntegrityError("mind map data is not valid JSON", err)
	}
	if env == nil {
		return nil, nil
	}
	if err := utils.ValidateStruct(env); err != nil {
		return nil, pkgerrors.NewDataIntegrityError("mind map envelope is malformed", err)
	}
	return env, nil
}

// LoadDocument decodes a mindMapDataJson string.
// On malformed input it returns the load-failure fallback document together with the error.
func LoadDocument(data string, cfg *config.DomainConfig) (*aggregates.Document, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	env, err := ParseEnvelope(data)
	if err != nil {
		return aggregates.NewLabeledRootDocument(cfg.LoadFailedLabel, cfg), err
	}
	return Decode(env, cfg), nil
}
