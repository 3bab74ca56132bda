package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/timegrid/internal/timeline"
)

// JSONParser handles JSON exports: a flat array of typed objects.
type JSONParser struct{}

type jsonElement struct {
	Type    string            `json:"type"`
	Payload map[string]string `json:"payload"`
}

func (p *JSONParser) Parse(r io.Reader, filename string) ([]timeline.Element, error) {
	var raw []jsonElement
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	elements := make([]timeline.Element, 0, len(raw))
	for _, item := range raw {
		payload := item.Payload
		if payload == nil {
			payload = map[string]string{}
		}
		elements = append(elements, timeline.Element{
			Type:    normalizeType(item.Type),
			Payload: payload,
		})
	}
	return elements, nil
}
