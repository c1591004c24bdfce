// Package reply parses the geodb's JSON reply envelopes into typed
// results. Shapes follow the Tile38-compatible wire format.
package reply

import (
	"encoding/json"
	"fmt"

	"github.com/meridian-cloud/meridian/internal/domain"
)

// Object is a stored object as listed by SCAN and the search verbs:
// id, raw interchange geometry and resolved numeric fields.
type Object struct {
	ID       string
	Geometry json.RawMessage
	Fields   []domain.Field
}

// Stats summarizes a collection.
type Stats struct {
	NumObjects   int
	InMemorySize int
}

// Hook is a registered webhook as echoed by HOOKS.
type Hook struct {
	Name      string
	Key       string
	Endpoints []string
	Command   []string
}

type rawObject struct {
	ID     string          `json:"id"`
	Object json.RawMessage `json:"object"`
	Fields []float64       `json:"fields"`
}

// Objects parses a SCAN/WITHIN/NEARBY/INTERSECTS reply. The envelope
// carries field names once at the top level and per-object value arrays;
// both are zipped back into named fields here.
func Objects(data []byte) ([]Object, error) {
	var env struct {
		OK      bool        `json:"ok"`
		Fields  []string    `json:"fields"`
		Objects []rawObject `json:"objects"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse objects reply: %w", err)
	}

	out := make([]Object, 0, len(env.Objects))
	for _, o := range env.Objects {
		obj := Object{ID: o.ID, Geometry: o.Object}
		for i, v := range o.Fields {
			if i >= len(env.Fields) {
				break
			}
			obj.Fields = append(obj.Fields, domain.Field{Name: env.Fields[i], Value: v})
		}
		out = append(out, obj)
	}
	return out, nil
}

// GetObject parses a GET reply.
func GetObject(id string, data []byte) (Object, error) {
	var env struct {
		OK     bool               `json:"ok"`
		Object json.RawMessage    `json:"object"`
		Fields map[string]float64 `json:"fields"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Object{}, fmt.Errorf("parse get reply: %w", err)
	}
	obj := Object{ID: id, Geometry: env.Object}
	for name, v := range env.Fields {
		obj.Fields = append(obj.Fields, domain.Field{Name: name, Value: v})
	}
	return obj, nil
}

// Keys parses a KEYS reply into collection names.
func Keys(data []byte) ([]string, error) {
	var env struct {
		OK   bool     `json:"ok"`
		Keys []string `json:"keys"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse keys reply: %w", err)
	}
	return env.Keys, nil
}

// CollectionStats parses a STATS reply. A missing collection yields a
// zero Stats, matching the geodb's null entry.
func CollectionStats(data []byte) (Stats, error) {
	var env struct {
		OK    bool `json:"ok"`
		Stats []*struct {
			NumObjects   int `json:"num_objects"`
			InMemorySize int `json:"in_memory_size"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Stats{}, fmt.Errorf("parse stats reply: %w", err)
	}
	if len(env.Stats) == 0 || env.Stats[0] == nil {
		return Stats{}, nil
	}
	return Stats{
		NumObjects:   env.Stats[0].NumObjects,
		InMemorySize: env.Stats[0].InMemorySize,
	}, nil
}

// Hooks parses a HOOKS reply.
func Hooks(data []byte) ([]Hook, error) {
	var env struct {
		OK    bool `json:"ok"`
		Hooks []struct {
			Name      string   `json:"name"`
			Key       string   `json:"key"`
			Endpoints []string `json:"endpoints"`
			Command   []string `json:"command"`
		} `json:"hooks"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse hooks reply: %w", err)
	}
	out := make([]Hook, 0, len(env.Hooks))
	for _, h := range env.Hooks {
		out = append(out, Hook{
			Name:      h.Name,
			Key:       h.Key,
			Endpoints: h.Endpoints,
			Command:   h.Command,
		})
	}
	return out, nil
}
