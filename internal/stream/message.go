package stream

import (
	"encoding/json"

	"github.com/2187Nick/schwab-market-depth/pkg/errors"
)

// ServiceKind tags one content item with the upstream service it came from.
type ServiceKind string

const (
	// ServiceBook is the options book depth service.
	ServiceBook ServiceKind = "OPTIONS_BOOK"
	// ServiceTopOfBook is the level-one options service.
	ServiceTopOfBook ServiceKind = "LEVELONE_OPTIONS"
)

// Envelope is one decoded transport frame. Frames without a data section
// (heartbeats, command responses) decode to an empty envelope.
type Envelope struct {
	Data []ServiceMessage `json:"data"`
}

// ServiceMessage is one service section of a frame, batching content items
// for any number of instruments.
type ServiceMessage struct {
	Service   ServiceKind
	Timestamp int64
	Content   []Content
}

// Level is one decoded price/size pair.
type Level struct {
	Price    float64
	Quantity int64
}

// Content is one per-instrument payload. The wire format keys fields by
// numeric field id, and the same id means different things per service:
// under the book service "2"/"3" are the bid and ask level arrays, under
// the level-one service they are scalar quote prices. Content items are
// therefore decoded with the enclosing service in hand.
type Content struct {
	Key             string
	Bids            []Level
	Asks            []Level
	LastPrice       *float64
	LastSize        *float64
	UnderlyingPrice *float64
}

// UnmarshalJSON decodes the section header, then each content item under
// the section's service.
func (m *ServiceMessage) UnmarshalJSON(b []byte) error {
	var raw struct {
		Service   ServiceKind       `json:"service"`
		Timestamp int64             `json:"timestamp"`
		Content   []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	m.Service = raw.Service
	m.Timestamp = raw.Timestamp
	m.Content = make([]Content, len(raw.Content))
	for i, item := range raw.Content {
		if err := m.Content[i].decode(raw.Service, item); err != nil {
			return err
		}
	}
	return nil
}

type rawLevel struct {
	Price    *float64 `json:"0"`
	Quantity *int64   `json:"1"`
}

type rawBookContent struct {
	Key  string     `json:"key"`
	Bids []rawLevel `json:"2"`
	Asks []rawLevel `json:"3"`
}

type rawLevelOneContent struct {
	Key             string   `json:"key"`
	LastPrice       *float64 `json:"4"`
	LastSize        *float64 `json:"18"`
	UnderlyingPrice *float64 `json:"35"`
}

func (c *Content) decode(service ServiceKind, b []byte) error {
	if service == ServiceBook {
		var raw rawBookContent
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		c.Key = raw.Key
		c.Bids = convertLevels(raw.Bids)
		c.Asks = convertLevels(raw.Asks)
		return nil
	}

	// Level-one fields 2/3 are scalar quote prices; only the persisted
	// fields are read, the rest of the item is ignored.
	var raw rawLevelOneContent
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.Key = raw.Key
	c.LastPrice = raw.LastPrice
	c.LastSize = raw.LastSize
	c.UnderlyingPrice = raw.UnderlyingPrice
	return nil
}

func convertLevels(raw []rawLevel) []Level {
	var levels []Level
	for _, l := range raw {
		if l.Price == nil || l.Quantity == nil {
			continue
		}
		levels = append(levels, Level{Price: *l.Price, Quantity: *l.Quantity})
	}
	return levels
}

// Decode parses one raw transport frame into an Envelope.
func Decode(raw []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(raw, env); err != nil {
		return nil, errors.WrapCoded(errors.MalformedMessageError, "failed to decode stream frame", err)
	}
	return env, nil
}
