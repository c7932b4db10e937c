// Package extraction fetches raw source documents and turns them into
// candidate drafts. Parsers never fail on malformed items; they drop them.
package extraction

import (
	"errors"
	"fmt"

	"shiftwatch/internal/models"
	"shiftwatch/internal/structures"
)

type SourceKind int

const (
	KindStructuredFeed SourceKind = iota + 1
	KindArticle
)

func (k SourceKind) String() string {
	switch k {
	case KindStructuredFeed:
		return "structured-feed"
	case KindArticle:
		return "article"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	SourceFeed      = "feed"
	SourceSocial    = "social"
	SourceArticle   = "article"
	SourceCommunity = "community"
)

var (
	ErrUnknownKind   = errors.New("unknown source kind")
	ErrUnknownSource = errors.New("unknown source")
)

// Source is one configured origin of codes. An empty URL means the source
// contributes sample data instead of a live fetch.
type Source struct {
	ID   string
	Kind SourceKind
	URL  string
}

func (s Source) Live() bool {
	return s.URL != ""
}

// KindForSource maps a source identifier to its extraction strategy.
func KindForSource(id string) (SourceKind, error) {
	switch id {
	case SourceFeed, SourceSocial, SourceCommunity:
		return KindStructuredFeed, nil
	case SourceArticle:
		return KindArticle, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
}

// SourcesFromConfig returns the enabled sources in configured order.
func SourcesFromConfig(conf *structures.Config) ([]Source, error) {
	out := make([]Source, 0, len(conf.Monitor.Sources))
	for _, sc := range conf.Monitor.Sources {
		if !sc.Enabled {
			continue
		}
		kind, err := KindForSource(sc.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Source{ID: sc.ID, Kind: kind, URL: sc.URL})
	}
	return out, nil
}

type Options struct {
	TableMarker string
}

// Extract runs the strategy for kind over raw.
func Extract(kind SourceKind, raw []byte, opts Options) ([]models.CollectedDraft, error) {
	switch kind {
	case KindStructuredFeed:
		return ParseStructuredFeed(raw), nil
	case KindArticle:
		return ParseArticle(raw, opts.TableMarker)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}
