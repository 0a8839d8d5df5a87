package tax

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Registry holds every loaded rule document, indexed by jurisdiction and
// effective window. Registration and resolution are temporally disjoint:
// documents are registered during startup, the registry is frozen once, and
// from then on resolution is lock-free and safe for concurrent readers.
type Registry struct {
	mu     sync.Mutex
	frozen atomic.Bool
	docs   map[string][]*RuleDocument
}

func NewRegistry() *Registry {
	return &Registry{docs: make(map[string][]*RuleDocument)}
}

// Register validates and adds a document. Two documents for the same
// jurisdiction must not share an effective start date.
func (r *Registry) Register(doc *RuleDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	for _, existing := range r.docs[doc.Jurisdiction] {
		if existing.EffectiveStart.Equal(doc.EffectiveStart) {
			return fmt.Errorf("%w: %s effective %s", ErrConflict, doc.Jurisdiction, doc.EffectiveStart.Format("2006-01-02"))
		}
	}
	r.docs[doc.Jurisdiction] = append(r.docs[doc.Jurisdiction], doc)
	return nil
}

// Freeze sorts each jurisdiction's documents by effective start and verifies
// that no two windows overlap and that composite components reference
// registered jurisdictions. After a successful freeze the registry is
// immutable.
func (r *Registry) Freeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return nil
	}
	for jurisdiction, docs := range r.docs {
		sort.Slice(docs, func(i, j int) bool {
			return docs[i].EffectiveStart.Before(docs[j].EffectiveStart)
		})
		for i := 1; i < len(docs); i++ {
			prev := docs[i-1]
			if prev.EffectiveEnd == nil || prev.EffectiveEnd.After(docs[i].EffectiveStart) {
				return fmt.Errorf("%w: %s documents effective %s and %s overlap",
					ErrAmbiguousRule, jurisdiction,
					prev.EffectiveStart.Format("2006-01-02"),
					docs[i].EffectiveStart.Format("2006-01-02"))
			}
		}
	}
	for jurisdiction, docs := range r.docs {
		for _, doc := range docs {
			if doc.Rule.Kind != KindComposite {
				continue
			}
			for _, component := range doc.Rule.Components {
				if len(r.docs[component]) == 0 {
					return fmt.Errorf("%w: %s references unregistered jurisdiction %q",
						ErrMalformedRule, jurisdiction, component)
				}
			}
		}
	}
	r.frozen.Store(true)
	return nil
}

func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Resolve returns the document in force for jurisdiction on date. Binary
// search on effective start, then a containment check against the candidate
// and its immediate predecessor.
func (r *Registry) Resolve(jurisdiction string, date time.Time) (*RuleDocument, error) {
	if !r.frozen.Load() {
		return nil, ErrRegistryNotFrozen
	}
	docs := r.docs[jurisdiction]
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: jurisdiction %q has no registered documents", ErrNoApplicableRule, jurisdiction)
	}
	i := sort.Search(len(docs), func(i int) bool {
		return docs[i].EffectiveStart.After(date)
	})
	if i == 0 {
		return nil, fmt.Errorf("%w: %s on %s", ErrNoApplicableRule, jurisdiction, date.Format("2006-01-02"))
	}
	candidate := docs[i-1]
	if !candidate.InForce(date) {
		return nil, fmt.Errorf("%w: %s on %s", ErrNoApplicableRule, jurisdiction, date.Format("2006-01-02"))
	}
	if i > 1 && docs[i-2].InForce(date) {
		return nil, fmt.Errorf("%w: %s on %s", ErrAmbiguousRule, jurisdiction, date.Format("2006-01-02"))
	}
	return candidate, nil
}

// Documents returns every registered document ordered by jurisdiction and
// effective start. Only valid after Freeze.
func (r *Registry) Documents() []*RuleDocument {
	if !r.frozen.Load() {
		return nil
	}
	jurisdictions := make([]string, 0, len(r.docs))
	for jurisdiction := range r.docs {
		jurisdictions = append(jurisdictions, jurisdiction)
	}
	sort.Strings(jurisdictions)
	var out []*RuleDocument
	for _, jurisdiction := range jurisdictions {
		out = append(out, r.docs[jurisdiction]...)
	}
	return out
}
