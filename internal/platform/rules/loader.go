package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wagecore/internal/domain/tax"
)

type fileBracket struct {
	Upper *decimal.Decimal `json:"upper"`
	Rate  decimal.Decimal  `json:"rate"`
}

type fileRule struct {
	Kind       string          `json:"kind"`
	Rate       decimal.Decimal `json:"rate"`
	Brackets   []fileBracket   `json:"brackets"`
	Components []string        `json:"components"`
	Policy     string          `json:"policy"`
}

type fileDocument struct {
	Jurisdiction   string   `json:"jurisdiction"`
	SchemaVersion  string   `json:"schemaVersion"`
	EffectiveStart string   `json:"effectiveStart"`
	EffectiveEnd   string   `json:"effectiveEnd"`
	Rounding       string   `json:"rounding"`
	Rule           fileRule `json:"rule"`
}

// Load reads every *.json rule document under dir, registers each with the
// registry and freezes it. Any malformed file or document fails the load;
// the registry never becomes ready with bad data.
func Load(dir string, registry *tax.Registry) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		data, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return 0, err
		}
		doc, err := parseDocument(data)
		if err != nil {
			return 0, fmt.Errorf("rule file %s: %w", file, err)
		}
		if err := registry.Register(doc); err != nil {
			return 0, fmt.Errorf("rule file %s: %w", file, err)
		}
	}
	if err := registry.Freeze(); err != nil {
		return 0, err
	}
	return len(files), nil
}

func parseDocument(data []byte) (*tax.RuleDocument, error) {
	var raw fileDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", tax.ErrMalformedRule, err)
	}
	start, err := parseDate(raw.EffectiveStart)
	if err != nil {
		return nil, fmt.Errorf("%w: effectiveStart: %v", tax.ErrMalformedRule, err)
	}
	doc := &tax.RuleDocument{
		Jurisdiction:   raw.Jurisdiction,
		SchemaVersion:  raw.SchemaVersion,
		EffectiveStart: start,
		Rounding:       raw.Rounding,
		Rule: tax.RuleBody{
			Kind:       raw.Rule.Kind,
			Rate:       raw.Rule.Rate,
			Components: raw.Rule.Components,
			Policy:     raw.Rule.Policy,
		},
	}
	if raw.EffectiveEnd != "" {
		end, err := parseDate(raw.EffectiveEnd)
		if err != nil {
			return nil, fmt.Errorf("%w: effectiveEnd: %v", tax.ErrMalformedRule, err)
		}
		doc.EffectiveEnd = &end
	}
	for _, bracket := range raw.Rule.Brackets {
		doc.Rule.Brackets = append(doc.Rule.Brackets, tax.Bracket{
			Upper: bracket.Upper,
			Rate:  bracket.Rate,
		})
	}
	return doc, nil
}

func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
