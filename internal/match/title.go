package match

import (
	"strings"

	"plansync/internal/models"
	"plansync/internal/normalize"
)

// Asset is one host library document, name plus identifier
type Asset struct {
	UUID string
	Name string
}

// Candidate lists are for operator diagnostics, not automation; five is
// enough to spot the near miss
const maxCandidates = 5

// Titles resolves each queried title against a host library snapshot.
// Exact hits compare normalized forms; misses collect up to five candidates
// whose normalized names contain every query token, in snapshot order.
func Titles(queries []string, snapshot []Asset) map[string]models.MatchResult {
	index := make(map[string]string, len(snapshot))
	normNames := make([]string, len(snapshot))
	for i, a := range snapshot {
		normNames[i] = normalize.Title(a.Name)
		if normNames[i] == "" {
			continue
		}
		if _, exists := index[normNames[i]]; !exists {
			index[normNames[i]] = a.UUID
		}
	}

	results := make(map[string]models.MatchResult, len(queries))
	for _, q := range queries {
		nq := normalize.Title(q)
		if nq != "" {
			if uuid, ok := index[nq]; ok {
				results[q] = models.MatchResult{Matched: true, UUID: uuid}
				continue
			}
		}
		results[q] = models.MatchResult{Candidates: candidates(nq, snapshot, normNames)}
	}
	return results
}

func candidates(nq string, snapshot []Asset, normNames []string) []models.Candidate {
	tokens := strings.Fields(nq)
	if len(tokens) == 0 {
		return nil
	}
	var out []models.Candidate
	for i, a := range snapshot {
		if !containsAllTokens(normNames[i], tokens) {
			continue
		}
		out = append(out, models.Candidate{UUID: a.UUID, Name: a.Name})
		if len(out) == maxCandidates {
			break
		}
	}
	return out
}

func containsAllTokens(name string, tokens []string) bool {
	if name == "" {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(name, tok) {
			return false
		}
	}
	return true
}
