package aggregate

import (
	"context"
	"fmt"
	"sort"

	"github.com/siherrmann/recall/core/ranking"
	"github.com/siherrmann/recall/model"
)

// relatedCeilingRatio keeps related items strictly below the weakest primary
// result, so expansion can never displace anything the query actually matched
const relatedCeilingRatio = 0.9

// expand harvests entities from the top primary results and runs one graph
// query for other content sharing them. Related items are appended below every
// primary result, capped by the expansion limit and MaxResults. Expansion is
// best effort; a failure leaves the primary results untouched.
func (a *Aggregator) expand(ctx context.Context, query *model.Query, primary []*model.RankedResult) ([]*model.RankedResult, []string) {
	if len(primary) == 0 || len(primary) >= query.MaxResults {
		return primary, nil
	}

	seeds := a.harvestEntities(primary)
	if len(seeds) == 0 {
		return primary, nil
	}

	exclude := make(map[string]bool, len(primary))
	minPrimary := primary[0].UnifiedScore
	for _, result := range primary {
		exclude[result.ID] = true
		if result.UnifiedScore < minPrimary {
			minPrimary = result.UnifiedScore
		}
	}

	ceiling := relatedCeilingRatio * minPrimary
	if ceiling <= 0 {
		return primary, nil
	}

	limit := a.config.ExpansionLimit
	if remaining := query.MaxResults - len(primary); remaining < limit {
		limit = remaining
	}

	candidates, err := a.related.RelatedByEntities(ctx, seeds, exclude, limit, query.Filters)
	if err != nil {
		a.logger.Warn("related expansion failed", "error", err)
		return primary, []string{fmt.Sprintf("related expansion skipped: %v", err)}
	}
	if len(candidates) == 0 {
		return primary, nil
	}

	maxNormalized := 0.0
	for _, candidate := range candidates {
		if normalized := ranking.NormalizeGraphScore(candidate.Score); normalized > maxNormalized {
			maxNormalized = normalized
		}
	}
	if maxNormalized == 0 {
		return primary, nil
	}

	related := make([]*model.RankedResult, 0, len(candidates))
	for _, candidate := range candidates {
		normalized := ranking.NormalizeGraphScore(candidate.Score)
		score := ceiling * normalized / maxNormalized
		related = append(related, &model.RankedResult{
			ID:           candidate.ID,
			Content:      candidate.Content,
			Source:       model.SourceRelated,
			UnifiedScore: score,
			RankingFactors: []model.RankingFactor{{
				Name:            model.FactorRelatedEntity,
				RawValue:        candidate.Score,
				NormalizedScore: normalized,
				Weight:          relatedCeilingRatio,
				Explanation:     fmt.Sprintf("shares entities %v with top results", candidate.MatchedEntities()),
			}},
			Metadata: candidate.Metadata,
		})
	}

	sort.Slice(related, func(i, j int) bool {
		if related[i].UnifiedScore != related[j].UnifiedScore {
			return related[i].UnifiedScore > related[j].UnifiedScore
		}
		return related[i].ID < related[j].ID
	})

	combined := append(primary, related...)
	if len(combined) > query.MaxResults {
		combined = combined[:query.MaxResults]
	}
	return combined, nil
}

// harvestEntities collects the distinct entity names mentioned by the top
// expansion seed results
func (a *Aggregator) harvestEntities(primary []*model.RankedResult) []string {
	seeds := primary
	if len(seeds) > a.config.ExpansionSeeds {
		seeds = seeds[:a.config.ExpansionSeeds]
	}

	seen := make(map[string]bool)
	var entities []string
	for _, result := range seeds {
		for _, entity := range result.Metadata.Entities() {
			if entity == "" || seen[entity] {
				continue
			}
			seen[entity] = true
			entities = append(entities, entity)
		}
	}
	return entities
}
