package exam

import (
	"context"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/enem-prep/backend/internal/logger"
	"github.com/enem-prep/backend/internal/models"
)

// oversampleFactor widens real-tier queries so the shuffle has something to
// choose between.
const oversampleFactor = 2

// Chain tries real sources in order and backfills any deficit from the
// synthetic tier, so a difficulty query always returns exactly Limit items.
type Chain struct {
	sources   []ItemSource
	synthetic *SyntheticSource
	log       *logger.Logger
}

func NewChain(log *logger.Logger, sources ...ItemSource) *Chain {
	var tiers []ItemSource
	for _, src := range sources {
		if src != nil {
			tiers = append(tiers, src)
		}
	}
	return &Chain{
		sources:   tiers,
		synthetic: NewSyntheticSource(),
		log:       log,
	}
}

// FetchByDifficulty returns exactly q.Limit items. Each real tier is asked
// for twice the remaining deficit under a salt drawn from rng; its answer is
// deduplicated, shuffled and trimmed. Tier failures are logged and skipped.
func (c *Chain) FetchByDifficulty(ctx context.Context, q ItemQuery, rng *rand.Rand) ([]models.Item, error) {
	if q.Limit <= 0 {
		return []models.Item{}, nil
	}

	selected := make([]models.Item, 0, q.Limit)
	exclude := toSet(q.Exclude)

	for _, src := range c.sources {
		remaining := q.Limit - len(selected)
		if remaining == 0 {
			break
		}

		sub := q
		sub.Limit = remaining * oversampleFactor
		sub.Exclude = setKeys(exclude)
		sub.Salt = strconv.FormatUint(rng.Uint64(), 16)

		items, err := src.FetchByDifficulty(ctx, sub)
		if err != nil {
			c.log.Warn("item source failed, falling back",
				"source", src.Name(),
				"areas", q.Areas,
				"difficulty", q.Difficulty,
				"err", &SourceUnavailableError{Source: src.Name(), Err: err},
			)
			continue
		}

		fresh := unseen(items, exclude)
		shuffle(rng, fresh)
		if len(fresh) > remaining {
			fresh = fresh[:remaining]
		}
		for _, item := range fresh {
			item.Provenance = models.ProvenanceReal
			item.Source = src.Name()
			exclude[item.ID] = true
			selected = append(selected, item)
		}
	}

	if deficit := q.Limit - len(selected); deficit > 0 {
		sub := q
		sub.Limit = deficit
		sub.Exclude = setKeys(exclude)
		items, err := c.synthetic.FetchByDifficulty(ctx, sub)
		if err != nil {
			return nil, &SourceUnavailableError{Source: c.synthetic.Name(), Err: err}
		}
		c.log.Info("backfilled with synthetic items",
			"count", deficit,
			"areas", q.Areas,
			"difficulty", q.Difficulty,
		)
		selected = append(selected, items...)
	}
	return selected, nil
}

// FetchByYear returns the first non-empty booklet found along the chain,
// in booklet order and trimmed to q.Limit. Real booklets are never shuffled
// or mixed across tiers; one shorter than q.Limit gets a synthetic tail.
// When no tier has one, the synthetic tier lays out fallbackCount
// placeholders.
func (c *Chain) FetchByYear(ctx context.Context, q YearQuery, fallbackCount int) ([]models.Item, error) {
	for _, src := range c.sources {
		items, err := src.FetchByYear(ctx, q)
		if err != nil {
			c.log.Warn("item source failed, falling back",
				"source", src.Name(),
				"year", q.Year,
				"err", &SourceUnavailableError{Source: src.Name(), Err: err},
			)
			continue
		}
		if len(items) == 0 {
			continue
		}

		booklet := make([]models.Item, len(items))
		copy(booklet, items)
		sort.SliceStable(booklet, func(i, j int) bool {
			return booklet[i].BookletPosition < booklet[j].BookletPosition
		})
		if q.Limit > 0 && len(booklet) > q.Limit {
			booklet = booklet[:q.Limit]
		}
		for i := range booklet {
			booklet[i].Provenance = models.ProvenanceReal
			booklet[i].Source = src.Name()
		}
		if deficit := q.Limit - len(booklet); deficit > 0 {
			tail, err := c.bookletTail(ctx, q, booklet[len(booklet)-1].BookletPosition, deficit)
			if err != nil {
				return nil, err
			}
			booklet = append(booklet, tail...)
		}
		return booklet, nil
	}

	sub := q
	sub.Limit = fallbackCount
	items, err := c.synthetic.FetchByYear(ctx, sub)
	if err != nil {
		return nil, &SourceUnavailableError{Source: c.synthetic.Name(), Err: err}
	}
	c.log.Info("no booklet found, using synthetic booklet", "year", q.Year, "count", len(items))
	return items, nil
}

// bookletTail numbers deficit synthetic items after lastPosition, so a short
// booklet still reaches the requested length without disturbing real items.
func (c *Chain) bookletTail(ctx context.Context, q YearQuery, lastPosition, deficit int) ([]models.Item, error) {
	layout, err := c.synthetic.FetchByYear(ctx, q)
	if err != nil {
		return nil, &SourceUnavailableError{Source: c.synthetic.Name(), Err: err}
	}
	tail := layout[len(layout)-deficit:]
	for i := range tail {
		tail[i].BookletPosition = lastPosition + i + 1
	}
	c.log.Info("booklet shorter than requested, backfilled with synthetic items",
		"year", q.Year,
		"count", deficit,
	)
	return tail, nil
}

func unseen(items []models.Item, exclude map[string]bool) []models.Item {
	out := make([]models.Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ID == "" || exclude[item.ID] || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}

func setKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
