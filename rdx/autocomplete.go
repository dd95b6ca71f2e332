package rdx

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

const autocompleteKey = "autocomplete:crops"

// AddCropToAutocomplete stores a crop title in the suggestion set.
func AddCropToAutocomplete(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	return Conn.ZAdd(ctx, autocompleteKey, redis.Z{Score: 0, Member: title}).Err()
}

// SuggestCrops returns up to limit stored titles with the given prefix.
func SuggestCrops(ctx context.Context, prefix string, limit int) ([]string, error) {
	members, err := Conn.ZRange(ctx, autocompleteKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	prefix = strings.ToLower(prefix)
	var out []string
	for _, m := range members {
		if strings.HasPrefix(strings.ToLower(m), prefix) {
			out = append(out, m)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
