package fixtures

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eldos/workmarket/internal/codec"
	"github.com/eldos/workmarket/internal/schema"
)

//go:embed data/*.json
var dataFS embed.FS

type Inserter interface {
	Insert(ctx context.Context, kind schema.Kind, fields map[string]any) (int64, error)
}

// Seed inserts the embedded fixture rows for every registered kind, walking
// the registry in order so referenced tables fill up before the tables that
// point at them. Fixture order dates arrive in the legacy MM/DD/YYYY form and
// are normalized during decoding.
func Seed(ctx context.Context, registry *schema.Registry, cdc *codec.Codec, store Inserter, log zerolog.Logger) error {
	for _, kind := range registry.Kinds() {
		raw, err := dataFS.ReadFile("data/" + kind.Name + ".json")
		if err != nil {
			return fmt.Errorf("read fixtures for %s: %w", kind.Name, err)
		}

		var rows []json.RawMessage
		if err := json.Unmarshal(raw, &rows); err != nil {
			return fmt.Errorf("parse fixtures for %s: %w", kind.Name, err)
		}

		for i, row := range rows {
			record, err := cdc.DecodeSeed(kind, row)
			if err != nil {
				return fmt.Errorf("fixture %s[%d]: %w", kind.Name, i, err)
			}
			if _, err := store.Insert(ctx, kind, record); err != nil {
				return fmt.Errorf("insert fixture %s[%d]: %w", kind.Name, i, err)
			}
		}

		log.Info().Str("kind", kind.Name).Int("rows", len(rows)).Msg("fixtures seeded")
	}
	return nil
}
