package judge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/imh0ng/open-machina/internal/types"
)

// ProviderInfo describes one provider in the host's live catalog: its id and
// the set of model ids it currently serves.
type ProviderInfo struct {
	ID     string            `json:"id"`
	Models map[string]string `json:"models"`
}

// CatalogClient is the host-provided capability to list live providers.
// Hosts without this capability pass a nil client, which disables catalog
// validation entirely.
type CatalogClient interface {
	ListProviders(ctx context.Context) ([]ProviderInfo, error)
}

// ValidationFailure describes why a candidate failed catalog validation.
type ValidationFailure struct {
	Code    types.ErrorCode
	Message string
}

func (f *ValidationFailure) String() string {
	return fmt.Sprintf("[%s] %s", f.Code, f.Message)
}

// knownIDLimit caps how many known ids a validation failure lists, keeping
// skip reasons readable for large catalogs.
const knownIDLimit = 8

// ValidateTarget checks a candidate provider/model against the live catalog.
// Returns nil when the candidate is valid, when the client is nil (no catalog
// capability), or when the catalog fetch itself fails: a transport failure
// means "cannot validate", which is non-fatal and allowed to proceed.
func ValidateTarget(ctx context.Context, client CatalogClient, providerID, modelID string) *ValidationFailure {
	if client == nil {
		return nil
	}

	providers, err := client.ListProviders(ctx)
	if err != nil {
		return nil
	}

	var found *ProviderInfo
	knownProviders := make([]string, 0, len(providers))
	for i := range providers {
		knownProviders = append(knownProviders, providers[i].ID)
		if providers[i].ID == providerID {
			found = &providers[i]
		}
	}

	if found == nil {
		return &ValidationFailure{
			Code: types.AUTONOMY_JUDGE_INVALID_PROVIDER,
			Message: fmt.Sprintf("provider %q not found in catalog (known: %s)",
				providerID, joinLimited(knownProviders, knownIDLimit)),
		}
	}

	if _, ok := found.Models[modelID]; !ok {
		knownModels := make([]string, 0, len(found.Models))
		for id := range found.Models {
			knownModels = append(knownModels, id)
		}
		sort.Strings(knownModels)
		return &ValidationFailure{
			Code: types.AUTONOMY_JUDGE_INVALID_MODEL,
			Message: fmt.Sprintf("model %q not found in provider %q (known: %s)",
				modelID, providerID, joinLimited(knownModels, knownIDLimit)),
		}
	}

	return nil
}

func joinLimited(ids []string, limit int) string {
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return strings.Join(ids, ", ")
}
