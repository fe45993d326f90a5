package accounts

import (
	"context"
	"strings"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
)

// Client produces the current set of monitored accounts. Implementations
// may fail; callers fall back to the static list.
type Client interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// Fallback builds the deterministic account list used when the live source
// is unavailable: the MONITORED_ACCOUNTS comma list when set, otherwise the
// single default account.
func Fallback(envList, defaultAccount string) []domain.Account {
	var out []domain.Account
	for _, name := range strings.Split(envList, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, domain.Account{Username: name, Enabled: true})
	}
	if len(out) > 0 {
		return out
	}
	return []domain.Account{{Username: defaultAccount, Enabled: true, Notes: "Default account"}}
}
