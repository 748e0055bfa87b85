package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// Ledger roles resolvable through the chart of accounts.
const (
	RoleCash                    = "cash"
	RoleLoanReceivable          = "loan_receivable"
	RoleInterestIncome          = "interest_income"
	RoleSalaryExpense           = "salary_expense"
	RolePayrollPayable          = "payroll_payable"
	RoleAccumulatedDepreciation = "accumulated_depreciation"
	RoleDepreciationExpense     = "depreciation_expense"
	RoleRetainedEarnings        = "retained_earnings"
	RoleRounding                = "rounding"

	nominalKey = "nominal"
)

// Roles lists every role the resolver knows, in display order.
var Roles = []string{
	RoleCash,
	RoleLoanReceivable,
	RoleInterestIncome,
	RoleSalaryExpense,
	RolePayrollPayable,
	RoleAccumulatedDepreciation,
	RoleDepreciationExpense,
	RoleRetainedEarnings,
	RoleRounding,
}

func knownRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Chart is the configured chart of accounts: role to account id, plus the
// nominal accounts zeroed at period close.
type Chart struct {
	Roles   map[string]string
	Nominal []string
}

// AccountResolver implements usecase.AccountResolver. Operators can remap a
// role at runtime by writing to the cache; configured defaults fill misses.
type AccountResolver struct {
	cache    usecase.Cache
	defaults Chart
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewAccountResolver creates a resolver backed by cache and seeded with defaults.
// A nil cache serves the defaults only.
func NewAccountResolver(cache usecase.Cache, defaults Chart, ttl time.Duration, logger zerolog.Logger) *AccountResolver {
	return &AccountResolver{
		cache:    cache,
		defaults: defaults,
		ttl:      ttl,
		logger:   logger,
	}
}

func chartKey(role string) string {
	return "chart:" + role
}

// Remap points role at accountID until the next remap. It does not expire.
func (r *AccountResolver) Remap(ctx context.Context, role, accountID string) error {
	if !knownRole(role) {
		return fmt.Errorf("%w: %s", usecase.ErrUnknownRole, role)
	}
	if r.cache == nil {
		return usecase.ErrChartReadOnly
	}
	return r.cache.Set(ctx, chartKey(role), []byte(accountID), 0)
}

// Resolve returns the account id for role.
func (r *AccountResolver) Resolve(ctx context.Context, role string) (string, error) {
	if r.cache == nil {
		return r.defaultFor(role)
	}

	cached, err := r.cache.Get(ctx, chartKey(role))
	if err != nil {
		r.logger.Warn().Err(err).Str("role", role).Msg("chart cache unavailable, using configured account")
	} else if len(cached) > 0 {
		return string(cached), nil
	}

	id, derr := r.defaultFor(role)
	if derr != nil {
		return "", derr
	}

	if err == nil {
		if err := r.cache.Set(ctx, chartKey(role), []byte(id), r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("role", role).Msg("failed to cache chart entry")
		}
	}
	return id, nil
}

func (r *AccountResolver) defaultFor(role string) (string, error) {
	id := r.defaults.Roles[role]
	if id == "" {
		return "", fmt.Errorf("%w: no account for role %s", domain.ErrAccountResolutionFailed, role)
	}
	return id, nil
}

func (r *AccountResolver) GetCashAccountID(ctx context.Context) (string, error) {
	return r.Resolve(ctx, RoleCash)
}

func (r *AccountResolver) GetLoanReceivableAccountID(ctx context.Context) (string, error) {
	return r.Resolve(ctx, RoleLoanReceivable)
}

func (r *AccountResolver) GetInterestIncomeAccountID(ctx context.Context) (string, error) {
	return r.Resolve(ctx, RoleInterestIncome)
}

func (r *AccountResolver) GetSalaryExpenseAccountID(ctx context.Context) (string, error) {
	return r.Resolve(ctx, RoleSalaryExpense)
}

func (r *AccountResolver) GetPayrollPayableAccountID(ctx context.Context) (string, error) {
	return r.Resolve(ctx, RolePayrollPayable)
}

func (r *AccountResolver) GetAccumulatedDepreciationAccountID(ctx context.Context) (string, error) {
	return r.Resolve(ctx, RoleAccumulatedDepreciation)
}

func (r *AccountResolver) GetDepreciationExpenseAccountID(ctx context.Context) (string, error) {
	return r.Resolve(ctx, RoleDepreciationExpense)
}

func (r *AccountResolver) GetRetainedEarningsAccountID(ctx context.Context) (string, error) {
	return r.Resolve(ctx, RoleRetainedEarnings)
}

// GetRoundingAccountID returns the account that absorbs residual differences
// of entries balanced within tolerance.
func (r *AccountResolver) GetRoundingAccountID(ctx context.Context) (string, error) {
	return r.Resolve(ctx, RoleRounding)
}

// NominalAccountIDs returns the cached nominal list, falling back to the configured one.
func (r *AccountResolver) NominalAccountIDs(ctx context.Context) ([]string, error) {
	if r.cache == nil {
		return append([]string(nil), r.defaults.Nominal...), nil
	}

	cached, err := r.cache.Get(ctx, chartKey(nominalKey))
	if err != nil {
		r.logger.Warn().Err(err).Msg("chart cache unavailable, using configured nominal accounts")
	} else if len(cached) > 0 {
		var ids []string
		if err := json.Unmarshal(cached, &ids); err == nil {
			return ids, nil
		}
		r.logger.Warn().Msg("ignoring malformed nominal account list in cache")
	}

	return append([]string(nil), r.defaults.Nominal...), nil
}

// RemapNominal replaces the nominal account list.
func (r *AccountResolver) RemapNominal(ctx context.Context, ids []string) error {
	if r.cache == nil {
		return usecase.ErrChartReadOnly
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, chartKey(nominalKey), data, 0)
}

// Snapshot resolves every known role and the nominal list. Roles without an
// account are left out.
func (r *AccountResolver) Snapshot(ctx context.Context) (map[string]string, []string, error) {
	out := make(map[string]string, len(Roles))
	for _, role := range Roles {
		id, err := r.Resolve(ctx, role)
		if err != nil {
			if errors.Is(err, domain.ErrAccountResolutionFailed) {
				continue
			}
			return nil, nil, err
		}
		out[role] = id
	}

	nominal, err := r.NominalAccountIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	return out, nominal, nil
}
