package settlement_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/settlement"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balances(pairs ...string) []domain.Balance {
	out := make([]domain.Balance, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, domain.Balance{MemberID: pairs[i], MemberName: "name-" + pairs[i], Net: dec(pairs[i+1])})
	}
	return out
}

func describe(transfers []domain.Transfer) []string {
	out := make([]string, len(transfers))
	for i, t := range transfers {
		out[i] = fmt.Sprintf("%s->%s %s", t.From, t.To, t.Amount.StringFixed(2))
	}
	return out
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		balances []domain.Balance
		want     []string
		wantErr  error
	}{
		{
			name:     "nothing to settle",
			balances: balances("A", "0", "B", "0.004", "C", "-0.004"),
			want:     []string{},
		},
		{
			name:     "one creditor two debtors",
			balances: balances("A", "60", "B", "-30", "C", "-30"),
			want:     []string{"B->A 30.00", "C->A 30.00"},
		},
		{
			name:     "exact split moves 60 to payer",
			balances: balances("A", "60", "B", "-35", "C", "-25"),
			want:     []string{"B->A 35.00", "C->A 25.00"},
		},
		{
			name:     "largest magnitudes first",
			balances: balances("A", "-10", "B", "50", "C", "-70", "D", "30"),
			want:     []string{"C->B 50.00", "C->D 20.00", "A->D 10.00"},
		},
		{
			name:     "ties keep input order",
			balances: balances("A", "-20", "B", "-20", "C", "20", "D", "20"),
			want:     []string{"A->C 20.00", "B->D 20.00"},
		},
		{
			name:     "one cent of drift is tolerated",
			balances: balances("A", "10.01", "B", "-10.00"),
			want:     []string{"B->A 10.00"},
		},
		{
			name:     "unbalanced input",
			balances: balances("A", "50", "B", "-20"),
			wantErr:  domain.ErrLedgerInconsistency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := settlement.Plan(tt.balances)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, describe(got))
		})
	}
}

func TestPlan_CarriesNames(t *testing.T) {
	got, err := settlement.Plan(balances("A", "5", "B", "-5"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "name-B", got[0].FromName)
	assert.Equal(t, "name-A", got[0].ToName)
}

func TestPlan_DoesNotMutateInput(t *testing.T) {
	in := balances("A", "60", "B", "-30", "C", "-30")
	_, err := settlement.Plan(in)
	require.NoError(t, err)

	assert.Equal(t, "60.00", in[0].Net.StringFixed(2))
	assert.Equal(t, "-30.00", in[1].Net.StringFixed(2))
}

func TestApply(t *testing.T) {
	in := balances("A", "60", "B", "-30", "C", "-30")
	out, err := settlement.Apply(in, []domain.Transfer{{From: "B", To: "A", Amount: dec("30")}})
	require.NoError(t, err)

	assert.Equal(t, "30.00", out[0].Net.StringFixed(2))
	assert.Equal(t, "0.00", out[1].Net.StringFixed(2))
	assert.Equal(t, "60.00", in[0].Net.StringFixed(2))

	_, err = settlement.Apply(in, []domain.Transfer{{From: "Q", To: "A", Amount: dec("1")}})
	assert.ErrorIs(t, err, domain.ErrUnknownMember)
}

func TestPlan_EndToEnd(t *testing.T) {
	members := []domain.Member{{ID: "A", Name: "A"}, {ID: "B", Name: "B"}, {ID: "C", Name: "C"}}
	expenses := []domain.Expense{{
		ID:     "e1",
		PaidBy: "A",
		Amount: dec("90"),
		Splits: []domain.Split{
			{MemberID: "A", Amount: dec("30")},
			{MemberID: "B", Amount: dec("30")},
			{MemberID: "C", Amount: dec("30")},
		},
	}}

	bal, err := ledger.ComputeBalances(members, expenses)
	require.NoError(t, err)

	plan, err := settlement.Plan(bal)
	require.NoError(t, err)
	assert.Equal(t, []string{"B->A 30.00", "C->A 30.00"}, describe(plan))
}

func TestPlan_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))

	for round := 0; round < 500; round++ {
		n := rng.IntN(10) + 2
		in := make([]domain.Balance, n)
		sum := decimal.Zero
		for i := 0; i < n-1; i++ {
			v := decimal.New(rng.Int64N(200_000)-100_000, -2)
			in[i] = domain.Balance{MemberID: fmt.Sprintf("m%d", i), Net: v}
			sum = sum.Add(v)
		}
		in[n-1] = domain.Balance{MemberID: fmt.Sprintf("m%d", n-1), Net: sum.Neg()}

		plan, err := settlement.Plan(in)
		require.NoError(t, err)

		// minimality bound
		assert.LessOrEqual(t, len(plan), n-1)

		for _, tr := range plan {
			assert.True(t, tr.Amount.IsPositive())
			assert.NotEqual(t, tr.From, tr.To)
		}

		// round trip
		out, err := settlement.Apply(in, plan)
		require.NoError(t, err)
		assert.True(t, settlement.Settled(out), "round %d left %v", round, out)

		// deterministic
		again, err := settlement.Plan(in)
		require.NoError(t, err)
		assert.Equal(t, describe(plan), describe(again))
	}
}
