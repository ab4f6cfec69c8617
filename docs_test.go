package mint_test

import (
	"context"
	"log"
	"log/slog"
	"testing"

	"github.com/xraph/mint"
	"github.com/xraph/mint/role"
	"github.com/xraph/mint/store/memory"
	"github.com/xraph/mint/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// The deployer receives the genesis supply and the admin role.
		treasury := types.Address("acct_treasury")

		l := mint.New(store, treasury,
			mint.WithLogger(slog.Default()),
		)

		// Start the engine: migrate, replay, seed genesis if empty
		ctx := context.Background()
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop() //nolint:errcheck // demo teardown

		// Grant the distributor role so an issuer can mint
		issuer := types.Address("acct_issuer")
		if _, err := l.GrantRole(ctx, treasury, role.Distributor, issuer); err != nil {
			t.Fatal(err)
		}

		// Mint new supply to a holder
		holder := types.Address("acct_holder")
		if _, err := l.Mint(ctx, issuer, holder, types.Tokens(1_000)); err != nil {
			t.Fatal(err)
		}

		// Move tokens between holders
		ev, err := l.Transfer(ctx, holder, types.Address("acct_merchant"), types.Tokens(250))
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("transfer journaled: %s at sequence %d\n", ev.ID, ev.Sequence)

		// Delegate spending through an allowance
		spender := types.Address("acct_spender")
		if _, err := l.Approve(ctx, holder, spender, types.Tokens(100)); err != nil {
			t.Fatal(err)
		}
		if _, err := l.TransferFrom(ctx, spender, holder, treasury, types.Tokens(40)); err != nil {
			t.Fatal(err)
		}

		// Views are instant reads of the replayed state
		log.Printf("%s balance: %s %s\n", holder, l.BalanceOf(holder).FormatTokens(), l.Symbol())
		log.Printf("total supply: %s / %s\n", l.TotalSupply().FormatTokens(), l.MaxSupply().FormatTokens())
	})

	// Test Amount type examples
	t.Run("AmountExamples", func(t *testing.T) {
		// Constructors
		_ = types.Tokens(49)      // 49 whole tokens
		_ = types.Units(4900)     // 4900 base units
		_ = types.ZeroAmount()    // 0
		a, err := types.ParseAmount("1000000000000000000")
		if err != nil {
			t.Fatal(err)
		}

		// Arithmetic
		a1 := types.Tokens(100)
		a2 := types.Tokens(200)
		_ = a1.Add(a2)      // 300 tokens
		_ = a2.Subtract(a1) // 100 tokens

		// Comparison
		if a1.LessThan(a2) {
			// a1 is less than a2
		}
		_ = a.Equal(types.Tokens(1)) // true, one token is 10^18 base units

		// Formatting
		_ = a1.String()       // "100000000000000000000"
		_ = a1.FormatTokens() // "100"
	})
}
