package ledger

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

// one million tokens at six decimals
func testSupply() *uint256.Int {
	return uint256.NewInt(1_000_000 * 1_000_000)
}

func mustMove(t *testing.T, l *Ledger, from, to Address, amount *uint256.Int) {
	t.Helper()
	shares := new(uint256.Int).Mul(amount, l.Rate())
	if err := l.Debit(from, amount, shares); err != nil {
		t.Fatalf("debit %s: %v", from, err)
	}
	l.Credit(to, amount, shares)
}

func TestGenesisBalance(t *testing.T) {
	l := New(testSupply(), "owner")

	if got := l.BalanceOf("owner"); !got.Eq(testSupply()) {
		t.Errorf("genesis balance = %s, want %s", got, testSupply())
	}
	if got := l.BalanceOf("nobody"); !got.IsZero() {
		t.Errorf("unknown account balance = %s, want 0", got)
	}
}

func TestShareConversionRoundTrip(t *testing.T) {
	l := New(testSupply(), "owner")

	amounts := []uint64{1, 999, 1_000_000, 123_456_789, 1_000_000 * 1_000_000}
	for _, n := range amounts {
		amount := uint256.NewInt(n)
		shares, err := l.SharesForTokens(amount)
		if err != nil {
			t.Fatalf("SharesForTokens(%d): %v", n, err)
		}
		back, err := l.TokensForShares(shares)
		if err != nil {
			t.Fatalf("TokensForShares: %v", err)
		}
		if !back.Eq(amount) {
			t.Errorf("round trip of %d = %s", n, back)
		}
	}
}

func TestConversionRange(t *testing.T) {
	l := New(testSupply(), "owner")

	over := new(uint256.Int).AddUint64(testSupply(), 1)
	if _, err := l.SharesForTokens(over); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("SharesForTokens over supply: err = %v, want ErrInvalidAmount", err)
	}

	overShares := new(uint256.Int).AddUint64(l.TotalShares(), 1)
	if _, err := l.TokensForShares(overShares); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("TokensForShares over pool: err = %v, want ErrInvalidAmount", err)
	}
}

func TestDebitInsufficient(t *testing.T) {
	l := New(testSupply(), "owner")
	mustMove(t, l, "owner", "alice", uint256.NewInt(1000))

	amount := uint256.NewInt(1001)
	shares := new(uint256.Int).Mul(amount, l.Rate())
	if err := l.Debit("alice", amount, shares); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("overdraw err = %v, want ErrInsufficientBalance", err)
	}
	// A failed debit must not change the balance.
	if got := l.BalanceOf("alice"); !got.Eq(uint256.NewInt(1000)) {
		t.Errorf("balance after failed debit = %s, want 1000", got)
	}
}

func TestExcludeIncludePreservesBalance(t *testing.T) {
	l := New(testSupply(), "owner")
	mustMove(t, l, "owner", "alice", uint256.NewInt(250_000))

	before := l.BalanceOf("alice")
	if err := l.SetExcluded("alice", true); err != nil {
		t.Fatalf("exclude: %v", err)
	}
	if got := l.BalanceOf("alice"); !got.Eq(before) {
		t.Errorf("balance after exclusion = %s, want %s", got, before)
	}
	if !l.IsExcluded("alice") {
		t.Error("alice should be excluded")
	}

	if err := l.SetExcluded("alice", false); err != nil {
		t.Fatalf("include: %v", err)
	}
	if got := l.BalanceOf("alice"); !got.Eq(before) {
		t.Errorf("balance after inclusion = %s, want %s", got, before)
	}
	if l.IsExcluded("alice") {
		t.Error("alice should be participating again")
	}
}

func TestExcludeTwice(t *testing.T) {
	l := New(testSupply(), "owner")

	if err := l.SetExcluded("alice", true); err != nil {
		t.Fatalf("exclude: %v", err)
	}
	if err := l.SetExcluded("alice", true); !errors.Is(err, ErrAlreadyExcluded) {
		t.Errorf("second exclude err = %v, want ErrAlreadyExcluded", err)
	}
	if err := l.SetExcluded("bob", false); !errors.Is(err, ErrNotExcluded) {
		t.Errorf("include of participating account err = %v, want ErrNotExcluded", err)
	}
}

func TestTaxShareInflatesParticipants(t *testing.T) {
	l := New(testSupply(), "owner")
	// Balances sized as in real deployments: ten percent of supply each,
	// so the reflected growth survives truncation.
	mustMove(t, l, "owner", "alice", uint256.NewInt(100_000_000_000))
	mustMove(t, l, "owner", "bob", uint256.NewInt(100_000_000_000))

	aliceBefore := l.BalanceOf("alice")
	bobBefore := l.BalanceOf("bob")

	// Retire the share-equivalent of one percent of supply from bob, as a
	// transfer's tax leg would: debit the sender, credit nobody.
	fee := uint256.NewInt(10_000_000_000)
	feeShares := new(uint256.Int).Mul(fee, l.Rate())
	if err := l.Debit("bob", fee, feeShares); err != nil {
		t.Fatalf("debit fee: %v", err)
	}
	l.ApplyTaxShare(fee, feeShares)

	if got := l.BalanceOf("alice"); !got.Gt(aliceBefore) {
		t.Errorf("alice balance %s did not grow from %s after tax retirement", got, aliceBefore)
	}
	if got := l.BalanceOf("bob"); !got.Lt(bobBefore) {
		t.Errorf("bob balance %s should have shrunk from %s", got, bobBefore)
	}
	if got := l.TotalFees(); !got.Eq(fee) {
		t.Errorf("TotalFees = %s, want %s", got, fee)
	}
}

func TestExcludedBalanceImmuneToTax(t *testing.T) {
	l := New(testSupply(), "owner")
	mustMove(t, l, "owner", "alice", uint256.NewInt(100_000_000_000))
	mustMove(t, l, "owner", "bob", uint256.NewInt(100_000_000_000))

	if err := l.SetExcluded("alice", true); err != nil {
		t.Fatalf("exclude: %v", err)
	}
	aliceBefore := l.BalanceOf("alice")

	fee := uint256.NewInt(10_000_000_000)
	feeShares := new(uint256.Int).Mul(fee, l.Rate())
	if err := l.Debit("bob", fee, feeShares); err != nil {
		t.Fatalf("debit fee: %v", err)
	}
	l.ApplyTaxShare(fee, feeShares)

	if got := l.BalanceOf("alice"); !got.Eq(aliceBefore) {
		t.Errorf("excluded balance moved: %s, want %s", got, aliceBefore)
	}
}

func TestTransfersBetweenExclusionVariants(t *testing.T) {
	cases := []struct {
		name             string
		fromExcl, toExcl bool
	}{
		{"participating to participating", false, false},
		{"excluded to participating", true, false},
		{"participating to excluded", false, true},
		{"excluded to excluded", true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := New(testSupply(), "owner")
			mustMove(t, l, "owner", "alice", uint256.NewInt(50_000))
			mustMove(t, l, "owner", "bob", uint256.NewInt(50_000))
			if tc.fromExcl {
				if err := l.SetExcluded("alice", true); err != nil {
					t.Fatalf("exclude alice: %v", err)
				}
			}
			if tc.toExcl {
				if err := l.SetExcluded("bob", true); err != nil {
					t.Fatalf("exclude bob: %v", err)
				}
			}

			aliceBefore := l.BalanceOf("alice")
			bobBefore := l.BalanceOf("bob")
			amount := uint256.NewInt(10_000)
			mustMove(t, l, "alice", "bob", amount)

			wantAlice := new(uint256.Int).Sub(aliceBefore, amount)
			wantBob := new(uint256.Int).Add(bobBefore, amount)
			if got := l.BalanceOf("alice"); !got.Eq(wantAlice) {
				t.Errorf("alice = %s, want %s", got, wantAlice)
			}
			if got := l.BalanceOf("bob"); !got.Eq(wantBob) {
				t.Errorf("bob = %s, want %s", got, wantBob)
			}
		})
	}
}

func TestSupplyConservation(t *testing.T) {
	l := New(testSupply(), "owner")
	mustMove(t, l, "owner", "alice", uint256.NewInt(300_000))
	mustMove(t, l, "owner", "bob", uint256.NewInt(200_000))
	mustMove(t, l, "alice", "carol", uint256.NewInt(120_000))
	if err := l.SetExcluded("carol", true); err != nil {
		t.Fatalf("exclude: %v", err)
	}
	mustMove(t, l, "bob", "carol", uint256.NewInt(5_000))

	sum := l.Snapshot().Sum()
	if !sum.Eq(testSupply()) {
		t.Errorf("sum of balances = %s, want %s", sum, testSupply())
	}
}
