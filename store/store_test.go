package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/etnz/gestor"
	"github.com/etnz/gestor/date"
)

func sample(t *testing.T) gestor.Ledger {
	t.Helper()
	l, err := gestor.NewLedger(
		gestor.NewBuy(date.New(2025, 1, 15), "GOOG", gestor.Q(2), gestor.M(2800.5, "USD"), gestor.M(1, "USD")),
		gestor.NewBuy(date.New(2025, 2, 1), "AAPL", gestor.Q(6), gestor.M(100, "USD"), gestor.M(0, "USD")),
		gestor.NewSell(date.New(2025, 2, 1), "AAPL", gestor.Q(4), gestor.M(400, "USD"), gestor.M(2.5, "USD")),
	)
	if err != nil {
		t.Fatalf("NewLedger() unexpected error: %v", err)
	}
	return l
}

func equal(a, b gestor.Ledger) bool {
	return slices.EqualFunc(a.All(), b.All(), gestor.Transaction.Equal)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	testCases := []struct {
		driver, file string
		wantErr      bool
	}{
		{"file", "ops.csv", false},
		{"", "ops.jsonl", false},
		{"file", "ops.xlsx", true},
		{"sqlite", "ops.db", false},
		{"postgres", "ops.db", true},
	}
	for _, tc := range testCases {
		t.Run(tc.driver+"/"+tc.file, func(t *testing.T) {
			st, err := Open(tc.driver, filepath.Join(dir, tc.file), "USD")
			if (err != nil) != tc.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tc.wantErr)
			}
			if s, ok := st.(*SQLite); ok {
				s.Close()
			}
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, name := range []string{"ops.csv", "ops.jsonl", "ops.db"} {
		t.Run(name, func(t *testing.T) {
			driver := DriverFile
			if filepath.Ext(name) == ".db" {
				driver = DriverSQLite
			}
			st, err := Open(driver, filepath.Join(dir, name), "USD")
			if err != nil {
				t.Fatalf("Open() unexpected error: %v", err)
			}
			if s, ok := st.(*SQLite); ok {
				defer s.Close()
			}

			empty, err := st.Load(ctx)
			if err != nil {
				t.Fatalf("Load() of a new store: %v", err)
			}
			if empty.Len() != 0 {
				t.Fatalf("Load() of a new store has %d rows", empty.Len())
			}

			want := sample(t)
			if err := st.Save(ctx, want); err != nil {
				t.Fatalf("Save() unexpected error: %v", err)
			}
			got, err := st.Load(ctx)
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if !equal(got, want) {
				t.Errorf("Load() = %v, want %v", got.All(), want.All())
			}
			if cur := got.At(0).Amount.Currency(); cur != "USD" {
				t.Errorf("Currency() = %q, want USD", cur)
			}

			// A smaller ledger replaces the whole content.
			shorter, _, _ := want.UnsafeRemove(0)
			if err := st.Save(ctx, shorter); err != nil {
				t.Fatalf("Save() unexpected error: %v", err)
			}
			got, _ = st.Load(ctx)
			if !equal(got, shorter) {
				t.Errorf("Load() after rewrite = %v, want %v", got.All(), shorter.All())
			}
		})
	}
}

func TestFile_SaveLeavesNoTemporaryFile(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(filepath.Join(dir, "sub", "ops.csv"), "USD")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Save(context.Background(), sample(t)); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "sub"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "ops.csv" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory content = %v, want [ops.csv]", names)
	}
}

func TestFile_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.csv")
	content := "date,security_id,quantity,amount,kind,commission\n2025-01-10,AAPL,0,10,Compra,0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	f, _ := NewFile(path, "USD")
	if _, err := f.Load(context.Background()); err == nil {
		t.Error("Load() expected an error for a zero quantity row")
	}
}

func TestSQLite_CancelledSaveKeepsRows(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "ops.db"), "USD")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	want := sample(t)
	if err := s.Save(context.Background(), want); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(ctx, gestor.Ledger{}); err == nil {
		t.Fatal("Save() with a cancelled context expected an error")
	}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !equal(got, want) {
		t.Errorf("Load() after a cancelled save = %v, want %v", got.All(), want.All())
	}
}

func TestStore_LoadOtherCurrency(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	// CSV rows carry no currency, they always take the configured one.
	for name, driver := range map[string]string{"ops.jsonl": DriverFile, "ops.db": DriverSQLite} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			usd, err := Open(driver, path, "USD")
			if err != nil {
				t.Fatal(err)
			}
			if err := usd.Save(ctx, sample(t)); err != nil {
				t.Fatalf("Save() unexpected error: %v", err)
			}
			if s, ok := usd.(*SQLite); ok {
				s.Close()
			}

			eur, err := Open(driver, path, "EUR")
			if err != nil {
				t.Fatal(err)
			}
			if s, ok := eur.(*SQLite); ok {
				defer s.Close()
			}
			if _, err := eur.Load(ctx); !errors.Is(err, gestor.ErrMalformedRecord) {
				t.Errorf("Load() of a USD ledger as EUR: error = %v, want ErrMalformedRecord", err)
			}
		})
	}
}

func TestFile_LoadMissingKeepsCurrency(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "ops.csv"), "EUR")
	if err != nil {
		t.Fatal(err)
	}
	l, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if l.Len() != 0 || l.Currency() != "EUR" {
		t.Errorf("Load() = %d rows in %q, want 0 rows in EUR", l.Len(), l.Currency())
	}
}
