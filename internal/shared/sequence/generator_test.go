package sequence_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codigix/passion-clothing-sub000/internal/shared/sequence"
	"github.com/codigix/passion-clothing-sub000/internal/testutil"
)

func TestNextIsSequentialPerPrefix(t *testing.T) {
	db := testutil.SetupTestDB(t)
	g := sequence.NewGenerator(db)
	ctx := context.Background()

	dateKey := time.Now().Format("20060102")
	for i := 1; i <= 3; i++ {
		got, err := g.Next(ctx, "DSP")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		want := fmt.Sprintf("DSP-%s-%05d", dateKey, i)
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}

	// Prefixes count independently.
	got, err := g.Next(ctx, "RCP")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !strings.HasSuffix(got, "-00001") {
		t.Errorf("expected RCP to start at 00001, got %s", got)
	}
}

func TestConcurrentAllocationsNeverCollide(t *testing.T) {
	db := testutil.SetupTestDB(t)
	g := sequence.NewGenerator(db)
	ctx := context.Background()

	const n = 20
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := g.Next(ctx, "PRD")
			if err != nil {
				t.Errorf("next: %v", err)
				return
			}
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for num := range results {
		if seen[num] {
			t.Fatalf("duplicate number allocated: %s", num)
		}
		seen[num] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d unique numbers, got %d", n, len(seen))
	}
}
